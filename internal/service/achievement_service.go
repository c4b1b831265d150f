package service

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/metrics"
	"alcyxob/getsfit/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AchievementEvent names what just happened, which decides the checks to run.
type AchievementEvent string

const (
	EventWorkout AchievementEvent = "workout"
	EventWeight  AchievementEvent = "weight"
	EventWaist   AchievementEvent = "waist"
)

const (
	consistencyWeeks = 4
	scaleWarriorLogs = 8
	healthyWaistCm   = 90.0
	firstKiloDownKg  = 1.0
	down5Kg          = 5.0
)

// AchievementView is an unlocked achievement with its label.
type AchievementView struct {
	Type       domain.AchievementType `json:"type"`
	Label      string                 `json:"label"`
	XP         int                    `json:"xp"`
	UnlockedAt time.Time              `json:"unlockedAt"`
}

type AchievementService interface {
	// Check awards every achievement the event newly qualifies for and credits its XP.
	Check(ctx context.Context, userID primitive.ObjectID, event AchievementEvent) ([]domain.AchievementDef, error)
	List(ctx context.Context, userID primitive.ObjectID) ([]AchievementView, error)
}

type achievementService struct {
	repos    repository.Repositories
	stats    StatsService
	schedule Schedule
	metrics  *metrics.Manager
	now      Clock
}

func NewAchievementService(repos repository.Repositories, stats StatsService, schedule Schedule, m *metrics.Manager, now Clock) AchievementService {
	return &achievementService{repos: repos, stats: stats, schedule: schedule, metrics: m, now: now}
}

func (s *achievementService) List(ctx context.Context, userID primitive.ObjectID) ([]AchievementView, error) {
	list, err := s.repos.Achievements.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]AchievementView, 0, len(list))
	for _, a := range list {
		def := a.Type.Def()
		out = append(out, AchievementView{Type: a.Type, Label: def.Label, XP: def.XP, UnlockedAt: a.UnlockedAt})
	}
	return out, nil
}

func (s *achievementService) Check(ctx context.Context, userID primitive.ObjectID, event AchievementEvent) ([]domain.AchievementDef, error) {
	existing, err := s.repos.Achievements.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	have := make(map[domain.AchievementType]bool, len(existing))
	for _, a := range existing {
		have[a.Type] = true
	}

	var earned []domain.AchievementType
	switch event {
	case EventWorkout:
		earned, err = s.workoutAchievements(ctx, userID, have)
	case EventWeight:
		earned, err = s.weightAchievements(ctx, userID, have)
	case EventWaist:
		earned, err = s.waistAchievements(ctx, userID, have)
	default:
		return nil, fmt.Errorf("%w: unknown achievement event %q", ErrValidationFailed, event)
	}
	if err != nil {
		return nil, err
	}

	var unlocked []domain.AchievementDef
	for _, t := range earned {
		def, ok, err := s.award(ctx, userID, t)
		if err != nil {
			return unlocked, err
		}
		if ok {
			unlocked = append(unlocked, def)
		}
	}
	return unlocked, nil
}

// award stores the achievement and credits XP. A concurrent award of the same
// type is reported as not awarded.
func (s *achievementService) award(ctx context.Context, userID primitive.ObjectID, t domain.AchievementType) (domain.AchievementDef, bool, error) {
	def := t.Def()
	err := s.repos.Achievements.Create(ctx, &domain.Achievement{UserID: userID, Type: t, UnlockedAt: s.now()})
	if errors.Is(err, repository.ErrDuplicate) {
		return def, false, nil
	}
	if err != nil {
		return def, false, fmt.Errorf("create achievement %s: %w", t, err)
	}
	if err := s.stats.AddXP(ctx, userID, def.XP); err != nil {
		return def, false, fmt.Errorf("achievement xp: %w", err)
	}
	if s.metrics != nil {
		s.metrics.CounterAchievementsUnlocked.Inc()
	}
	log.WithFields(log.Fields{"userId": userID.Hex(), "achievement": t}).Info("achievement unlocked")
	return def, true, nil
}

func (s *achievementService) workoutAchievements(ctx context.Context, userID primitive.ObjectID, have map[domain.AchievementType]bool) ([]domain.AchievementType, error) {
	var out []domain.AchievementType
	if !have[domain.AchievementFirstBlood] {
		n, err := s.repos.Workouts.CountAll(ctx, userID)
		if err != nil {
			return nil, err
		}
		if n >= 1 {
			out = append(out, domain.AchievementFirstBlood)
		}
	}
	if !have[domain.AchievementConsistencyKing] {
		weeks := 0
		check := s.schedule.WeekStart(s.now())
		for i := 0; i < consistencyWeeks; i++ {
			n, err := s.repos.Workouts.CountBetween(ctx, userID, check, check.AddDate(0, 0, 7))
			if err != nil {
				return nil, err
			}
			if !s.schedule.Successful(int(n)) {
				break
			}
			weeks++
			check = check.AddDate(0, 0, -7)
		}
		if weeks >= consistencyWeeks {
			out = append(out, domain.AchievementConsistencyKing)
		}
	}
	return out, nil
}

func (s *achievementService) weightAchievements(ctx context.Context, userID primitive.ObjectID, have map[domain.AchievementType]bool) ([]domain.AchievementType, error) {
	var out []domain.AchievementType
	if !have[domain.AchievementScaleWarrior] {
		n, err := s.repos.BodyLogs.CountWeightsSince(ctx, userID, time.Time{})
		if err != nil {
			return nil, err
		}
		if n >= scaleWarriorLogs {
			out = append(out, domain.AchievementScaleWarrior)
		}
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	start, current, target := user.Weights(s.schedule.DefaultStartingWeight, s.schedule.DefaultTargetWeight)
	lost := start - current
	if !have[domain.AchievementFirstKiloDown] && lost >= firstKiloDownKg {
		out = append(out, domain.AchievementFirstKiloDown)
	}
	if !have[domain.AchievementDown5] && lost >= down5Kg {
		out = append(out, domain.AchievementDown5)
	}
	if !have[domain.AchievementGoalCrusher] && current <= target {
		out = append(out, domain.AchievementGoalCrusher)
	}
	return out, nil
}

func (s *achievementService) waistAchievements(ctx context.Context, userID primitive.ObjectID, have map[domain.AchievementType]bool) ([]domain.AchievementType, error) {
	if have[domain.AchievementHealthyZone] {
		return nil, nil
	}
	latest, err := s.repos.BodyLogs.ListWaists(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(latest) > 0 && latest[0].WaistCm < healthyWaistCm {
		return []domain.AchievementType{domain.AchievementHealthyZone}, nil
	}
	return nil, nil
}
