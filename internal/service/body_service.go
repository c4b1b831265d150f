package service

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	weightHistoryDays  = 365
	weightHistoryLimit = 365
	waistHistoryLimit  = 90
)

// BodyLogResult reports the side effects of a measurement.
type BodyLogResult struct {
	XPEarned        int                     `json:"xpEarned"`
	NewAchievements []domain.AchievementDef `json:"newAchievements,omitempty"`
}

type BodyService interface {
	LogWeight(ctx context.Context, userID primitive.ObjectID, weightKg float64) (*BodyLogResult, error)
	LogWaist(ctx context.Context, userID primitive.ObjectID, waistCm float64) (*BodyLogResult, error)
	WeightHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.WeightLog, error)
	WaistHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.WaistLog, error)
	// UpdateGoals sets starting and/or target weight. Setting a starting weight restarts the goal clock.
	UpdateGoals(ctx context.Context, userID primitive.ObjectID, startingWeight, targetWeight *float64) error
}

type bodyService struct {
	repos        repository.Repositories
	stats        StatsService
	achievements AchievementService
	quests       QuestService
	now          Clock
}

func NewBodyService(repos repository.Repositories, stats StatsService, achievements AchievementService, quests QuestService, now Clock) BodyService {
	return &bodyService{repos: repos, stats: stats, achievements: achievements, quests: quests, now: now}
}

func validWeight(kg float64) bool {
	return kg >= domain.MinWeightKg && kg <= domain.MaxWeightKg
}

func (s *bodyService) LogWeight(ctx context.Context, userID primitive.ObjectID, weightKg float64) (*BodyLogResult, error) {
	if !validWeight(weightKg) {
		return nil, fmt.Errorf("%w: weight must be between %.0f and %.0f kg", ErrValidationFailed, domain.MinWeightKg, domain.MaxWeightKg)
	}
	if err := s.repos.BodyLogs.CreateWeight(ctx, &domain.WeightLog{UserID: userID, WeightKg: weightKg, LoggedAt: s.now()}); err != nil {
		return nil, fmt.Errorf("create weight log: %w", err)
	}
	if err := s.repos.Users.SetCurrentWeight(ctx, userID, weightKg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update current weight: %w", err)
	}
	if err := s.stats.AddXP(ctx, userID, domain.XPWeightLog); err != nil {
		return nil, fmt.Errorf("weight log xp: %w", err)
	}

	res := &BodyLogResult{XPEarned: domain.XPWeightLog}
	s.afterLog(ctx, userID, EventWeight, res)
	return res, nil
}

func (s *bodyService) LogWaist(ctx context.Context, userID primitive.ObjectID, waistCm float64) (*BodyLogResult, error) {
	if waistCm < domain.MinWaistCm || waistCm > domain.MaxWaistCm {
		return nil, fmt.Errorf("%w: waist must be between %.0f and %.0f cm", ErrValidationFailed, domain.MinWaistCm, domain.MaxWaistCm)
	}
	if err := s.repos.BodyLogs.CreateWaist(ctx, &domain.WaistLog{UserID: userID, WaistCm: waistCm, LoggedAt: s.now()}); err != nil {
		return nil, fmt.Errorf("create waist log: %w", err)
	}
	res := &BodyLogResult{}
	s.afterLog(ctx, userID, EventWaist, res)
	return res, nil
}

// afterLog runs achievement and quest checks. The log itself is already
// stored, so failures here are logged rather than returned.
func (s *bodyService) afterLog(ctx context.Context, userID primitive.ObjectID, event AchievementEvent, res *BodyLogResult) {
	unlocked, err := s.achievements.Check(ctx, userID, event)
	if err != nil {
		log.WithError(err).WithField("userId", userID.Hex()).Warn("achievement check failed")
	}
	for _, a := range unlocked {
		res.XPEarned += a.XP
	}
	res.NewAchievements = unlocked

	xp, err := s.quests.AwardXP(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("userId", userID.Hex()).Warn("quest award failed")
	}
	res.XPEarned += xp
}

func (s *bodyService) WeightHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.WeightLog, error) {
	since := s.now().Add(-weightHistoryDays * 24 * time.Hour)
	return s.repos.BodyLogs.ListWeights(ctx, userID, since, weightHistoryLimit)
}

func (s *bodyService) WaistHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.WaistLog, error) {
	return s.repos.BodyLogs.ListWaists(ctx, userID, waistHistoryLimit)
}

func (s *bodyService) UpdateGoals(ctx context.Context, userID primitive.ObjectID, startingWeight, targetWeight *float64) error {
	if startingWeight == nil && targetWeight == nil {
		return fmt.Errorf("%w: nothing to update", ErrValidationFailed)
	}
	for _, w := range []*float64{startingWeight, targetWeight} {
		if w != nil && !validWeight(*w) {
			return fmt.Errorf("%w: weight must be between %.0f and %.0f kg", ErrValidationFailed, domain.MinWeightKg, domain.MaxWeightKg)
		}
	}
	err := s.repos.Users.UpdateGoals(ctx, userID, startingWeight, targetWeight)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
