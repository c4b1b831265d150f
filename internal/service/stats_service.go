package service

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxStreakWeeks bounds how far back a streak is counted.
const maxStreakWeeks = 52

// Dashboard is the home screen aggregate.
type Dashboard struct {
	WorkoutsThisWeek       int                `json:"workoutsThisWeek"`
	PlannedWorkoutsPerWeek int                `json:"plannedWorkoutsPerWeek"`
	MinWorkoutsForGoal     int                `json:"minWorkoutsForGoal"`
	PunishmentActive       bool               `json:"punishmentActive"`
	XP                     int                `json:"xp"`
	Level                  int                `json:"level"`
	Streak                 int                `json:"streak"`
	NextWorkoutType        domain.WorkoutType `json:"nextWorkoutType"`
	CurrentWeight          float64            `json:"currentWeight"`
	TargetWeight           float64            `json:"targetWeight"`
	StartingWeight         float64            `json:"startingWeight"`
	ProgressPercent        int                `json:"progressPercent"`
	Recovery               *domain.Recovery   `json:"recoveryRecommendation,omitempty"`
}

// StatsService owns the weekly bookkeeping: workout counts, punishment, XP and streaks.
type StatsService interface {
	// RecordWorkoutWeek recounts the workouts of the week containing at,
	// updates the punishment flag and credits workout XP.
	RecordWorkoutWeek(ctx context.Context, userID primitive.ObjectID, at time.Time) (count int, punishment bool, err error)
	// AddXP credits xp to the current week.
	AddXP(ctx context.Context, userID primitive.ObjectID, xp int) error
	WorkoutsInWeek(ctx context.Context, userID primitive.ObjectID, at time.Time) (int, error)
	TotalXP(ctx context.Context, userID primitive.ObjectID) (int, error)
	Streak(ctx context.Context, userID primitive.ObjectID) (int, error)
	NextWorkoutType(ctx context.Context, userID primitive.ObjectID) (domain.WorkoutType, error)
	Dashboard(ctx context.Context, userID primitive.ObjectID) (*Dashboard, error)
}

type statsService struct {
	repos    repository.Repositories
	schedule Schedule
	now      Clock
}

func NewStatsService(repos repository.Repositories, schedule Schedule, now Clock) StatsService {
	return &statsService{repos: repos, schedule: schedule, now: now}
}

// ProgressPercent is how far current has moved from start towards target,
// rounded and clamped to 0..100. Equal start and target give 0.
func ProgressPercent(start, current, target float64) int {
	if start == target {
		return 0
	}
	pct := int(math.Round((start - current) / (start - target) * 100))
	return max(0, min(100, pct))
}

func (s *statsService) RecordWorkoutWeek(ctx context.Context, userID primitive.ObjectID, at time.Time) (int, bool, error) {
	weekStart, weekEnd := s.schedule.WeekBounds(at)
	n, err := s.repos.Workouts.CountBetween(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return 0, false, fmt.Errorf("count week workouts: %w", err)
	}
	count := int(n)
	punishment := !s.schedule.Successful(count)
	if err := s.repos.WeeklyStats.RecordWorkouts(ctx, userID, weekStart, count, punishment, domain.XPWorkout); err != nil {
		return 0, false, fmt.Errorf("record weekly stat: %w", err)
	}
	return count, punishment, nil
}

func (s *statsService) AddXP(ctx context.Context, userID primitive.ObjectID, xp int) error {
	if xp == 0 {
		return nil
	}
	return s.repos.WeeklyStats.AddXP(ctx, userID, s.schedule.WeekStart(s.now()), xp)
}

// WorkoutsInWeek prefers the stored weekly count and falls back to counting workouts.
func (s *statsService) WorkoutsInWeek(ctx context.Context, userID primitive.ObjectID, at time.Time) (int, error) {
	weekStart, weekEnd := s.schedule.WeekBounds(at)
	stat, err := s.repos.WeeklyStats.Get(ctx, userID, weekStart)
	switch {
	case err == nil:
		return stat.WorkoutsCompleted, nil
	case !errors.Is(err, repository.ErrNotFound):
		return 0, err
	}
	n, err := s.repos.Workouts.CountBetween(ctx, userID, weekStart, weekEnd)
	return int(n), err
}

func (s *statsService) TotalXP(ctx context.Context, userID primitive.ObjectID) (int, error) {
	return s.repos.WeeklyStats.TotalXP(ctx, userID)
}

// Streak counts consecutive successful weeks backwards from the current one.
func (s *statsService) Streak(ctx context.Context, userID primitive.ObjectID) (int, error) {
	streak := 0
	check := s.schedule.WeekStart(s.now())
	for i := 0; i < maxStreakWeeks; i++ {
		count, err := s.WorkoutsInWeek(ctx, userID, check)
		if err != nil {
			return 0, err
		}
		if !s.schedule.Successful(count) {
			break
		}
		streak++
		check = check.AddDate(0, 0, -7)
	}
	return streak, nil
}

func (s *statsService) NextWorkoutType(ctx context.Context, userID primitive.ObjectID) (domain.WorkoutType, error) {
	last, err := s.repos.Workouts.Latest(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.WorkoutA, nil
	}
	if err != nil {
		return "", err
	}
	return last.Type.Next(), nil
}

func (s *statsService) Dashboard(ctx context.Context, userID primitive.ObjectID) (*Dashboard, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	now := s.now()

	count, err := s.WorkoutsInWeek(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("workouts this week: %w", err)
	}
	xp, err := s.TotalXP(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("total xp: %w", err)
	}
	streak, err := s.Streak(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("streak: %w", err)
	}
	next, err := s.NextWorkoutType(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("next workout type: %w", err)
	}

	start, current, target := user.Weights(s.schedule.DefaultStartingWeight, s.schedule.DefaultTargetWeight)
	d := &Dashboard{
		WorkoutsThisWeek:       count,
		PlannedWorkoutsPerWeek: s.schedule.PlannedWorkoutsPerWeek,
		MinWorkoutsForGoal:     s.schedule.MinWorkoutsPerWeek,
		PunishmentActive:       !s.schedule.Successful(count),
		XP:                     xp,
		Level:                  domain.Level(xp),
		Streak:                 streak,
		NextWorkoutType:        next,
		CurrentWeight:          current,
		TargetWeight:           target,
		StartingWeight:         start,
		ProgressPercent:        ProgressPercent(start, current, target),
	}

	// The rest-day check files last night's sleep under yesterday's date.
	day, err := s.repos.FitbitDays.Get(ctx, userID, s.schedule.PreviousDayKey(now))
	if err == nil {
		d.Recovery = day.RecoveryRecommendation
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("fitbit day: %w", err)
	}
	return d, nil
}
