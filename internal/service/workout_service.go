package service

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/metrics"
	"alcyxob/getsfit/internal/repository"
	"alcyxob/getsfit/internal/storage"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const historyWeeks = 12

// PlannedExercise is a catalog exercise prepared for one user's session.
type PlannedExercise struct {
	ID                primitive.ObjectID  `json:"id"`
	Name              string              `json:"name"`
	MuscleGroup       string              `json:"muscleGroup"`
	Equipment         string              `json:"equipment"`
	Instructions      string              `json:"instructions,omitempty"`
	Sets              int                 `json:"sets"`
	RepsMin           int                 `json:"repsMin"`
	RepsMax           int                 `json:"repsMax"`
	RestSeconds       int                 `json:"restSecs"`
	OrderInWorkout    int                 `json:"orderInWorkout"`
	IsWarmUp          bool                `json:"isWarmUp"`
	RecommendedWeight float64             `json:"recommendedWeightKg"`
	WeightIncrement   float64             `json:"weightIncrementKg"`
	SubstitutedFor    *primitive.ObjectID `json:"substitutedFor,omitempty"`
	VideoURL          string              `json:"videoUrl,omitempty"`
}

// WorkoutPlan is what the user should do next.
type WorkoutPlan struct {
	Type      domain.WorkoutType `json:"workoutType"`
	Express   bool               `json:"isExpress"`
	WarmUps   []PlannedExercise  `json:"warmUps"`
	Exercises []PlannedExercise  `json:"exercises"`
}

// ExerciseResult is the user's report for one exercise of a session.
type ExerciseResult struct {
	ExerciseID    primitive.ObjectID
	Weight        float64
	SetsCompleted int
	Difficulty    domain.Difficulty
	Enjoyed       bool
}

type CompleteWorkoutInput struct {
	Type      domain.WorkoutType
	Express   bool
	Source    domain.WorkoutSource
	Exercises []ExerciseResult
}

type CompletionResult struct {
	Workout          *domain.Workout         `json:"workout"`
	WorkoutsThisWeek int                     `json:"workoutsThisWeek"`
	PunishmentActive bool                    `json:"punishmentActive"`
	XPEarned         int                     `json:"xpEarned"`
	NewAchievements  []domain.AchievementDef `json:"newAchievements,omitempty"`
}

// WeekHistory groups completed workouts by Monday week.
type WeekHistory struct {
	WeekStart time.Time        `json:"weekStart"`
	Count     int              `json:"count"`
	Workouts  []domain.Workout `json:"workouts"`
}

type WorkoutService interface {
	// Next builds the plan for the user's next workout type.
	Next(ctx context.Context, userID primitive.ObjectID, express bool) (*WorkoutPlan, error)
	// ExercisesFor returns the ordered exercises of t after blacklist and
	// injury substitution, each with a recommended weight.
	ExercisesFor(ctx context.Context, userID primitive.ObjectID, t domain.WorkoutType, express bool) ([]PlannedExercise, error)
	WarmUps(ctx context.Context, userID primitive.ObjectID) ([]PlannedExercise, error)
	Complete(ctx context.Context, userID primitive.ObjectID, in CompleteWorkoutInput) (*CompletionResult, error)
	// QuickComplete logs the next workout type without per-exercise results.
	QuickComplete(ctx context.Context, userID primitive.ObjectID, source domain.WorkoutSource) (*CompletionResult, error)
	History(ctx context.Context, userID primitive.ObjectID) ([]WeekHistory, error)
	VerifyWithFitbit(ctx context.Context, userID, workoutID primitive.ObjectID) (bool, error)
}

type workoutService struct {
	repos        repository.Repositories
	stats        StatsService
	achievements AchievementService
	quests       QuestService
	fitbit       FitbitService
	files        storage.FileStorage
	schedule     Schedule
	metrics      *metrics.Manager
	now          Clock
}

// NewWorkoutService wires the workout flow. fitbit and files may be nil when
// those integrations are not configured.
func NewWorkoutService(
	repos repository.Repositories,
	stats StatsService,
	achievements AchievementService,
	quests QuestService,
	fitbit FitbitService,
	files storage.FileStorage,
	schedule Schedule,
	m *metrics.Manager,
	now Clock,
) WorkoutService {
	return &workoutService{
		repos:        repos,
		stats:        stats,
		achievements: achievements,
		quests:       quests,
		fitbit:       fitbit,
		files:        files,
		schedule:     schedule,
		metrics:      m,
		now:          now,
	}
}

func (s *workoutService) Next(ctx context.Context, userID primitive.ObjectID, express bool) (*WorkoutPlan, error) {
	t, err := s.stats.NextWorkoutType(ctx, userID)
	if err != nil {
		return nil, err
	}
	warmUps, err := s.WarmUps(ctx, userID)
	if err != nil {
		return nil, err
	}
	exercises, err := s.ExercisesFor(ctx, userID, t, express)
	if err != nil {
		return nil, err
	}
	return &WorkoutPlan{Type: t, Express: express, WarmUps: warmUps, Exercises: exercises}, nil
}

// selectionContext is what selection needs to know about the user.
type selectionContext struct {
	user    *domain.User
	prefs   map[primitive.ObjectID]domain.ExercisePreference
	injured map[string]struct{}
}

func (s *workoutService) loadSelectionContext(ctx context.Context, userID primitive.ObjectID) (*selectionContext, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	prefs, err := s.repos.Preferences.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	injuries, err := s.repos.Injuries.ListActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list injuries: %w", err)
	}

	sc := &selectionContext{
		user:    user,
		prefs:   make(map[primitive.ObjectID]domain.ExercisePreference, len(prefs)),
		injured: make(map[string]struct{}, len(injuries)),
	}
	for _, p := range prefs {
		sc.prefs[p.ExerciseID] = p
	}
	for _, i := range injuries {
		sc.injured[strings.ToLower(string(i.BodyArea))] = struct{}{}
	}
	return sc, nil
}

func (sc *selectionContext) usable(e *domain.Exercise) bool {
	if p, ok := sc.prefs[e.ID]; ok && p.Blacklisted {
		return false
	}
	return !e.ConflictsWith(sc.injured)
}

func (s *workoutService) ExercisesFor(ctx context.Context, userID primitive.ObjectID, t domain.WorkoutType, express bool) ([]PlannedExercise, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown workout type %q", ErrValidationFailed, t)
	}
	sc, err := s.loadSelectionContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	primaries, err := s.repos.Exercises.ListByWorkoutType(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}

	limit := len(primaries)
	if express {
		limit = domain.ExpressExerciseLimit
	}

	used := make(map[primitive.ObjectID]bool)
	out := make([]PlannedExercise, 0, limit)
	for i := range primaries {
		if len(out) >= limit {
			break
		}
		primary := &primaries[i]
		chosen := primary
		if !sc.usable(primary) {
			chosen, err = s.substituteFor(ctx, sc, primary, used)
			if err != nil {
				return nil, err
			}
		}
		if chosen == nil || used[chosen.ID] {
			continue
		}
		used[chosen.ID] = true

		pe := s.plan(ctx, sc, chosen, len(out))
		if chosen.ID != primary.ID {
			id := primary.ID
			pe.SubstitutedFor = &id
		}
		out = append(out, pe)
	}
	return out, nil
}

// substituteFor walks the primary's substitutes in order and returns the
// first usable one not already placed, or nil.
func (s *workoutService) substituteFor(ctx context.Context, sc *selectionContext, primary *domain.Exercise, used map[primitive.ObjectID]bool) (*domain.Exercise, error) {
	for _, id := range primary.SubstituteIDs {
		if used[id] {
			continue
		}
		sub, err := s.repos.Exercises.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load substitute %s: %w", id.Hex(), err)
		}
		if sc.usable(sub) {
			return sub, nil
		}
	}
	return nil, nil
}

func (s *workoutService) plan(ctx context.Context, sc *selectionContext, e *domain.Exercise, order int) PlannedExercise {
	pe := PlannedExercise{
		ID:              e.ID,
		Name:            e.Name,
		MuscleGroup:     e.MuscleGroup,
		Equipment:       e.Equipment,
		Instructions:    e.Instructions,
		Sets:            e.Sets,
		RepsMin:         e.RepsMin,
		RepsMax:         e.RepsMax,
		RestSeconds:     e.RestSeconds,
		OrderInWorkout:  order,
		IsWarmUp:        e.IsWarmUp,
		WeightIncrement: e.WeightIncrement,
	}
	if !e.IsWarmUp {
		pe.RecommendedWeight = s.recommendedWeight(sc, e)
	}
	pe.VideoURL = s.videoURL(ctx, e)
	return pe
}

func (s *workoutService) recommendedWeight(sc *selectionContext, e *domain.Exercise) float64 {
	if p, ok := sc.prefs[e.ID]; ok && p.CurrentWeight != nil {
		return *p.CurrentWeight
	}
	return InitialWeight(sc.user.Bodyweight(s.schedule.DefaultStartingWeight), e.BaseWeightPercent, e.WeightIncrement)
}

func (s *workoutService) videoURL(ctx context.Context, e *domain.Exercise) string {
	if s.files == nil || e.VideoObjectKey == "" {
		return ""
	}
	u, err := s.files.GeneratePresignedDownloadURL(ctx, e.VideoObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		log.WithError(err).WithField("exerciseId", e.ID.Hex()).Warn("could not presign exercise video")
		return ""
	}
	return u
}

// WarmUps lists warm-ups in order, leaving out those that hit an active injury.
func (s *workoutService) WarmUps(ctx context.Context, userID primitive.ObjectID) ([]PlannedExercise, error) {
	sc, err := s.loadSelectionContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := s.repos.Exercises.ListWarmUps(ctx)
	if err != nil {
		return nil, fmt.Errorf("list warm-ups: %w", err)
	}
	out := make([]PlannedExercise, 0, len(all))
	for i := range all {
		if all[i].ConflictsWith(sc.injured) {
			continue
		}
		out = append(out, s.plan(ctx, sc, &all[i], len(out)))
	}
	return out, nil
}

func (s *workoutService) validate(ctx context.Context, in CompleteWorkoutInput) (map[primitive.ObjectID]*domain.Exercise, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown workout type %q", ErrValidationFailed, in.Type)
	}
	exercises := make(map[primitive.ObjectID]*domain.Exercise, len(in.Exercises))
	for i, r := range in.Exercises {
		if !r.Difficulty.Valid() {
			return nil, fmt.Errorf("%w: exercises[%d]: unknown difficulty %q", ErrValidationFailed, i, r.Difficulty)
		}
		if r.Weight < 0 || r.SetsCompleted < 0 {
			return nil, fmt.Errorf("%w: exercises[%d]: weight and sets must not be negative", ErrValidationFailed, i)
		}
		if _, seen := exercises[r.ExerciseID]; seen {
			return nil, fmt.Errorf("%w: exercises[%d]: exercise listed twice", ErrValidationFailed, i)
		}
		e, err := s.repos.Exercises.GetByID(ctx, r.ExerciseID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrExerciseNotFound, r.ExerciseID.Hex())
		}
		if err != nil {
			return nil, err
		}
		exercises[r.ExerciseID] = e
	}
	return exercises, nil
}

func (s *workoutService) Complete(ctx context.Context, userID primitive.ObjectID, in CompleteWorkoutInput) (*CompletionResult, error) {
	exercises, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	if in.Source == "" {
		in.Source = domain.SourceApp
	}

	now := s.now()
	workout := &domain.Workout{
		UserID:          userID,
		Type:            in.Type,
		Express:         in.Express,
		Source:          in.Source,
		CompletedAt:     now,
		DurationMinutes: domain.FullWorkoutMinutes,
	}
	if in.Express {
		workout.DurationMinutes = domain.ExpressWorkoutMinutes
	}
	for _, r := range in.Exercises {
		workout.ExerciseIDs = append(workout.ExerciseIDs, r.ExerciseID)
	}
	id, err := s.repos.Workouts.Create(ctx, workout)
	if err != nil {
		return nil, fmt.Errorf("create workout: %w", err)
	}
	workout.ID = id

	if len(in.Exercises) > 0 {
		logs := make([]domain.ExerciseLog, 0, len(in.Exercises))
		for _, r := range in.Exercises {
			logs = append(logs, domain.ExerciseLog{
				WorkoutID:     id,
				UserID:        userID,
				ExerciseID:    r.ExerciseID,
				SetsCompleted: r.SetsCompleted,
				Weight:        r.Weight,
				Difficulty:    r.Difficulty,
				Enjoyed:       r.Enjoyed,
				PerformedAt:   now,
			})
		}
		if err := s.repos.ExerciseLogs.CreateMany(ctx, logs); err != nil {
			return nil, fmt.Errorf("create exercise logs: %w", err)
		}
		for _, r := range in.Exercises {
			if err := s.progress(ctx, userID, exercises[r.ExerciseID], r, now); err != nil {
				return nil, err
			}
		}
	}

	count, punishment, err := s.stats.RecordWorkoutWeek(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CounterWorkoutsCompleted.Inc()
	}

	res := &CompletionResult{
		Workout:          workout,
		WorkoutsThisWeek: count,
		PunishmentActive: punishment,
		XPEarned:         domain.XPWorkout,
	}
	unlocked, err := s.achievements.Check(ctx, userID, EventWorkout)
	if err != nil {
		log.WithError(err).WithField("userId", userID.Hex()).Warn("achievement check failed")
	}
	for _, a := range unlocked {
		res.XPEarned += a.XP
	}
	res.NewAchievements = unlocked

	questXP, err := s.quests.AwardXP(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("userId", userID.Hex()).Warn("quest award failed")
	}
	res.XPEarned += questXP

	log.WithFields(log.Fields{
		"userId":      userID.Hex(),
		"workoutType": in.Type,
		"express":     in.Express,
		"weekCount":   count,
	}).Info("workout completed")
	return res, nil
}

// progress updates the user's preference for one exercise after a session.
func (s *workoutService) progress(ctx context.Context, userID primitive.ObjectID, e *domain.Exercise, r ExerciseResult, at time.Time) error {
	prev, err := s.repos.Preferences.Get(ctx, userID, e.ID)
	if errors.Is(err, repository.ErrNotFound) {
		prev = nil
	} else if err != nil {
		return fmt.Errorf("load preference: %w", err)
	}

	next := NextWeight(prev, r.Weight, r.Difficulty, e.WeightIncrement)
	pref := &domain.ExercisePreference{
		UserID:                  userID,
		ExerciseID:              e.ID,
		Blacklisted:             !r.Enjoyed,
		CurrentWeight:           &next.Weight,
		SessionsAtCurrentWeight: next.Sessions,
		TotalSessions:           1,
		LastPerformedAt:         &at,
	}
	if prev != nil {
		pref.TotalSessions = prev.TotalSessions + 1
	}
	if err := s.repos.Preferences.Upsert(ctx, pref); err != nil {
		return fmt.Errorf("store preference: %w", err)
	}
	return nil
}

func (s *workoutService) QuickComplete(ctx context.Context, userID primitive.ObjectID, source domain.WorkoutSource) (*CompletionResult, error) {
	t, err := s.stats.NextWorkoutType(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Complete(ctx, userID, CompleteWorkoutInput{Type: t, Source: source})
}

func (s *workoutService) History(ctx context.Context, userID primitive.ObjectID) ([]WeekHistory, error) {
	first := s.schedule.WeekStart(s.now()).AddDate(0, 0, -7*(historyWeeks-1))
	workouts, err := s.repos.Workouts.ListSince(ctx, userID, first)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	weeks := make([]WeekHistory, historyWeeks)
	index := make(map[int64]int, historyWeeks)
	for i := range weeks {
		ws := first.AddDate(0, 0, 7*i)
		weeks[i] = WeekHistory{WeekStart: ws, Workouts: []domain.Workout{}}
		index[ws.Unix()] = i
	}
	for _, w := range workouts {
		i, ok := index[s.schedule.WeekStart(w.CompletedAt).Unix()]
		if !ok {
			continue
		}
		weeks[i].Workouts = append(weeks[i].Workouts, w)
		weeks[i].Count++
	}
	out := make([]WeekHistory, 0, historyWeeks)
	for _, w := range weeks {
		if w.Count == 0 {
			continue
		}
		sort.Slice(w.Workouts, func(a, b int) bool {
			return w.Workouts[a].CompletedAt.Before(w.Workouts[b].CompletedAt)
		})
		out = append(out, w)
	}
	return out, nil
}

func (s *workoutService) VerifyWithFitbit(ctx context.Context, userID, workoutID primitive.ObjectID) (bool, error) {
	if s.fitbit == nil {
		return false, ErrFitbitNotConfigured
	}
	workout, err := s.repos.Workouts.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrWorkoutNotFound
		}
		return false, err
	}
	if workout.UserID != userID {
		return false, ErrWorkoutNotFound
	}
	if workout.FitbitVerified {
		return true, nil
	}
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	ok, err := s.fitbit.VerifyWorkout(ctx, user, workout.CompletedAt)
	if err != nil || !ok {
		return false, err
	}
	if err := s.repos.Workouts.SetFitbitVerified(ctx, workoutID); err != nil {
		return false, fmt.Errorf("mark verified: %w", err)
	}
	return true, nil
}
