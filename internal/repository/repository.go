package repository

import (
	"alcyxob/getsfit/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	SetCurrentWeight(ctx context.Context, id primitive.ObjectID, weightKg float64) error
	UpdateGoals(ctx context.Context, id primitive.ObjectID, startingWeight, targetWeight *float64) error
	SetTelegramLinkCode(ctx context.Context, id primitive.ObjectID, code string) error
	// LinkTelegramByCode binds chatID to the user holding code and clears the code.
	LinkTelegramByCode(ctx context.Context, code string, chatID int64) (*domain.User, error)
	GetByTelegramChatID(ctx context.Context, chatID int64) (*domain.User, error)
	SetFitbitTokens(ctx context.Context, id primitive.ObjectID, accessToken, refreshToken string, expiresAt time.Time) error
}

// ExerciseRepository is the exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	// ListByWorkoutType returns the non-warm-up exercises of t ordered by position.
	ListByWorkoutType(ctx context.Context, t domain.WorkoutType) ([]domain.Exercise, error)
	ListWarmUps(ctx context.Context) ([]domain.Exercise, error)
	ListAll(ctx context.Context) ([]domain.Exercise, error)
	Count(ctx context.Context) (int64, error)
	AddSubstitute(ctx context.Context, id, substituteID primitive.ObjectID) error
	SetVideoObjectKey(ctx context.Context, id primitive.ObjectID, objectKey string) error
}

type PreferenceRepository interface {
	Get(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.ExercisePreference, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.ExercisePreference, error)
	// Upsert writes the preference keyed by (user, exercise).
	Upsert(ctx context.Context, pref *domain.ExercisePreference) error
}

type InjuryRepository interface {
	Create(ctx context.Context, injury *domain.Injury) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Injury, error)
	ListActive(ctx context.Context, userID primitive.ObjectID) ([]domain.Injury, error)
	Resolve(ctx context.Context, id primitive.ObjectID, resolvedAt time.Time) error
}

// WorkoutRepository stores completed sessions. Ranges are [from, to).
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	CountBetween(ctx context.Context, userID primitive.ObjectID, from, to time.Time) (int64, error)
	CountAll(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Latest(ctx context.Context, userID primitive.ObjectID) (*domain.Workout, error)
	// ListSince returns workouts completed at or after since, oldest first.
	ListSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.Workout, error)
	SetFitbitVerified(ctx context.Context, id primitive.ObjectID) error
}

type ExerciseLogRepository interface {
	CreateMany(ctx context.Context, logs []domain.ExerciseLog) error
	ListBetween(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.ExerciseLog, error)
	// DistinctExercisesBefore lists exercise ids the user logged before t.
	DistinctExercisesBefore(ctx context.Context, userID primitive.ObjectID, t time.Time) ([]primitive.ObjectID, error)
}

// WeeklyStatRepository upserts per-(user, week) bookkeeping. A row created by
// any of the write methods starts with zero workouts and punishment active.
type WeeklyStatRepository interface {
	Get(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (*domain.WeeklyStat, error)
	RecordWorkouts(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, workouts int, punishment bool, xp int) error
	AddXP(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, xp int) error
	SetQuestsCompleted(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, quests int, xp int) error
	TotalXP(ctx context.Context, userID primitive.ObjectID) (int, error)
}

type NotificationRepository interface {
	Exists(ctx context.Context, userID primitive.ObjectID, date string, kind domain.NotificationKind) (bool, error)
	// MarkSent is idempotent on (user, date, kind).
	MarkSent(ctx context.Context, userID primitive.ObjectID, date string, kind domain.NotificationKind, at time.Time) error
}

type BodyLogRepository interface {
	CreateWeight(ctx context.Context, log *domain.WeightLog) error
	CreateWaist(ctx context.Context, log *domain.WaistLog) error
	// ListWeights returns the latest limit logs at or after since, oldest first.
	ListWeights(ctx context.Context, userID primitive.ObjectID, since time.Time, limit int64) ([]domain.WeightLog, error)
	// ListWaists returns the newest limit logs, newest first.
	ListWaists(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.WaistLog, error)
	CountWeightsSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error)
	CountWaistsSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error)
}

type AchievementRepository interface {
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Achievement, error)
	// Create returns ErrDuplicate when the user already has the type.
	Create(ctx context.Context, a *domain.Achievement) error
}

type FitbitDailyRepository interface {
	// Upsert keyed by (user, date); nil fields leave stored values untouched.
	Upsert(ctx context.Context, day *domain.FitbitDaily) error
	Get(ctx context.Context, userID primitive.ObjectID, date string) (*domain.FitbitDaily, error)
	ListSince(ctx context.Context, userID primitive.ObjectID, sinceDate string) ([]domain.FitbitDaily, error)
}

// Repositories bundles every store so wiring code can pass one value around.
type Repositories struct {
	Users         UserRepository
	Exercises     ExerciseRepository
	Preferences   PreferenceRepository
	Injuries      InjuryRepository
	Workouts      WorkoutRepository
	ExerciseLogs  ExerciseLogRepository
	WeeklyStats   WeeklyStatRepository
	Notifications NotificationRepository
	BodyLogs      BodyLogRepository
	Achievements  AchievementRepository
	FitbitDays    FitbitDailyRepository
}
