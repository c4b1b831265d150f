package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Difficulty string

const (
	TooLight  Difficulty = "too_light"
	JustRight Difficulty = "just_right"
	TooHeavy  Difficulty = "too_heavy"
)

func (d Difficulty) Valid() bool {
	return d == TooLight || d == JustRight || d == TooHeavy
}

// Durations recorded for completed sessions, in minutes.
const (
	FullWorkoutMinutes    = 30
	ExpressWorkoutMinutes = 15
	ExpressExerciseLimit  = 3
)

// WorkoutSource tells where a completion was recorded.
type WorkoutSource string

const (
	SourceApp      WorkoutSource = "app"
	SourceTelegram WorkoutSource = "telegram"
)

// Workout is a completed session. History is append-only.
type Workout struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID   `bson:"userId" json:"userId"`
	Type            WorkoutType          `bson:"workoutType" json:"workoutType"`
	Express         bool                 `bson:"isExpress" json:"isExpress"`
	Source          WorkoutSource        `bson:"source" json:"source"`
	CompletedAt     time.Time            `bson:"completedAt" json:"completedAt"`
	DurationMinutes int                  `bson:"durationMins" json:"durationMins"`
	ExerciseIDs     []primitive.ObjectID `bson:"exerciseIds,omitempty" json:"exerciseIds,omitempty"`
	FitbitVerified  bool                 `bson:"fitbitVerified" json:"fitbitVerified"`
}

// ExerciseLog is one exercise result inside a workout. UserID and
// PerformedAt are copied from the workout so logs can be queried alone.
type ExerciseLog struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID     primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	ExerciseID    primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	SetsCompleted int                `bson:"setsCompleted" json:"setsCompleted"`
	Weight        float64            `bson:"weightKg" json:"weightKg"`
	Difficulty    Difficulty         `bson:"difficultyFeedback" json:"difficultyFeedback"`
	Enjoyed       bool               `bson:"enjoyed" json:"enjoyed"`
	PerformedAt   time.Time          `bson:"performedAt" json:"performedAt"`
}
