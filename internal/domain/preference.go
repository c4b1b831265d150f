package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExercisePreference is the per (user, exercise) progression state.
type ExercisePreference struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID                  primitive.ObjectID `bson:"userId" json:"userId"`
	ExerciseID              primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Blacklisted             bool               `bson:"blacklisted" json:"blacklisted"`
	CurrentWeight           *float64           `bson:"currentWeight,omitempty" json:"currentWeight,omitempty"`
	SessionsAtCurrentWeight int                `bson:"sessionsAtCurrentWeight" json:"sessionsAtCurrentWeight"`
	TotalSessions           int                `bson:"totalSessions" json:"totalSessions"`
	LastPerformedAt         *time.Time         `bson:"lastPerformedAt,omitempty" json:"lastPerformedAt,omitempty"`
	CreatedAt               time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt               time.Time          `bson:"updatedAt" json:"updatedAt"`
}
