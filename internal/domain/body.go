package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Accepted ranges for body measurements.
const (
	MinWeightKg = 30.0
	MaxWeightKg = 200.0
	MinWaistCm  = 50.0
	MaxWaistCm  = 200.0
)

type WeightLog struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	WeightKg float64            `bson:"weightKg" json:"weightKg"`
	LoggedAt time.Time          `bson:"loggedAt" json:"loggedAt"`
}

type WaistLog struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	WaistCm  float64            `bson:"waistCm" json:"waistCm"`
	LoggedAt time.Time          `bson:"loggedAt" json:"loggedAt"`
}
