package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutType is one slot of the push/pull/legs rotation.
type WorkoutType string

const (
	WorkoutA WorkoutType = "A" // push
	WorkoutB WorkoutType = "B" // pull
	WorkoutC WorkoutType = "C" // legs + core
)

var workoutRotation = []WorkoutType{WorkoutA, WorkoutB, WorkoutC}

func (t WorkoutType) Valid() bool {
	return t == WorkoutA || t == WorkoutB || t == WorkoutC
}

// Next returns the type that follows t in the rotation. Unknown types start over at A.
func (t WorkoutType) Next() WorkoutType {
	for i, wt := range workoutRotation {
		if wt == t {
			return workoutRotation[(i+1)%len(workoutRotation)]
		}
	}
	return WorkoutA
}

// Exercise is a catalog entry. Catalog rows are reference data seeded once.
type Exercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	MuscleGroup  string             `bson:"muscleGroup" json:"muscleGroup"`
	Equipment    string             `bson:"equipment" json:"equipment"`
	Instructions string             `bson:"instructions,omitempty" json:"instructions,omitempty"`

	BaseWeightPercent float64 `bson:"baseWeightPercent" json:"baseWeightPercent"` // fraction of bodyweight
	WeightIncrement   float64 `bson:"weightIncrement" json:"weightIncrement"`     // kg; 0 for bodyweight moves

	WorkoutType    WorkoutType `bson:"workoutType,omitempty" json:"workoutType,omitempty"`
	OrderInWorkout int         `bson:"orderInWorkout" json:"orderInWorkout"`
	Sets           int         `bson:"sets" json:"sets"`
	RepsMin        int         `bson:"repsMin" json:"repsMin"`
	RepsMax        int         `bson:"repsMax" json:"repsMax"`
	RestSeconds    int         `bson:"restSeconds" json:"restSeconds"`

	IsWarmUp    bool `bson:"isWarmUp" json:"isWarmUp"`
	WarmUpOrder int  `bson:"warmUpOrder,omitempty" json:"warmUpOrder,omitempty"`

	// Substitute pairing is stored on both sides.
	SubstituteIDs     []primitive.ObjectID `bson:"substituteIds,omitempty" json:"substituteIds,omitempty"`
	InjuryAreasToSkip []InjuryArea         `bson:"injuryAreasToSkip,omitempty" json:"injuryAreasToSkip,omitempty"`

	VideoObjectKey string `bson:"videoObjectKey,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ConflictsWith reports whether any of the exercise's skip areas is in injured.
// injured must hold lower-cased area names.
func (e *Exercise) ConflictsWith(injured map[string]struct{}) bool {
	for _, a := range e.InjuryAreasToSkip {
		if _, ok := injured[strings.ToLower(string(a))]; ok {
			return true
		}
	}
	return false
}

func (e *Exercise) HasSubstitute(id primitive.ObjectID) bool {
	for _, s := range e.SubstituteIDs {
		if s == id {
			return true
		}
	}
	return false
}
