package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recovery is the training recommendation derived from last night's sleep.
type Recovery string

const (
	RecoveryRest   Recovery = "rest"
	RecoveryNormal Recovery = "normal"
	RecoveryPush   Recovery = "push"
)

// RecoveryFromSleep: rest under 6h or 75% efficiency, push at 7h and 85%+.
func RecoveryFromSleep(minutesAsleep, efficiency int) Recovery {
	switch {
	case minutesAsleep < 360 || efficiency < 75:
		return RecoveryRest
	case minutesAsleep >= 420 && efficiency >= 85:
		return RecoveryPush
	default:
		return RecoveryNormal
	}
}

// FitbitDaily is one synced day per user; nil fields were not reported.
type FitbitDaily struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID                 primitive.ObjectID `bson:"userId" json:"userId"`
	Date                   string             `bson:"date" json:"date"` // YYYY-MM-DD
	Steps                  *int               `bson:"steps,omitempty" json:"steps,omitempty"`
	ActiveMinutes          *int               `bson:"activeMinutes,omitempty" json:"activeMinutes,omitempty"`
	RestingHR              *int               `bson:"restingHr,omitempty" json:"restingHr,omitempty"`
	SleepMinutes           *int               `bson:"sleepDurationMins,omitempty" json:"sleepDurationMins,omitempty"`
	SleepEfficiency        *int               `bson:"sleepScore,omitempty" json:"sleepScore,omitempty"`
	RecoveryRecommendation *Recovery          `bson:"recoveryRecommendation,omitempty" json:"recoveryRecommendation,omitempty"`
	UpdatedAt              time.Time          `bson:"updatedAt" json:"updatedAt"`
}
