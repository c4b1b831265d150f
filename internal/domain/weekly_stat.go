package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// XP awarded per event.
const (
	XPWorkout   = 50
	XPWeightLog = 10
	XPQuest     = 30
	XPPerLevel  = 500
)

// WeeklyStat is keyed by (user, week start) and upserted as events happen.
type WeeklyStat struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID `bson:"userId" json:"userId"`
	WeekStart         time.Time          `bson:"weekStart" json:"weekStart"`
	WorkoutsCompleted int                `bson:"workoutsCompleted" json:"workoutsCompleted"`
	PunishmentActive  bool               `bson:"punishmentActive" json:"punishmentActive"`
	XPEarned          int                `bson:"xpEarned" json:"xpEarned"`
	QuestsCompleted   int                `bson:"questsCompleted" json:"questsCompleted"`
}

// Level maps total XP to a level starting at 1.
func Level(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/XPPerLevel + 1
}
