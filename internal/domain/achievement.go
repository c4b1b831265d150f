package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AchievementType string

const (
	AchievementFirstBlood      AchievementType = "first_blood"
	AchievementConsistencyKing AchievementType = "consistency_king"
	AchievementScaleWarrior    AchievementType = "scale_warrior"
	AchievementFirstKiloDown   AchievementType = "first_kilo_down"
	AchievementDown5           AchievementType = "down_5"
	AchievementGoalCrusher     AchievementType = "goal_crusher"
	AchievementHealthyZone     AchievementType = "healthy_zone"
)

type AchievementDef struct {
	Type  AchievementType `json:"type"`
	Label string          `json:"label"`
	XP    int             `json:"xp"`
}

var achievementDefs = map[AchievementType]AchievementDef{
	AchievementFirstBlood:      {AchievementFirstBlood, "First Blood", 50},
	AchievementConsistencyKing: {AchievementConsistencyKing, "Consistency King", 100},
	AchievementScaleWarrior:    {AchievementScaleWarrior, "Scale Warrior", 50},
	AchievementFirstKiloDown:   {AchievementFirstKiloDown, "First Kilo Down", 100},
	AchievementDown5:           {AchievementDown5, "Down 5", 200},
	AchievementGoalCrusher:     {AchievementGoalCrusher, "Goal Crusher", 1000},
	AchievementHealthyZone:     {AchievementHealthyZone, "Healthy Zone", 150},
}

func (t AchievementType) Def() AchievementDef {
	if d, ok := achievementDefs[t]; ok {
		return d
	}
	return AchievementDef{Type: t, Label: string(t)}
}

// Achievement is awarded at most once per user and type.
type Achievement struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Type       AchievementType    `bson:"achievementType" json:"achievementType"`
	UnlockedAt time.Time          `bson:"unlockedAt" json:"unlockedAt"`
}
