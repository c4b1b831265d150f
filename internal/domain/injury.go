package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InjuryArea string

const (
	AreaShoulder InjuryArea = "shoulder"
	AreaBack     InjuryArea = "back"
	AreaKnee     InjuryArea = "knee"
	AreaWrist    InjuryArea = "wrist"
	AreaElbow    InjuryArea = "elbow"
	AreaHip      InjuryArea = "hip"
	AreaNeck     InjuryArea = "neck"
	AreaOther    InjuryArea = "other"
)

func (a InjuryArea) Valid() bool {
	switch a {
	case AreaShoulder, AreaBack, AreaKnee, AreaWrist, AreaElbow, AreaHip, AreaNeck, AreaOther:
		return true
	}
	return false
}

type InjurySeverity string

const (
	SeverityMild     InjurySeverity = "mild"
	SeverityModerate InjurySeverity = "moderate"
	SeverityBad      InjurySeverity = "bad"
)

func (s InjurySeverity) Valid() bool {
	return s == SeverityMild || s == SeverityModerate || s == SeverityBad
}

// Injury is active while ResolvedAt is nil.
type Injury struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	BodyArea   InjuryArea         `bson:"bodyArea" json:"bodyArea"`
	Severity   InjurySeverity     `bson:"severity" json:"severity"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	StartedAt  time.Time          `bson:"startedAt" json:"startedAt"`
	ResolvedAt *time.Time         `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}

func (i *Injury) Active() bool {
	return i.ResolvedAt == nil
}
