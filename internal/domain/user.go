package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Fallbacks used when a user has not recorded their weights yet.
const (
	DefaultStartingWeight = 82.0
	DefaultTargetWeight   = 75.0
)

// User is the account that owns workouts, logs and integrations.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"` // unique
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	StartingWeight *float64   `bson:"startingWeight,omitempty" json:"startingWeight,omitempty"`
	CurrentWeight  *float64   `bson:"currentWeight,omitempty" json:"currentWeight,omitempty"`
	TargetWeight   *float64   `bson:"targetWeight,omitempty" json:"targetWeight,omitempty"`
	GoalStartedAt  *time.Time `bson:"goalStartedAt,omitempty" json:"goalStartedAt,omitempty"`

	// Messaging bot link. The code is cleared once the chat is linked.
	TelegramChatID   *int64 `bson:"telegramChatId,omitempty" json:"-"`
	TelegramLinkCode string `bson:"telegramLinkCode,omitempty" json:"-"`

	FitbitAccessToken    string     `bson:"fitbitAccessToken,omitempty" json:"-"`
	FitbitRefreshToken   string     `bson:"fitbitRefreshToken,omitempty" json:"-"`
	FitbitTokenExpiresAt *time.Time `bson:"fitbitTokenExpiresAt,omitempty" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) TelegramLinked() bool {
	return u.TelegramChatID != nil
}

func (u *User) FitbitLinked() bool {
	return u.FitbitAccessToken != ""
}

// Bodyweight is the weight used for first-time recommendations:
// current, else starting, else the default.
func (u *User) Bodyweight(fallback float64) float64 {
	if u.CurrentWeight != nil {
		return *u.CurrentWeight
	}
	if u.StartingWeight != nil {
		return *u.StartingWeight
	}
	return fallback
}

// Weights resolves starting, current and target weight with fallbacks.
func (u *User) Weights(defaultStart, defaultTarget float64) (start, current, target float64) {
	start = defaultStart
	if u.StartingWeight != nil {
		start = *u.StartingWeight
	}
	current = start
	if u.CurrentWeight != nil {
		current = *u.CurrentWeight
	}
	target = defaultTarget
	if u.TargetWeight != nil {
		target = *u.TargetWeight
	}
	return start, current, target
}
