package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationKind string

const (
	NotifyMorning  NotificationKind = "morning"
	NotifyPumpUp   NotificationKind = "pumpup"
	NotifyWindow   NotificationKind = "window"
	NotifyLastCall NotificationKind = "lastcall"
	NotifySummary  NotificationKind = "summary"
	NotifyRestDay  NotificationKind = "restday"
	NotifyWeekly   NotificationKind = "weekly"
)

// SentNotification marks that a kind went out on a calendar day; (user, date, kind) is unique.
type SentNotification struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Date   string             `bson:"date" json:"date"` // YYYY-MM-DD in the schedule timezone
	Kind   NotificationKind   `bson:"kind" json:"kind"`
	SentAt time.Time          `bson:"sentAt" json:"sentAt"`
}
