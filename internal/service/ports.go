package service

import (
	"alcyxob/getsfit/internal/clients/calcom"
	"alcyxob/getsfit/internal/clients/fitbit"
	"context"
	"time"

	"golang.org/x/oauth2"
)

// Messenger delivers a text message to a linked chat.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// FitbitAPI is the subset of the Fitbit client the services use.
type FitbitAPI interface {
	Configured() bool
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	DailySummary(ctx context.Context, accessToken, date string) (*fitbit.DailySummary, error)
	Sleep(ctx context.Context, accessToken, date string) (*fitbit.SleepSummary, error)
	IntradayHeartRate(ctx context.Context, accessToken, date string) ([]fitbit.HeartRatePoint, error)
}

// CalendarAPI is the subset of the Cal.com client the services use.
type CalendarAPI interface {
	Configured() bool
	EventTypeSlug() string
	AvailableSlots(ctx context.Context, from, to time.Time, loc *time.Location) ([]time.Time, error)
	WorkoutBookingsOn(ctx context.Context, day time.Time, loc *time.Location) ([]time.Time, error)
	CreateBooking(ctx context.Context, start time.Time, attendee calcom.Attendee) error
	VerifySignature(body []byte, signature string) bool
}
