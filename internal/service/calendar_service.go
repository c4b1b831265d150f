package service

import (
	"alcyxob/getsfit/internal/clients/calcom"
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bookingHour is the local hour of the weekday workout bookings.
const bookingHour = 12

const rebookMessage = "You cancelled a workout slot. Rebook it in your calendar to stay on track."

// ScheduleResult reports one run of weekly slot booking.
type ScheduleResult struct {
	Created int      `json:"created"`
	Errors  []string `json:"errors,omitempty"`
	Message string   `json:"message,omitempty"`
}

type CalendarService interface {
	Configured() bool
	// ScheduleWeek books a workout on every remaining weekday of the current week.
	ScheduleWeek(ctx context.Context, userID primitive.ObjectID) (*ScheduleResult, error)
	// HandleWebhook verifies a Cal.com delivery and nudges the attendee to
	// rebook when a workout booking was cancelled.
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

type calendarService struct {
	api           CalendarAPI
	users         repository.UserRepository
	notifications NotificationService
	schedule      Schedule
	now           Clock
}

func NewCalendarService(api CalendarAPI, users repository.UserRepository, notifications NotificationService, schedule Schedule, now Clock) CalendarService {
	return &calendarService{api: api, users: users, notifications: notifications, schedule: schedule, now: now}
}

func (s *calendarService) Configured() bool {
	return s.api != nil && s.api.Configured()
}

// weekSlots returns Monday to Friday at bookingHour of the current week that
// are still in the future.
func (s *calendarService) weekSlots() []time.Time {
	now := s.now()
	weekStart := s.schedule.WeekStart(now)
	var slots []time.Time
	for d := 0; d < 5; d++ {
		day := weekStart.AddDate(0, 0, d)
		slot := time.Date(day.Year(), day.Month(), day.Day(), bookingHour, 0, 0, 0, s.schedule.Location)
		if slot.After(now) {
			slots = append(slots, slot)
		}
	}
	return slots
}

func (s *calendarService) ScheduleWeek(ctx context.Context, userID primitive.ObjectID) (*ScheduleResult, error) {
	if !s.Configured() {
		return nil, ErrCalcomNotConfigured
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	res := &ScheduleResult{}
	slots := s.weekSlots()
	if len(slots) == 0 {
		res.Message = "all workout slots for this week are in the past"
		return res, nil
	}

	attendee := calcom.Attendee{
		Name:     attendeeName(user),
		Email:    user.Email,
		TimeZone: s.schedule.Location.String(),
	}
	for _, slot := range slots {
		if err := s.api.CreateBooking(ctx, slot, attendee); err != nil {
			log.WithError(err).WithField("slot", slot).Warn("failed to create workout booking")
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", slot.Format(time.RFC3339), err))
			continue
		}
		res.Created++
	}
	return res, nil
}

func attendeeName(u *domain.User) string {
	if u.Name != "" {
		return u.Name
	}
	name, _, _ := strings.Cut(u.Email, "@")
	return name
}

func (s *calendarService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.Configured() {
		return ErrCalcomNotConfigured
	}
	if !s.api.VerifySignature(body, signature) {
		return ErrInvalidSignature
	}
	event, err := calcom.ParseWebhookEvent(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if event.TriggerEvent != calcom.TriggerBookingCancelled || event.Payload.Type != s.api.EventTypeSlug() {
		return nil
	}
	if len(event.Payload.Attendees) == 0 || event.Payload.Attendees[0].Email == "" {
		return nil
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(event.Payload.Attendees[0].Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error fetching attendee: %w", err)
	}
	if !user.TelegramLinked() {
		return nil
	}
	return s.notifications.Send(ctx, user, rebookMessage)
}
