package service

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/metrics"
	"alcyxob/getsfit/internal/repository"
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService sends bot messages and keeps the once-per-day marker
// for scheduled nudges. Days are calendar days in the schedule timezone.
type NotificationService interface {
	WasSentToday(ctx context.Context, userID primitive.ObjectID, kind domain.NotificationKind) (bool, error)
	MarkSent(ctx context.Context, userID primitive.ObjectID, kind domain.NotificationKind) error
	// SendOnce sends text unless kind already went out today. The marker is
	// written only after a successful send.
	SendOnce(ctx context.Context, user *domain.User, kind domain.NotificationKind, text string) (sent bool, err error)
	// Send delivers text without dedup.
	Send(ctx context.Context, user *domain.User, text string) error
}

type notificationService struct {
	repo      repository.NotificationRepository
	messenger Messenger
	schedule  Schedule
	metrics   *metrics.Manager
	now       Clock
}

func NewNotificationService(repo repository.NotificationRepository, messenger Messenger, schedule Schedule, m *metrics.Manager, now Clock) NotificationService {
	return &notificationService{repo: repo, messenger: messenger, schedule: schedule, metrics: m, now: now}
}

func (s *notificationService) today() string {
	return s.schedule.DayKey(s.now())
}

func (s *notificationService) WasSentToday(ctx context.Context, userID primitive.ObjectID, kind domain.NotificationKind) (bool, error) {
	return s.repo.Exists(ctx, userID, s.today(), kind)
}

func (s *notificationService) MarkSent(ctx context.Context, userID primitive.ObjectID, kind domain.NotificationKind) error {
	return s.repo.MarkSent(ctx, userID, s.today(), kind, s.now())
}

func (s *notificationService) Send(ctx context.Context, user *domain.User, text string) error {
	if !user.TelegramLinked() {
		return ErrTelegramNotLinked
	}
	return s.messenger.SendMessage(ctx, *user.TelegramChatID, text)
}

func (s *notificationService) SendOnce(ctx context.Context, user *domain.User, kind domain.NotificationKind, text string) (bool, error) {
	sent, err := s.WasSentToday(ctx, user.ID, kind)
	if err != nil {
		return false, fmt.Errorf("check %s marker: %w", kind, err)
	}
	if sent {
		if s.metrics != nil {
			s.metrics.CounterNotificationsDeduped.WithLabelValues(string(kind)).Inc()
		}
		return false, nil
	}
	if err := s.Send(ctx, user, text); err != nil {
		return false, err
	}
	if err := s.MarkSent(ctx, user.ID, kind); err != nil {
		return true, fmt.Errorf("mark %s sent: %w", kind, err)
	}
	if s.metrics != nil {
		s.metrics.CounterNotificationsSent.WithLabelValues(string(kind)).Inc()
	}
	log.WithFields(log.Fields{"userId": user.ID.Hex(), "kind": kind}).Debug("notification sent")
	return true, nil
}
