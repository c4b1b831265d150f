package service

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InjuryService interface {
	Report(ctx context.Context, userID primitive.ObjectID, area domain.InjuryArea, severity domain.InjurySeverity, notes string) (*domain.Injury, error)
	ListActive(ctx context.Context, userID primitive.ObjectID) ([]domain.Injury, error)
	// Resolve closes an injury. Only its owner may resolve it.
	Resolve(ctx context.Context, userID, injuryID primitive.ObjectID) error
}

type injuryService struct {
	injuries repository.InjuryRepository
	now      Clock
}

func NewInjuryService(injuries repository.InjuryRepository, now Clock) InjuryService {
	return &injuryService{injuries: injuries, now: now}
}

func (s *injuryService) Report(ctx context.Context, userID primitive.ObjectID, area domain.InjuryArea, severity domain.InjurySeverity, notes string) (*domain.Injury, error) {
	area = domain.InjuryArea(strings.ToLower(strings.TrimSpace(string(area))))
	if !area.Valid() {
		return nil, fmt.Errorf("%w: unknown body area %q", ErrValidationFailed, area)
	}
	if !severity.Valid() {
		return nil, fmt.Errorf("%w: unknown severity %q", ErrValidationFailed, severity)
	}
	injury := &domain.Injury{
		UserID:    userID,
		BodyArea:  area,
		Severity:  severity,
		Notes:     strings.TrimSpace(notes),
		StartedAt: s.now(),
	}
	id, err := s.injuries.Create(ctx, injury)
	if err != nil {
		return nil, fmt.Errorf("create injury: %w", err)
	}
	injury.ID = id
	return injury, nil
}

func (s *injuryService) ListActive(ctx context.Context, userID primitive.ObjectID) ([]domain.Injury, error) {
	return s.injuries.ListActive(ctx, userID)
}

func (s *injuryService) Resolve(ctx context.Context, userID, injuryID primitive.ObjectID) error {
	injury, err := s.injuries.GetByID(ctx, injuryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInjuryNotFound
		}
		return err
	}
	if injury.UserID != userID {
		// Someone else's injury looks the same as a missing one.
		return ErrInjuryNotFound
	}
	if !injury.Active() {
		return nil
	}
	return s.injuries.Resolve(ctx, injuryID, s.now())
}
