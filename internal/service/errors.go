package service

import (
	"errors"
	"time"
)

var (
	ErrValidationFailed     = errors.New("validation failed")
	ErrUserNotFound         = errors.New("user not found")
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrWorkoutNotFound      = errors.New("workout not found")
	ErrInjuryNotFound       = errors.New("injury not found")
	ErrForbidden            = errors.New("forbidden")
	ErrTelegramNotLinked    = errors.New("telegram is not linked")
	ErrFitbitNotLinked      = errors.New("fitbit is not linked")
	ErrFitbitNotConfigured  = errors.New("fitbit is not configured")
	ErrCalcomNotConfigured  = errors.New("cal.com is not configured")
	ErrStorageNotConfigured = errors.New("object storage is not configured")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrInvalidState         = errors.New("invalid oauth state")
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time
