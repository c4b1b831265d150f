package service

import (
	"alcyxob/getsfit/internal/clients/fitbit"
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	oauthStateTTL     = 10 * time.Minute
	oauthStatePurpose = "fitbit-link"

	// Heart rate verification: minutes at or above resting+20 inside
	// [completed-5m, completed+35m]; 20 of them prove the session happened.
	defaultRestingHR     = 60
	elevatedHROffset     = 20
	verifyWindowBefore   = 5 * time.Minute
	verifyWindowAfter    = 35 * time.Minute
	verifyElevatedMinute = 20
)

type FitbitService interface {
	Configured() bool
	// AuthURL returns the consent URL with a signed state naming the user.
	AuthURL(userID primitive.ObjectID) (string, error)
	// Connect finishes the OAuth flow and stores the user's tokens.
	Connect(ctx context.Context, state, code string) (primitive.ObjectID, error)
	// AccessToken returns a usable access token, refreshing it when expired.
	AccessToken(ctx context.Context, user *domain.User) (string, error)
	// SyncDay stores the activity and sleep of date for the user. synced is
	// false when Fitbit had nothing for that day.
	SyncDay(ctx context.Context, user *domain.User, date string) (synced bool, err error)
	// SyncYesterday loads the user and syncs the previous calendar day.
	SyncYesterday(ctx context.Context, userID primitive.ObjectID) (synced bool, err error)
	// SleepRecovery stores last night's sleep and returns the recommendation,
	// or nil when there is no sleep data.
	SleepRecovery(ctx context.Context, user *domain.User) (*domain.Recovery, error)
	VerifyWorkout(ctx context.Context, user *domain.User, completedAt time.Time) (bool, error)
}

type fitbitService struct {
	api       FitbitAPI
	users     repository.UserRepository
	days      repository.FitbitDailyRepository
	jwtSecret string
	schedule  Schedule
	now       Clock
}

func NewFitbitService(api FitbitAPI, users repository.UserRepository, days repository.FitbitDailyRepository, jwtSecret string, schedule Schedule, now Clock) FitbitService {
	return &fitbitService{api: api, users: users, days: days, jwtSecret: jwtSecret, schedule: schedule, now: now}
}

func (s *fitbitService) Configured() bool {
	return s.api != nil && s.api.Configured()
}

type oauthStateClaims struct {
	UserID  string `json:"uid"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func (s *fitbitService) AuthURL(userID primitive.ObjectID) (string, error) {
	if !s.Configured() {
		return "", ErrFitbitNotConfigured
	}
	now := s.now()
	claims := &oauthStateClaims{
		UserID:  userID.Hex(),
		Purpose: oauthStatePurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(oauthStateTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign oauth state: %w", err)
	}
	return s.api.AuthURL(state), nil
}

func (s *fitbitService) parseState(state string) (primitive.ObjectID, error) {
	claims := &oauthStateClaims{}
	// Expiry is checked against the service clock, not the parser's.
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(state, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid || claims.Purpose != oauthStatePurpose {
		return primitive.NilObjectID, ErrInvalidState
	}
	if !claims.VerifyExpiresAt(s.now(), true) {
		return primitive.NilObjectID, ErrInvalidState
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidState
	}
	return id, nil
}

func (s *fitbitService) Connect(ctx context.Context, state, code string) (primitive.ObjectID, error) {
	if !s.Configured() {
		return primitive.NilObjectID, ErrFitbitNotConfigured
	}
	userID, err := s.parseState(state)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if code == "" {
		return primitive.NilObjectID, fmt.Errorf("%w: missing code", ErrValidationFailed)
	}
	tok, err := s.api.Exchange(ctx, code)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if err := s.users.SetFitbitTokens(ctx, userID, tok.AccessToken, tok.RefreshToken, tok.Expiry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return primitive.NilObjectID, ErrUserNotFound
		}
		return primitive.NilObjectID, fmt.Errorf("store fitbit tokens: %w", err)
	}
	log.WithField("userId", userID.Hex()).Info("fitbit linked")
	return userID, nil
}

func (s *fitbitService) AccessToken(ctx context.Context, user *domain.User) (string, error) {
	if !user.FitbitLinked() {
		return "", ErrFitbitNotLinked
	}
	expired := user.FitbitTokenExpiresAt != nil && user.FitbitTokenExpiresAt.Before(s.now())
	if !expired || user.FitbitRefreshToken == "" {
		return user.FitbitAccessToken, nil
	}

	tok, err := s.api.Refresh(ctx, user.FitbitRefreshToken)
	if err != nil {
		return "", err
	}
	if err := s.users.SetFitbitTokens(ctx, user.ID, tok.AccessToken, tok.RefreshToken, tok.Expiry); err != nil {
		return "", fmt.Errorf("store refreshed tokens: %w", err)
	}
	user.FitbitAccessToken = tok.AccessToken
	user.FitbitRefreshToken = tok.RefreshToken
	user.FitbitTokenExpiresAt = &tok.Expiry
	return tok.AccessToken, nil
}

func (s *fitbitService) SyncDay(ctx context.Context, user *domain.User, date string) (bool, error) {
	token, err := s.AccessToken(ctx, user)
	if err != nil {
		return false, err
	}

	day := &domain.FitbitDaily{UserID: user.ID, Date: date}
	activity, actErr := s.api.DailySummary(ctx, token, date)
	if actErr == nil {
		day.Steps = &activity.Steps
		day.ActiveMinutes = &activity.ActiveMinutes
		day.RestingHR = activity.RestingHR
	}
	sleep, sleepErr := s.api.Sleep(ctx, token, date)
	if sleepErr == nil {
		applySleep(day, sleep)
	}
	if actErr != nil && sleepErr != nil {
		log.WithFields(log.Fields{"userId": user.ID.Hex(), "date": date}).
			WithError(errors.Join(actErr, sleepErr)).Debug("no fitbit data for day")
		return false, nil
	}

	if err := s.days.Upsert(ctx, day); err != nil {
		return false, fmt.Errorf("store fitbit day: %w", err)
	}
	return true, nil
}

func (s *fitbitService) SyncYesterday(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	return s.SyncDay(ctx, user, s.schedule.PreviousDayKey(s.now()))
}

func applySleep(day *domain.FitbitDaily, sleep *fitbit.SleepSummary) {
	rec := domain.RecoveryFromSleep(sleep.MinutesAsleep, sleep.Efficiency)
	day.SleepMinutes = &sleep.MinutesAsleep
	day.SleepEfficiency = &sleep.Efficiency
	day.RecoveryRecommendation = &rec
}

func (s *fitbitService) SleepRecovery(ctx context.Context, user *domain.User) (*domain.Recovery, error) {
	token, err := s.AccessToken(ctx, user)
	if err != nil {
		return nil, err
	}
	date := s.schedule.PreviousDayKey(s.now())
	sleep, err := s.api.Sleep(ctx, token, date)
	if err != nil {
		log.WithError(err).WithField("userId", user.ID.Hex()).Debug("no fitbit sleep data")
		return nil, nil
	}
	day := &domain.FitbitDaily{UserID: user.ID, Date: date}
	applySleep(day, sleep)
	if err := s.days.Upsert(ctx, day); err != nil {
		return nil, fmt.Errorf("store fitbit day: %w", err)
	}
	return day.RecoveryRecommendation, nil
}

func (s *fitbitService) VerifyWorkout(ctx context.Context, user *domain.User, completedAt time.Time) (bool, error) {
	token, err := s.AccessToken(ctx, user)
	if err != nil {
		return false, err
	}
	local := s.schedule.Local(completedAt)
	date := local.Format(domain.DayLayout)
	points, err := s.api.IntradayHeartRate(ctx, token, date)
	if err != nil {
		return false, err
	}

	resting := defaultRestingHR
	if day, err := s.days.Get(ctx, user.ID, date); err == nil && day.RestingHR != nil {
		resting = *day.RestingHR
	}

	from := local.Add(-verifyWindowBefore)
	to := local.Add(verifyWindowAfter)
	fromClock, toClock := from.Format("15:04:05"), to.Format("15:04:05")
	// Samples are per calendar day, so clip the window at the day's edges.
	if from.Day() != local.Day() {
		fromClock = "00:00:00"
	}
	if to.Day() != local.Day() {
		toClock = "23:59:59"
	}
	minutes := fitbit.MinutesAbove(points, fromClock, toClock, resting+elevatedHROffset)
	return minutes >= verifyElevatedMinute, nil
}
