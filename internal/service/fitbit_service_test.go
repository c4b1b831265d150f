package service

import (
	"alcyxob/getsfit/internal/clients/fitbit"
	"alcyxob/getsfit/internal/domain"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func stateFrom(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestFitbit_ConnectStoresTokens(t *testing.T) {
	h := newHarness(t)
	u := h.user("fit@test.dev")

	authURL, err := h.fitbit.AuthURL(u.ID)
	require.NoError(t, err)
	state := stateFrom(t, authURL)
	require.NotEmpty(t, state)

	id, err := h.fitbit.Connect(h.ctx, state, "good-code")
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	stored, err := h.repos.Users.GetByID(h.ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.FitbitLinked())
	assert.Equal(t, "access-1", stored.FitbitAccessToken)
	assert.Equal(t, "refresh-1", stored.FitbitRefreshToken)
}

func TestFitbit_ConnectRejectsBadState(t *testing.T) {
	h := newHarness(t)
	u := h.user("fit@test.dev")

	_, err := h.fitbit.Connect(h.ctx, "not-a-token", "good-code")
	assert.ErrorIs(t, err, ErrInvalidState)

	authURL, err := h.fitbit.AuthURL(u.ID)
	require.NoError(t, err)
	state := stateFrom(t, authURL)

	h.clock.advance(oauthStateTTL + time.Minute)
	_, err = h.fitbit.Connect(h.ctx, state, "good-code")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestFitbit_ConnectRequiresCode(t *testing.T) {
	h := newHarness(t)
	u := h.user("fit@test.dev")
	authURL, err := h.fitbit.AuthURL(u.ID)
	require.NoError(t, err)

	_, err = h.fitbit.Connect(h.ctx, stateFrom(t, authURL), "")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestFitbit_ConnectUnknownUser(t *testing.T) {
	h := newHarness(t)
	authURL, err := h.fitbit.AuthURL(primitive.NewObjectID())
	require.NoError(t, err)

	_, err = h.fitbit.Connect(h.ctx, stateFrom(t, authURL), "good-code")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFitbit_NotConfigured(t *testing.T) {
	h := newHarness(t)
	h.fitbitAPI.configured = false
	u := h.user("fit@test.dev")

	assert.False(t, h.fitbit.Configured())
	_, err := h.fitbit.AuthURL(u.ID)
	assert.ErrorIs(t, err, ErrFitbitNotConfigured)
	_, err = h.fitbit.Connect(h.ctx, "x", "good-code")
	assert.ErrorIs(t, err, ErrFitbitNotConfigured)
}

func TestFitbit_AccessTokenRefreshesWhenExpired(t *testing.T) {
	h := newHarness(t)
	u := h.user("fit@test.dev", withFitbit())

	token, err := h.fitbit.AccessToken(h.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "access-0", token)
	assert.Zero(t, h.fitbitAPI.refreshed)

	h.clock.advance(48 * time.Hour)
	token, err = h.fitbit.AccessToken(h.ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "access-refreshed", token)
	assert.Equal(t, 1, h.fitbitAPI.refreshed)

	stored, err := h.repos.Users.GetByID(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "access-refreshed", stored.FitbitAccessToken)
	assert.Equal(t, "refresh-0-next", stored.FitbitRefreshToken)
}

func TestFitbit_AccessTokenRequiresLink(t *testing.T) {
	h := newHarness(t)
	u := h.user("fit@test.dev")
	_, err := h.fitbit.AccessToken(h.ctx, u)
	assert.ErrorIs(t, err, ErrFitbitNotLinked)
}

func TestFitbit_SyncDay(t *testing.T) {
	h := newHarness(t)
	u := h.user("fit@test.dev", withFitbit())
	resting := 58
	h.fitbitAPI.daily["2026-03-10"] = &fitbit.DailySummary{Steps: 9000, ActiveMinutes: 45, RestingHR: &resting}
	h.fitbitAPI.sleep["2026-03-10"] = &fitbit.SleepSummary{MinutesAsleep: 440, Efficiency: 90}

	synced, err := h.fitbit.SyncDay(h.ctx, u, "2026-03-10")
	require.NoError(t, err)
	assert.True(t, synced)

	day, err := h.repos.FitbitDays.Get(h.ctx, u.ID, "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, 9000, *day.Steps)
	assert.Equal(t, 58, *day.RestingHR)
	assert.Equal(t, 440, *day.SleepMinutes)
	assert.Equal(t, domain.RecoveryPush, *day.RecoveryRecommendation)

	synced, err = h.fitbit.SyncDay(h.ctx, u, "2026-03-01")
	require.NoError(t, err)
	assert.False(t, synced)
}

func TestFitbit_SleepRecoveryStoresYesterday(t *testing.T) {
	h := newHarness(t)
	u := h.user("fit@test.dev", withFitbit())
	h.fitbitAPI.sleep["2026-03-10"] = &fitbit.SleepSummary{MinutesAsleep: 300, Efficiency: 90}

	rec, err := h.fitbit.SleepRecovery(h.ctx, u)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.RecoveryRest, *rec)

	dash, err := h.stats.Dashboard(h.ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, dash.Recovery)
	assert.Equal(t, domain.RecoveryRest, *dash.Recovery)
}

func TestFitbit_SleepRecoveryWithoutData(t *testing.T) {
	h := newHarness(t)
	u := h.user("fit@test.dev", withFitbit())
	rec, err := h.fitbit.SleepRecovery(h.ctx, u)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func elevatedSamples(from string, minutes, bpm int) []fitbit.HeartRatePoint {
	start, _ := time.Parse("15:04:05", from)
	points := make([]fitbit.HeartRatePoint, 0, minutes)
	for i := 0; i < minutes; i++ {
		points = append(points, fitbit.HeartRatePoint{Time: start.Add(time.Duration(i) * time.Minute).Format("15:04:05"), Value: bpm})
	}
	return points
}

func TestFitbit_VerifyWorkout(t *testing.T) {
	h := newHarness(t)
	u := h.user("fit@test.dev", withFitbit())
	completed := time.Date(2026, 3, 11, 9, 0, 0, 0, testZone)

	h.fitbitAPI.heart["2026-03-11"] = elevatedSamples("09:00:00", 25, 110)
	ok, err := h.fitbit.VerifyWorkout(h.ctx, u, completed)
	require.NoError(t, err)
	assert.True(t, ok)

	h.fitbitAPI.heart["2026-03-11"] = elevatedSamples("09:00:00", 10, 110)
	ok, err = h.fitbit.VerifyWorkout(h.ctx, u, completed)
	require.NoError(t, err)
	assert.False(t, ok)

	// Resting heart rate from the synced day raises the bar.
	resting := 95
	require.NoError(t, h.repos.FitbitDays.Upsert(h.ctx, &domain.FitbitDaily{UserID: u.ID, Date: "2026-03-11", RestingHR: &resting}))
	h.fitbitAPI.heart["2026-03-11"] = elevatedSamples("09:00:00", 25, 110)
	ok, err = h.fitbit.VerifyWorkout(h.ctx, u, completed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFitbit_AuthURLCarriesState(t *testing.T) {
	h := newHarness(t)
	u := h.user("fit@test.dev")
	authURL, err := h.fitbit.AuthURL(u.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(authURL, "https://fitbit.test/authorize"))
}

func TestFitbit_SyncYesterday(t *testing.T) {
	h := newHarness(t)
	u := h.user("fit@test.dev", withFitbit())
	h.fitbitAPI.daily["2026-03-10"] = &fitbit.DailySummary{Steps: 4000, ActiveMinutes: 10}

	synced, err := h.fitbit.SyncYesterday(h.ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, synced)

	_, err = h.fitbit.SyncYesterday(h.ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
