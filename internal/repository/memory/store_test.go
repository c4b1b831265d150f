package memory

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMarkSentIsIdempotent(t *testing.T) {
	store := NewStore()
	repos := store.Repositories()
	ctx := context.Background()
	user := &domain.User{Email: "a@b.c"}
	_, err := repos.Users.Create(ctx, user)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, repos.Notifications.MarkSent(ctx, user.ID, "2024-03-11", domain.NotifyMorning, now))
	require.NoError(t, repos.Notifications.MarkSent(ctx, user.ID, "2024-03-11", domain.NotifyMorning, now))
	assert.Equal(t, 1, store.NotificationCount())

	ok, err := repos.Notifications.Exists(ctx, user.ID, "2024-03-11", domain.NotifyMorning)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repos.Notifications.Exists(ctx, user.ID, "2024-03-11", domain.NotifyWindow)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWeeklyStatUpsertDefaults(t *testing.T) {
	repos := NewStore().Repositories()
	ctx := context.Background()
	user := &domain.User{Email: "a@b.c"}
	_, err := repos.Users.Create(ctx, user)
	require.NoError(t, err)
	week := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repos.WeeklyStats.AddXP(ctx, user.ID, week, 10))
	st, err := repos.WeeklyStats.Get(ctx, user.ID, week)
	require.NoError(t, err)
	assert.Equal(t, 0, st.WorkoutsCompleted)
	assert.True(t, st.PunishmentActive)
	assert.Equal(t, 10, st.XPEarned)

	require.NoError(t, repos.WeeklyStats.RecordWorkouts(ctx, user.ID, week, 3, false, 50))
	require.NoError(t, repos.WeeklyStats.AddXP(ctx, user.ID, week.AddDate(0, 0, -7), 5))
	total, err := repos.WeeklyStats.TotalXP(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 65, total)
}

func TestAchievementCreateRejectsDuplicate(t *testing.T) {
	repos := NewStore().Repositories()
	ctx := context.Background()
	a := &domain.Achievement{Type: domain.AchievementFirstBlood}
	require.NoError(t, repos.Achievements.Create(ctx, a))
	err := repos.Achievements.Create(ctx, &domain.Achievement{Type: domain.AchievementFirstBlood})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestLinkTelegramByCodeClearsCode(t *testing.T) {
	repos := NewStore().Repositories()
	ctx := context.Background()
	user := &domain.User{Email: "a@b.c"}
	_, err := repos.Users.Create(ctx, user)
	require.NoError(t, err)
	require.NoError(t, repos.Users.SetTelegramLinkCode(ctx, user.ID, "ABC234"))

	linked, err := repos.Users.LinkTelegramByCode(ctx, "ABC234", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), *linked.TelegramChatID)
	assert.Empty(t, linked.TelegramLinkCode)

	_, err = repos.Users.LinkTelegramByCode(ctx, "ABC234", 43)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	byChat, err := repos.Users.GetByTelegramChatID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byChat.ID)
}

func TestFitbitUpsertKeepsExistingFields(t *testing.T) {
	repos := NewStore().Repositories()
	ctx := context.Background()
	user := &domain.User{Email: "a@b.c"}
	_, err := repos.Users.Create(ctx, user)
	require.NoError(t, err)

	steps, sleep := 9000, 400
	require.NoError(t, repos.FitbitDays.Upsert(ctx, &domain.FitbitDaily{UserID: user.ID, Date: "2024-03-10", Steps: &steps}))
	require.NoError(t, repos.FitbitDays.Upsert(ctx, &domain.FitbitDaily{UserID: user.ID, Date: "2024-03-10", SleepMinutes: &sleep}))

	day, err := repos.FitbitDays.Get(ctx, user.ID, "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, 9000, *day.Steps)
	assert.Equal(t, 400, *day.SleepMinutes)
}

func TestBodyLogsNewestWinsTies(t *testing.T) {
	repos := NewStore().Repositories()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	at := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repos.BodyLogs.CreateWaist(ctx, &domain.WaistLog{UserID: userID, WaistCm: 95, LoggedAt: at}))
	require.NoError(t, repos.BodyLogs.CreateWaist(ctx, &domain.WaistLog{UserID: userID, WaistCm: 88, LoggedAt: at}))
	latest, err := repos.BodyLogs.ListWaists(ctx, userID, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 88.0, latest[0].WaistCm)

	require.NoError(t, repos.BodyLogs.CreateWeight(ctx, &domain.WeightLog{UserID: userID, WeightKg: 81, LoggedAt: at}))
	require.NoError(t, repos.BodyLogs.CreateWeight(ctx, &domain.WeightLog{UserID: userID, WeightKg: 80, LoggedAt: at}))
	weights, err := repos.BodyLogs.ListWeights(ctx, userID, at.AddDate(0, 0, -1), 0)
	require.NoError(t, err)
	require.Len(t, weights, 2)
	assert.Equal(t, 81.0, weights[0].WeightKg)
	assert.Equal(t, 80.0, weights[1].WeightKg)
}

func TestListWeightsLimitKeepsLatest(t *testing.T) {
	repos := NewStore().Repositories()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		log := &domain.WeightLog{UserID: userID, WeightKg: 80 - float64(i), LoggedAt: start.AddDate(0, 0, i)}
		require.NoError(t, repos.BodyLogs.CreateWeight(ctx, log))
	}

	weights, err := repos.BodyLogs.ListWeights(ctx, userID, start, 3)
	require.NoError(t, err)
	require.Len(t, weights, 3)
	// The three latest, oldest first.
	assert.Equal(t, []float64{78, 77, 76}, []float64{weights[0].WeightKg, weights[1].WeightKg, weights[2].WeightKg})
}
