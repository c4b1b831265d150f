package service

import (
	"alcyxob/getsfit/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 43, ProgressPercent(82, 79, 75))
	assert.Equal(t, 0, ProgressPercent(82, 84, 75))
	assert.Equal(t, 100, ProgressPercent(82, 74, 75))
	assert.Equal(t, 0, ProgressPercent(80, 78, 80))
}

func TestStreak_CountsConsecutiveSuccessfulWeeks(t *testing.T) {
	h := newHarness(t)
	u := h.user("a@test.dev")
	thisMonday := h.schedule.WeekStart(baseTime)

	// Two full weeks before this one, then a broken week further back.
	for _, weeksAgo := range []int{0, 1} {
		monday := thisMonday.AddDate(0, 0, -7*weeksAgo)
		for d := 0; d < 3; d++ {
			at := monday.AddDate(0, 0, d).Add(12 * time.Hour)
			if at.After(baseTime) {
				at = baseTime.Add(-time.Duration(3-d) * time.Minute)
			}
			h.completeAt(u.ID, at)
		}
	}
	h.completeAt(u.ID, thisMonday.AddDate(0, 0, -14).Add(12*time.Hour))

	streak, err := h.stats.Streak(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)
}

func TestStreak_BrokenByCurrentWeek(t *testing.T) {
	h := newHarness(t)
	u := h.user("a@test.dev")
	lastMonday := h.schedule.WeekStart(baseTime).AddDate(0, 0, -7)
	for d := 0; d < 3; d++ {
		h.completeAt(u.ID, lastMonday.AddDate(0, 0, d).Add(12*time.Hour))
	}

	streak, err := h.stats.Streak(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	u := h.user("a@test.dev", withWeights(82, 79, 75))
	h.completeAt(u.ID, baseTime.Add(-time.Hour))

	rec := domain.RecoveryPush
	require.NoError(t, h.repos.FitbitDays.Upsert(h.ctx, &domain.FitbitDaily{UserID: u.ID, Date: "2026-03-10", RecoveryRecommendation: &rec}))

	d, err := h.stats.Dashboard(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.WorkoutsThisWeek)
	assert.Equal(t, 5, d.PlannedWorkoutsPerWeek)
	assert.Equal(t, 3, d.MinWorkoutsForGoal)
	assert.True(t, d.PunishmentActive)
	assert.Equal(t, domain.WorkoutB, d.NextWorkoutType)
	assert.Equal(t, 43, d.ProgressPercent)
	assert.Equal(t, domain.Level(d.XP), d.Level)
	assert.GreaterOrEqual(t, d.XP, domain.XPWorkout)
	require.NotNil(t, d.Recovery)
	assert.Equal(t, domain.RecoveryPush, *d.Recovery)
}

func TestLevel(t *testing.T) {
	assert.Equal(t, 1, domain.Level(0))
	assert.Equal(t, 1, domain.Level(499))
	assert.Equal(t, 2, domain.Level(500))
	assert.Equal(t, 3, domain.Level(1200))
}
