package service

import (
	"alcyxob/getsfit/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklyQuestIDs_DeterministicAndDistinct(t *testing.T) {
	week := time.Date(2026, 3, 9, 0, 0, 0, 0, testZone)
	first := WeeklyQuestIDs(week)
	require.Len(t, first, questsPerWeek)
	assert.Equal(t, first, WeeklyQuestIDs(week))

	seen := map[QuestID]bool{}
	for _, id := range first {
		assert.False(t, seen[id], "duplicate quest %s", id)
		seen[id] = true
	}

	// Over a year of weeks, more than one selection shows up.
	distinct := map[QuestID]bool{}
	for i := 0; i < 52; i++ {
		for _, id := range WeeklyQuestIDs(week.AddDate(0, 0, 7*i)) {
			distinct[id] = true
		}
	}
	assert.Greater(t, len(distinct), questsPerWeek)
}

func TestQuests_WeeklyAndAward(t *testing.T) {
	h := newHarness(t)
	u := h.user("quest@test.dev", withWeights(82, 82, 75))

	quests, err := h.quests.Weekly(h.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, quests, questsPerWeek)
	for _, q := range quests {
		assert.False(t, q.Completed)
		assert.Equal(t, domain.XPQuest, q.XP)
		assert.NotEmpty(t, q.Title)
	}

	// Everything the server can observe this week.
	for i := 0; i < 3; i++ {
		h.completeAt(u.ID, baseTime.Add(time.Duration(i)*time.Hour))
	}
	_, err = h.body.LogWeight(h.ctx, u.ID, 81.9)
	require.NoError(t, err)
	_, err = h.body.LogWeight(h.ctx, u.ID, 81.8)
	require.NoError(t, err)
	_, err = h.body.LogWaist(h.ctx, u.ID, 95)
	require.NoError(t, err)

	quests, err = h.quests.Weekly(h.ctx, u.ID)
	require.NoError(t, err)
	done := 0
	for _, q := range quests {
		switch q.ID {
		case QuestThreeWorkouts, QuestLogWeightTwice, QuestLogWaist:
			assert.True(t, q.Completed, "%s", q.ID)
		case QuestNoSkips:
			assert.False(t, q.Completed)
		}
		if q.Completed {
			done++
		}
	}

	// Earlier logs already credited the completed quests; nothing is paid twice.
	xp, err := h.quests.AwardXP(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, xp)

	stat, err := h.repos.WeeklyStats.Get(h.ctx, u.ID, h.schedule.WeekStart(baseTime))
	require.NoError(t, err)
	assert.Equal(t, done, stat.QuestsCompleted)
}
