package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsRange_Days(t *testing.T) {
	assert.Equal(t, 7, Range1W.Days())
	assert.Equal(t, 30, Range1M.Days())
	assert.Equal(t, 90, Range3M.Days())
	assert.Equal(t, 180, Range6M.Days())
	assert.Equal(t, 365, Range1Y.Days())
	assert.Equal(t, 90, AnalyticsRange("bogus").Days())
}

func TestAnalytics_WeightTrendAndHeatmap(t *testing.T) {
	h := newHarness(t)
	u := h.user("stats@test.dev", withWeights(82, 82, 75))

	for i, kg := range []float64{80, 81, 82} {
		h.clock.set(baseTime.AddDate(0, 0, -3+i))
		_, err := h.body.LogWeight(h.ctx, u.ID, kg)
		require.NoError(t, err)
	}
	h.clock.set(baseTime)
	h.completeAt(u.ID, baseTime.Add(-time.Hour))
	h.completeAt(u.ID, baseTime.AddDate(0, 0, -1))

	a, err := h.analytics.Analytics(h.ctx, u.ID, Range1M)
	require.NoError(t, err)

	require.Len(t, a.WeightTrend, 3)
	assert.Equal(t, 80.0, a.WeightTrend[0].MovingAverage)
	assert.Equal(t, 80.5, a.WeightTrend[1].MovingAverage)
	assert.Equal(t, 81.0, a.WeightTrend[2].MovingAverage)

	require.Len(t, a.Heatmap, heatmapDays)
	last := a.Heatmap[len(a.Heatmap)-1]
	assert.Equal(t, "2026-03-11", last.Date)
	assert.Equal(t, 1, last.Count)
	assert.Equal(t, 1, a.Heatmap[len(a.Heatmap)-2].Count)

	assert.Equal(t, 2, a.Stats.TotalWorkouts)
	total := 0
	for _, s := range a.WorkoutTypes {
		total += s.Count
	}
	assert.Equal(t, 2, total)
	assert.False(t, a.FitbitLinked)
}

func TestProjectedWeeksLeft(t *testing.T) {
	now := baseTime
	started := now.AddDate(0, 0, -28)

	got := projectedWeeksLeft(2, 3, &started, now)
	require.NotNil(t, got)
	assert.Equal(t, 6, *got)

	assert.Nil(t, projectedWeeksLeft(0, 3, &started, now))
	assert.Nil(t, projectedWeeksLeft(2, 0, &started, now))
	assert.Nil(t, projectedWeeksLeft(2, 3, nil, now))

	// Less than a week counts as one.
	recent := now.AddDate(0, 0, -2)
	got = projectedWeeksLeft(1, 2, &recent, now)
	require.NotNil(t, got)
	assert.Equal(t, 2, *got)
}
