package service

import (
	"alcyxob/getsfit/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func achievementTypes(defs []domain.AchievementDef) []domain.AchievementType {
	out := make([]domain.AchievementType, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Type)
	}
	return out
}

func TestBody_LogWeightUpdatesUserAndAwards(t *testing.T) {
	h := newHarness(t)
	u := h.user("body@test.dev", withWeights(82, 82, 75))

	res, err := h.body.LogWeight(h.ctx, u.ID, 80.5)
	require.NoError(t, err)
	assert.Contains(t, achievementTypes(res.NewAchievements), domain.AchievementFirstKiloDown)
	assert.GreaterOrEqual(t, res.XPEarned, domain.XPWeightLog+100)

	stored, err := h.repos.Users.GetByID(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 80.5, *stored.CurrentWeight)

	// Already unlocked achievements are not awarded twice.
	res, err = h.body.LogWeight(h.ctx, u.ID, 80.4)
	require.NoError(t, err)
	assert.NotContains(t, achievementTypes(res.NewAchievements), domain.AchievementFirstKiloDown)

	res, err = h.body.LogWeight(h.ctx, u.ID, 74.8)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.AchievementType{domain.AchievementDown5, domain.AchievementGoalCrusher}, achievementTypes(res.NewAchievements))

	history, err := h.body.WeightHistory(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestBody_LogWeightValidation(t *testing.T) {
	h := newHarness(t)
	u := h.user("body@test.dev")
	for _, kg := range []float64{0, 29.9, 200.1} {
		_, err := h.body.LogWeight(h.ctx, u.ID, kg)
		assert.ErrorIs(t, err, ErrValidationFailed, "%v kg", kg)
	}
	history, err := h.body.WeightHistory(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestBody_ScaleWarriorAfterEightLogs(t *testing.T) {
	h := newHarness(t)
	u := h.user("body@test.dev", withWeights(82, 82, 75))
	var unlocked []domain.AchievementType
	for i := 0; i < scaleWarriorLogs; i++ {
		res, err := h.body.LogWeight(h.ctx, u.ID, 81.8)
		require.NoError(t, err)
		unlocked = append(unlocked, achievementTypes(res.NewAchievements)...)
	}
	assert.Contains(t, unlocked, domain.AchievementScaleWarrior)
}

func TestBody_LogWaist(t *testing.T) {
	h := newHarness(t)
	u := h.user("body@test.dev")

	res, err := h.body.LogWaist(h.ctx, u.ID, 95)
	require.NoError(t, err)
	assert.Empty(t, res.NewAchievements)

	res, err = h.body.LogWaist(h.ctx, u.ID, 88)
	require.NoError(t, err)
	assert.Contains(t, achievementTypes(res.NewAchievements), domain.AchievementHealthyZone)

	_, err = h.body.LogWaist(h.ctx, u.ID, 20)
	assert.ErrorIs(t, err, ErrValidationFailed)

	// Both logs share the harness timestamp; the later one is still newest.
	history, err := h.body.WaistHistory(h.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 88.0, history[0].WaistCm)
}

func TestBody_UpdateGoals(t *testing.T) {
	h := newHarness(t)
	u := h.user("body@test.dev", withWeights(82, 80, 75))

	target := 72.0
	require.NoError(t, h.body.UpdateGoals(h.ctx, u.ID, nil, &target))
	stored, err := h.repos.Users.GetByID(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 72.0, *stored.TargetWeight)
	assert.Equal(t, 82.0, *stored.StartingWeight)

	assert.ErrorIs(t, h.body.UpdateGoals(h.ctx, u.ID, nil, nil), ErrValidationFailed)
	bad := 250.0
	assert.ErrorIs(t, h.body.UpdateGoals(h.ctx, u.ID, &bad, nil), ErrValidationFailed)
}
