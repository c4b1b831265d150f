package service

import (
	"alcyxob/getsfit/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pref(weight float64, sessions int) *domain.ExercisePreference {
	return &domain.ExercisePreference{CurrentWeight: &weight, SessionsAtCurrentWeight: sessions}
}

func TestRoundToIncrement(t *testing.T) {
	assert.Equal(t, 25.0, RoundToIncrement(24.6, 2.5))
	assert.Equal(t, 22.5, RoundToIncrement(23.7, 2.5))
	assert.Equal(t, 8.0, RoundToIncrement(8.2, 1))
	assert.Equal(t, 0.0, RoundToIncrement(10, 0))
	assert.Equal(t, 0.0, RoundToIncrement(-5, 1))
}

func TestInitialWeight(t *testing.T) {
	// 82 * 0.30 = 24.6 -> 25
	assert.Equal(t, 25.0, InitialWeight(82, 0.30, 2.5))
	// 82 * 0.04 = 3.28 -> 3
	assert.Equal(t, 3.0, InitialWeight(82, 0.04, 1))
	// rounds to 0 but floors at one increment
	assert.Equal(t, 2.5, InitialWeight(40, 0.01, 2.5))
	assert.Equal(t, 0.0, InitialWeight(82, 0, 0))
}

func TestNextWeight_TooHeavyDecreasesByOneIncrement(t *testing.T) {
	cases := []struct {
		name string
		prev *domain.ExercisePreference
		used float64
		inc  float64
		want float64
	}{
		{"existing", pref(25, 2), 25, 2.5, 22.5},
		{"first log", nil, 10, 1, 9},
		{"floored", pref(2.5, 0), 2.5, 2.5, 2.5},
		{"off-grid weight is snapped", pref(20, 1), 20.4, 2.5, 17.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextWeight(tc.prev, tc.used, domain.TooHeavy, tc.inc)
			assert.Equal(t, tc.want, got.Weight)
			assert.Zero(t, got.Sessions)
		})
	}
}

func TestNextWeight_TooLightIncreases(t *testing.T) {
	got := NextWeight(pref(25, 2), 25, domain.TooLight, 2.5)
	assert.Equal(t, Progression{Weight: 27.5, Sessions: 0}, got)
}

func TestNextWeight_ThreeJustRightSessionsIncrease(t *testing.T) {
	var p *domain.ExercisePreference
	weight := 20.0
	for i := 1; i <= 3; i++ {
		got := NextWeight(p, weight, domain.JustRight, 2.5)
		p = pref(got.Weight, got.Sessions)
		if i < 3 {
			assert.Equal(t, Progression{Weight: 20, Sessions: i}, got, "session %d", i)
		} else {
			assert.Equal(t, Progression{Weight: 22.5, Sessions: 0}, got)
		}
	}
}

func TestNextWeight_JustRightAtNewWeightRestartsCounter(t *testing.T) {
	got := NextWeight(pref(20, 2), 25, domain.JustRight, 2.5)
	assert.Equal(t, Progression{Weight: 25, Sessions: 1}, got)
}

func TestNextWeight_BodyweightStaysZero(t *testing.T) {
	got := NextWeight(nil, 0, domain.JustRight, 0)
	assert.Equal(t, Progression{Weight: 0, Sessions: 1}, got)
	got = NextWeight(pref(0, 2), 0, domain.JustRight, 0)
	assert.Equal(t, Progression{Weight: 0, Sessions: 0}, got)
	got = NextWeight(pref(0, 1), 0, domain.TooLight, 0)
	assert.Equal(t, Progression{Weight: 0, Sessions: 0}, got)
}
