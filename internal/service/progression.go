package service

import (
	"alcyxob/getsfit/internal/domain"
	"math"
)

// sessionsBeforeIncrease is how many just_right sessions at one weight earn an increase.
const sessionsBeforeIncrease = 3

// RoundToIncrement snaps w to the nearest multiple of inc. A non-positive
// increment marks a bodyweight exercise, which always has weight 0.
func RoundToIncrement(w, inc float64) float64 {
	if inc <= 0 || w <= 0 {
		return 0
	}
	return math.Round(w/inc) * inc
}

// InitialWeight is the first-time recommendation: bodyweight times the
// exercise's percentage, rounded to the increment and never below one increment.
func InitialWeight(bodyweight, basePercent, inc float64) float64 {
	if inc <= 0 {
		return 0
	}
	return math.Max(inc, RoundToIncrement(bodyweight*basePercent, inc))
}

// Progression is the weight and session counter stored on a preference.
type Progression struct {
	Weight   float64
	Sessions int
}

// NextWeight applies one session's feedback. prev is nil when the exercise
// has never been logged by the user.
//
//   - too_heavy: one increment down, floored at one increment, counter reset
//   - too_light: one increment up, counter reset
//   - just_right at the stored weight: counter+1; at 3 the weight goes up and the counter resets
//   - just_right at another weight: that weight becomes current with counter 1
func NextWeight(prev *domain.ExercisePreference, used float64, feedback domain.Difficulty, inc float64) Progression {
	if inc <= 0 {
		return Progression{Weight: 0, Sessions: nextSessions(prev, 0, feedback)}
	}
	used = math.Max(inc, RoundToIncrement(used, inc))

	switch feedback {
	case domain.TooHeavy:
		return Progression{Weight: math.Max(inc, used-inc), Sessions: 0}
	case domain.TooLight:
		return Progression{Weight: used + inc, Sessions: 0}
	}

	sessions := nextSessions(prev, used, feedback)
	if sessions >= sessionsBeforeIncrease {
		return Progression{Weight: used + inc, Sessions: 0}
	}
	return Progression{Weight: used, Sessions: sessions}
}

func nextSessions(prev *domain.ExercisePreference, used float64, feedback domain.Difficulty) int {
	if feedback != domain.JustRight {
		return 0
	}
	if prev == nil || prev.CurrentWeight == nil || *prev.CurrentWeight != used {
		return 1
	}
	n := prev.SessionsAtCurrentWeight + 1
	if used == 0 && n >= sessionsBeforeIncrease {
		// Bodyweight moves have nothing to add; start counting again.
		return 0
	}
	return n
}
