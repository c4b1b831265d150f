package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDailyMessagesAreStablePerDay(t *testing.T) {
	morning := baseTime
	evening := baseTime.Add(10 * time.Hour)

	assert.Equal(t, MorningInspiration(morning), MorningInspiration(evening))
	assert.Equal(t, PumpUpMessage(morning), PumpUpMessage(evening))
	assert.Contains(t, morningMessages, MorningInspiration(morning))
	assert.Contains(t, pumpUpMessages, PumpUpMessage(morning))

	seen := map[string]bool{}
	for i := 0; i < 30; i++ {
		seen[MorningInspiration(baseTime.AddDate(0, 0, i))] = true
	}
	assert.Greater(t, len(seen), 1)
}
