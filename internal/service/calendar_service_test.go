package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cancelledPayload(slug, email string) []byte {
	return []byte(`{"triggerEvent":"BOOKING_CANCELLED","payload":{"type":"` + slug + `","attendees":[{"email":"` + email + `"}]}}`)
}

func TestHandleWebhook_CancelledWorkoutNudgesAttendee(t *testing.T) {
	h := newHarness(t)
	h.user("a@test.dev", withTelegram(3))

	require.NoError(t, h.calendar.HandleWebhook(h.ctx, cancelledPayload("workout", "A@test.dev"), "sig"))
	assert.Equal(t, rebookMessage, h.messenger.last())
}

func TestHandleWebhook_Ignored(t *testing.T) {
	h := newHarness(t)
	h.user("a@test.dev", withTelegram(3))
	h.user("nochat@test.dev")

	bodies := [][]byte{
		cancelledPayload("coffee", "a@test.dev"),
		cancelledPayload("workout", "stranger@test.dev"),
		cancelledPayload("workout", "nochat@test.dev"),
		[]byte(`{"triggerEvent":"BOOKING_CREATED","payload":{"type":"workout","attendees":[{"email":"a@test.dev"}]}}`),
		[]byte(`{"triggerEvent":"BOOKING_CANCELLED","payload":{"type":"workout","attendees":[]}}`),
	}
	for _, b := range bodies {
		require.NoError(t, h.calendar.HandleWebhook(h.ctx, b, "sig"))
	}
	assert.Empty(t, h.messenger.messages())
}

func TestHandleWebhook_RejectsBadSignature(t *testing.T) {
	h := newHarness(t)
	err := h.calendar.HandleWebhook(h.ctx, cancelledPayload("workout", "a@test.dev"), "forged")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	err = h.calendar.HandleWebhook(h.ctx, []byte("{not json"), "sig")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestScheduleWeekForUser_AllSlotsPast(t *testing.T) {
	h := newHarness(t)
	u := h.user("a@test.dev")
	h.clock.set(time.Date(2026, 3, 14, 9, 0, 0, 0, testZone)) // Saturday

	res, err := h.calendar.ScheduleWeek(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.NotEmpty(t, res.Message)
	assert.Empty(t, h.calendarAPI.created)
}

func TestAttendeeName(t *testing.T) {
	h := newHarness(t)
	u := h.user("jo.lift@test.dev")
	u.Name = ""
	assert.Equal(t, "jo.lift", attendeeName(u))
}
