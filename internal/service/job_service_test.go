package service

import (
	"alcyxob/getsfit/internal/clients/fitbit"
	"alcyxob/getsfit/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, testZone)
}

func TestDaily_MorningOncePerDay(t *testing.T) {
	h := newHarness(t)
	h.user("a@test.dev", withTelegram(7))
	h.user("nochat@test.dev")
	h.calendarAPI.slots = []time.Time{at(11, 12, 0)}
	h.clock.set(at(11, 7, 30))

	report, err := h.jobs.Daily(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Users)
	assert.Equal(t, 1, report.Sent)

	msgs := h.messenger.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(7), msgs[0].ChatID)
	assert.Contains(t, msgs[0].Text, "Good morning! Today: Workout A. This week: 0/5 planned (min 3).")
	assert.Contains(t, msgs[0].Text, "(11am–4pm) has free slots.")
	assert.Contains(t, msgs[0].Text, MorningInspiration(at(11, 7, 30)))

	// A tick 15 minutes later does not resend.
	h.clock.set(at(11, 7, 45))
	report, err = h.jobs.Daily(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Sent)
	assert.Len(t, h.messenger.messages(), 1)
}

func TestDaily_WindowAndLastCallSkipWhenDone(t *testing.T) {
	h := newHarness(t)
	u := h.user("a@test.dev", withTelegram(7))

	h.clock.set(at(11, 11, 15))
	_, err := h.jobs.Daily(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "Your workout window is open (11am–4pm). Time for Workout A?", h.messenger.last())

	h.clock.set(at(11, 15, 0))
	_, err = h.jobs.Daily(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "Last call: get your workout in before 4pm! 0/5 this week (need 3 for goal).", h.messenger.last())

	// Next day the workout is done before the window: no window nudge.
	h.completeAt(u.ID, at(12, 9, 0))
	h.clock.set(at(12, 11, 15))
	before := len(h.messenger.messages())
	report, err := h.jobs.Daily(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Sent)
	assert.Len(t, h.messenger.messages(), before)
}

func TestDaily_PumpUpBeforeBooking(t *testing.T) {
	h := newHarness(t)
	h.user("a@test.dev", withTelegram(7))
	h.calendarAPI.bookings = []time.Time{at(11, 13, 0)}

	h.clock.set(at(11, 12, 20))
	report, err := h.jobs.Daily(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.Contains(t, h.messenger.last(), "Workout A at 13:00.")

	h.clock.set(at(11, 12, 35))
	report, err = h.jobs.Daily(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Sent)
}

func TestDaily_PumpUpAfterMorning(t *testing.T) {
	h := newHarness(t)
	h.user("a@test.dev", withTelegram(7))
	h.calendarAPI.bookings = []time.Time{at(11, 8, 30)}

	var texts []string
	for _, minute := range []int{45, 60, 75} {
		h.clock.set(at(11, 7, 0).Add(time.Duration(minute) * time.Minute))
		_, err := h.jobs.Daily(h.ctx)
		require.NoError(t, err)
	}
	for _, m := range h.messenger.messages() {
		texts = append(texts, m.Text)
	}
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Good morning!")
	assert.Contains(t, texts[1], "Workout A at 08:30.")
}

func TestDaily_WindowAfterPumpUpSameHour(t *testing.T) {
	h := newHarness(t)
	h.user("a@test.dev", withTelegram(7))
	h.calendarAPI.bookings = []time.Time{at(11, 11, 30)}

	h.clock.set(at(11, 11, 0))
	_, err := h.jobs.Daily(h.ctx)
	require.NoError(t, err)
	assert.Contains(t, h.messenger.last(), "Workout A at 11:30.")

	h.clock.set(at(11, 11, 15))
	report, err := h.jobs.Daily(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, "Your workout window is open (11am–4pm). Time for Workout A?", h.messenger.last())
}

func TestDaily_EveningSummary(t *testing.T) {
	h := newHarness(t)
	u := h.user("a@test.dev", withTelegram(7))
	h.completeAt(u.ID, at(11, 12, 0))

	h.clock.set(at(11, 20, 5))
	_, err := h.jobs.Daily(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "Workout done today ✓ This week: 1/5 (min 3).", h.messenger.last())
}

func TestDaily_OneUserFailureDoesNotStopBatch(t *testing.T) {
	h := newHarness(t)
	h.user("a@test.dev", withTelegram(7))
	h.user("b@test.dev", withTelegram(8))
	h.messenger.err = assert.AnError
	h.clock.set(at(11, 7, 30))

	report, err := h.jobs.Daily(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Users)
	assert.Equal(t, 2, report.Failed)
	assert.Len(t, report.Errors, 2)
}

func TestRestDayCheck(t *testing.T) {
	h := newHarness(t)
	rest := h.user("rest@test.dev", withTelegram(1), withFitbit())
	h.user("other@test.dev", withTelegram(2), withFitbit())
	h.user("nofitbit@test.dev", withTelegram(3))

	// Last night's sleep is filed under yesterday's date.
	h.fitbitAPI.sleep["2026-03-10"] = &fitbit.SleepSummary{MinutesAsleep: 300, Efficiency: 90}

	report, err := h.jobs.RestDayCheck(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Users)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, restDayMessage, h.messenger.last())

	day, err := h.repos.FitbitDays.Get(h.ctx, rest.ID, "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, domain.RecoveryRest, *day.RecoveryRecommendation)

	// Already sent today: Fitbit is not asked again.
	calls := h.fitbitAPI.sleepCalls
	report, err = h.jobs.RestDayCheck(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Sent)
	assert.Equal(t, calls, h.fitbitAPI.sleepCalls)

	// Next morning a good night suggests pushing.
	h.clock.advance(24 * time.Hour)
	h.fitbitAPI.sleep["2026-03-11"] = &fitbit.SleepSummary{MinutesAsleep: 480, Efficiency: 92}
	_, err = h.jobs.RestDayCheck(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, pushDayMessage, h.messenger.last())
}

func TestRestDayCheck_NormalSleepSendsNothing(t *testing.T) {
	h := newHarness(t)
	h.user("a@test.dev", withTelegram(1), withFitbit())
	h.fitbitAPI.sleep["2026-03-10"] = &fitbit.SleepSummary{MinutesAsleep: 400, Efficiency: 80}

	report, err := h.jobs.RestDayCheck(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Sent)
	assert.Empty(t, h.messenger.messages())
}

func TestRestDayCheck_SkippedWithoutFitbit(t *testing.T) {
	h := newHarness(t)
	h.fitbitAPI.configured = false
	report, err := h.jobs.RestDayCheck(h.ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, report.Skipped)
}

func TestWeeklyRecap(t *testing.T) {
	h := newHarness(t)
	u := h.user("a@test.dev", withTelegram(7), withWeights(82, 80, 75))

	report, err := h.jobs.WeeklyRecap(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "only runs on Sunday", report.Skipped)

	h.completeAt(u.ID, at(9, 12, 0))
	h.clock.set(at(15, 18, 0))
	report, err = h.jobs.WeeklyRecap(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)

	text := h.messenger.last()
	assert.Contains(t, text, "Week recap:\nWorkouts: 1/5 planned\n")
	assert.Contains(t, text, "fewer than 3 workouts")
	assert.Contains(t, text, "Weight: 80kg → goal 75kg")

	// Sent once per Sunday.
	report, err = h.jobs.WeeklyRecap(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Sent)
}

func TestFitbitSync(t *testing.T) {
	h := newHarness(t)
	u := h.user("a@test.dev", withFitbit())
	h.user("b@test.dev", withFitbit())
	h.fitbitAPI.daily["2026-03-10"] = &fitbit.DailySummary{Steps: 9000, ActiveMinutes: 40}

	report, err := h.jobs.FitbitSync(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Users)
	assert.Equal(t, 2, report.Synced)
	assert.Equal(t, 0, report.Failed)

	day, err := h.repos.FitbitDays.Get(h.ctx, u.ID, "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, 9000, *day.Steps)
	assert.Nil(t, day.SleepMinutes)
}

func TestScheduleWeek(t *testing.T) {
	h := newHarness(t)
	h.user("a@test.dev")
	// Wednesday 10:00: Wednesday noon to Friday noon remain.
	report, err := h.jobs.ScheduleWeek(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Created)
	assert.Equal(t, []time.Time{at(11, 12, 0), at(12, 12, 0), at(13, 12, 0)}, h.calendarAPI.created)
	assert.Equal(t, "a@test.dev", h.calendarAPI.attendees[0].Email)
}

func TestScheduleWeek_PartialFailureIsReported(t *testing.T) {
	h := newHarness(t)
	h.user("a@test.dev")
	h.calendarAPI.failAt[at(12, 12, 0)] = true

	report, err := h.jobs.ScheduleWeek(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Failed)
}

func TestScheduleWeek_NotConfigured(t *testing.T) {
	h := newHarness(t)
	h.calendarAPI.configured = false
	report, err := h.jobs.ScheduleWeek(h.ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, report.Skipped)
}

func TestTick_RunsDailyAndRestDay(t *testing.T) {
	h := newHarness(t)
	h.user("a@test.dev", withTelegram(7), withFitbit())
	h.fitbitAPI.sleep["2026-03-10"] = &fitbit.SleepSummary{MinutesAsleep: 300, Efficiency: 70}
	h.clock.set(at(11, 8, 0))

	report, err := h.jobs.Tick(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Daily.Sent)
	assert.Equal(t, 1, report.RestDay.Sent)
	assert.Len(t, h.messenger.messages(), 2)
}

func TestFormatHour(t *testing.T) {
	assert.Equal(t, "11am", formatHour(11))
	assert.Equal(t, "12pm", formatHour(12))
	assert.Equal(t, "4pm", formatHour(16))
	assert.Equal(t, "12am", formatHour(0))
}
