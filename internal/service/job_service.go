package service

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/metrics"
	"alcyxob/getsfit/internal/repository"
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Local hours of the fixed nudges; the window nudges follow the schedule.
const (
	morningFromHour = 7
	morningToHour   = 9
	summaryHour     = 20
	pumpUpLead      = time.Hour
)

// JobReport summarises one batch run. Failed counts users whose step errored;
// their errors are listed and the batch moved on.
type JobReport struct {
	Job     string   `json:"job"`
	Users   int      `json:"users"`
	Sent    int      `json:"sent"`
	Synced  int      `json:"synced,omitempty"`
	Created int      `json:"created,omitempty"`
	Failed  int      `json:"failed"`
	Skipped string   `json:"skipped,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

type TickReport struct {
	Daily   *JobReport `json:"daily"`
	RestDay *JobReport `json:"restDay"`
}

// JobService runs the scheduled batches. Each iterates users one at a time
// and never lets one user's failure stop the rest.
type JobService interface {
	// Tick runs Daily and RestDayCheck. It is meant to be hit every 15 minutes.
	Tick(ctx context.Context) (*TickReport, error)
	// Daily sends the time-of-day nudges that are due.
	Daily(ctx context.Context) (*JobReport, error)
	RestDayCheck(ctx context.Context) (*JobReport, error)
	// WeeklyRecap sends the week summary; it only does work on Sundays.
	WeeklyRecap(ctx context.Context) (*JobReport, error)
	// FitbitSync stores yesterday's activity and sleep for every linked user.
	FitbitSync(ctx context.Context) (*JobReport, error)
	ScheduleWeek(ctx context.Context) (*JobReport, error)
}

type jobService struct {
	repos         repository.Repositories
	stats         StatsService
	fitbit        FitbitService
	calendar      CalendarService
	calendarAPI   CalendarAPI
	notifications NotificationService
	schedule      Schedule
	metrics       *metrics.Manager
	now           Clock
}

func NewJobService(
	repos repository.Repositories,
	stats StatsService,
	fitbit FitbitService,
	calendar CalendarService,
	calendarAPI CalendarAPI,
	notifications NotificationService,
	schedule Schedule,
	m *metrics.Manager,
	now Clock,
) JobService {
	return &jobService{
		repos:         repos,
		stats:         stats,
		fitbit:        fitbit,
		calendar:      calendar,
		calendarAPI:   calendarAPI,
		notifications: notifications,
		schedule:      schedule,
		metrics:       m,
		now:           now,
	}
}

// forEachUser runs fn for every user accepted by keep. Errors are logged,
// counted and recorded in the report.
func (s *jobService) forEachUser(ctx context.Context, job string, keep func(*domain.User) bool, fn func(context.Context, *domain.User, *JobReport) error) (*JobReport, error) {
	started := time.Now()
	if s.metrics != nil {
		defer func() {
			s.metrics.HistJobDuration.WithLabelValues(job).Observe(time.Since(started).Seconds())
		}()
	}

	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: listing users: %w", job, err)
	}

	report := &JobReport{Job: job}
	for i := range users {
		user := &users[i]
		if !keep(user) {
			continue
		}
		report.Users++
		if err := fn(ctx, user, report); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", user.ID.Hex(), err))
			if s.metrics != nil {
				s.metrics.CounterJobUserFailures.WithLabelValues(job).Inc()
			}
			log.WithError(err).WithFields(log.Fields{"job": job, "userId": user.ID.Hex()}).Error("job step failed for user")
		}
	}

	log.WithFields(log.Fields{
		"job":    job,
		"users":  report.Users,
		"sent":   report.Sent,
		"failed": report.Failed,
	}).Info("job finished")
	return report, nil
}

func telegramUser(u *domain.User) bool {
	return u.TelegramLinked()
}

func (s *jobService) Tick(ctx context.Context) (*TickReport, error) {
	daily, err := s.Daily(ctx)
	if err != nil {
		return nil, err
	}
	rest, err := s.RestDayCheck(ctx)
	if err != nil {
		return nil, err
	}
	return &TickReport{Daily: daily, RestDay: rest}, nil
}

// calendarDay caches what the shared calendar says about today for one run.
type calendarDay struct {
	loaded   bool
	freeSlot bool
	bookings []time.Time
}

func (s *jobService) loadCalendarDay(ctx context.Context, now time.Time) *calendarDay {
	day := &calendarDay{loaded: true}
	if s.calendarAPI == nil || !s.calendarAPI.Configured() {
		return day
	}
	local := s.schedule.Local(now)
	from := time.Date(local.Year(), local.Month(), local.Day(), s.schedule.WindowStartHour, 0, 0, 0, s.schedule.Location)
	to := time.Date(local.Year(), local.Month(), local.Day(), s.schedule.WindowEndHour, 0, 0, 0, s.schedule.Location)

	slots, err := s.calendarAPI.AvailableSlots(ctx, from, to, s.schedule.Location)
	if err != nil {
		log.WithError(err).Warn("could not load free calendar slots")
	}
	day.freeSlot = len(slots) > 0

	bookings, err := s.calendarAPI.WorkoutBookingsOn(ctx, local, s.schedule.Location)
	if err != nil {
		log.WithError(err).Warn("could not load today's workout bookings")
	}
	day.bookings = bookings
	return day
}

// upcomingBooking returns the first booking starting within the pump-up lead.
func (d *calendarDay) upcomingBooking(now time.Time) (time.Time, bool) {
	for _, b := range d.bookings {
		if b.After(now) && !b.After(now.Add(pumpUpLead)) {
			return b, true
		}
	}
	return time.Time{}, false
}

func (s *jobService) Daily(ctx context.Context) (*JobReport, error) {
	now := s.now()
	cal := &calendarDay{}
	return s.forEachUser(ctx, "daily", telegramUser, func(ctx context.Context, user *domain.User, report *JobReport) error {
		if !cal.loaded {
			*cal = *s.loadCalendarDay(ctx, now)
		}
		kind, text, err := s.dueNudge(ctx, user, now, cal)
		if err != nil || kind == "" {
			return err
		}
		sent, err := s.notifications.SendOnce(ctx, user, kind, text)
		if sent {
			report.Sent++
		}
		return err
	})
}

// dueNudge picks the highest-priority nudge that is due for user right now and
// has not gone out today, if any.
func (s *jobService) dueNudge(ctx context.Context, user *domain.User, now time.Time, cal *calendarDay) (domain.NotificationKind, string, error) {
	local := s.schedule.Local(now)
	hour := local.Hour()

	count, err := s.stats.WorkoutsInWeek(ctx, user.ID, now)
	if err != nil {
		return "", "", err
	}
	next, err := s.stats.NextWorkoutType(ctx, user.ID)
	if err != nil {
		return "", "", err
	}
	dayStart, dayEnd := s.schedule.DayBounds(now)
	today, err := s.repos.Workouts.CountBetween(ctx, user.ID, dayStart, dayEnd)
	if err != nil {
		return "", "", err
	}
	doneToday := today > 0
	window := fmt.Sprintf("%s–%s", formatHour(s.schedule.WindowStartHour), formatHour(s.schedule.WindowEndHour))

	type nudge struct {
		kind domain.NotificationKind
		due  bool
		text func() string
	}
	// Priority order. A kind already sent today yields to the next due one.
	candidates := []nudge{
		{domain.NotifyMorning, hour >= morningFromHour && hour < morningToHour, func() string {
			slots := "— check your calendar."
			if cal.freeSlot {
				slots = "has free slots."
			}
			return fmt.Sprintf(
				"Good morning! Today: Workout %s. This week: %d/%d planned (min %d). Your workout window (%s) %s\n\n%s",
				next, count, s.schedule.PlannedWorkoutsPerWeek, s.schedule.MinWorkoutsPerWeek, window, slots, MorningInspiration(local),
			)
		}},
		{domain.NotifyPumpUp, !doneToday && cal.hasUpcoming(now), func() string {
			start, _ := cal.upcomingBooking(now)
			return fmt.Sprintf("Workout %s at %s. %s", next, s.schedule.Local(start).Format("15:04"), PumpUpMessage(local))
		}},
		{domain.NotifyWindow, hour == s.schedule.WindowStartHour && !doneToday, func() string {
			return fmt.Sprintf("Your workout window is open (%s). Time for Workout %s?", window, next)
		}},
		{domain.NotifyLastCall, hour == s.schedule.WindowEndHour-1 && !doneToday, func() string {
			return fmt.Sprintf(
				"Last call: get your workout in before %s! %d/%d this week (need %d for goal).",
				formatHour(s.schedule.WindowEndHour), count, s.schedule.PlannedWorkoutsPerWeek, s.schedule.MinWorkoutsPerWeek,
			)
		}},
		{domain.NotifySummary, hour == summaryHour, func() string {
			head := "No workout today."
			if doneToday {
				head = "Workout done today ✓"
			}
			return fmt.Sprintf("%s This week: %d/%d (min %d).", head, count, s.schedule.PlannedWorkoutsPerWeek, s.schedule.MinWorkoutsPerWeek)
		}},
	}
	for _, c := range candidates {
		if !c.due {
			continue
		}
		sent, err := s.notifications.WasSentToday(ctx, user.ID, c.kind)
		if err != nil {
			return "", "", err
		}
		if !sent {
			return c.kind, c.text(), nil
		}
	}
	return "", "", nil
}

func (d *calendarDay) hasUpcoming(now time.Time) bool {
	_, ok := d.upcomingBooking(now)
	return ok
}

// formatHour renders a 24h hour as 11am or 4pm.
func formatHour(h int) string {
	switch {
	case h == 0 || h == 24:
		return "12am"
	case h == 12:
		return "12pm"
	case h > 12:
		return fmt.Sprintf("%dpm", h-12)
	default:
		return fmt.Sprintf("%dam", h)
	}
}

const (
	restDayMessage = "Rest day suggested: your sleep was short or low quality. Consider light stretching or a walk instead of a full workout."
	pushDayMessage = "You slept well. Good day to push a bit harder in your workout!"
)

func (s *jobService) RestDayCheck(ctx context.Context) (*JobReport, error) {
	if s.fitbit == nil || !s.fitbit.Configured() {
		return &JobReport{Job: "rest-day", Skipped: "fitbit is not configured"}, nil
	}
	keep := func(u *domain.User) bool { return u.TelegramLinked() && u.FitbitLinked() }
	return s.forEachUser(ctx, "rest-day", keep, func(ctx context.Context, user *domain.User, report *JobReport) error {
		// Checked up front so repeated ticks do not hit Fitbit again.
		sent, err := s.notifications.WasSentToday(ctx, user.ID, domain.NotifyRestDay)
		if err != nil || sent {
			return err
		}
		rec, err := s.fitbit.SleepRecovery(ctx, user)
		if err != nil || rec == nil {
			return err
		}
		var text string
		switch *rec {
		case domain.RecoveryRest:
			text = restDayMessage
		case domain.RecoveryPush:
			text = pushDayMessage
		default:
			return nil
		}
		ok, err := s.notifications.SendOnce(ctx, user, domain.NotifyRestDay, text)
		if ok {
			report.Sent++
		}
		return err
	})
}

func (s *jobService) WeeklyRecap(ctx context.Context) (*JobReport, error) {
	now := s.now()
	if s.schedule.Local(now).Weekday() != time.Sunday {
		return &JobReport{Job: "weekly", Skipped: "only runs on Sunday"}, nil
	}
	return s.forEachUser(ctx, "weekly", telegramUser, func(ctx context.Context, user *domain.User, report *JobReport) error {
		dash, err := s.stats.Dashboard(ctx, user.ID)
		if err != nil {
			return err
		}
		sent, err := s.notifications.SendOnce(ctx, user, domain.NotifyWeekly, s.recapText(dash))
		if sent {
			report.Sent++
		}
		return err
	})
}

func (s *jobService) recapText(d *Dashboard) string {
	punishment := "✓ No punishment."
	if !s.schedule.Successful(d.WorkoutsThisWeek) {
		punishment = fmt.Sprintf("⚠️ Punishment active this weekend (fewer than %d workouts).", s.schedule.MinWorkoutsPerWeek)
	}
	return strings.Join([]string{
		"Week recap:",
		fmt.Sprintf("Workouts: %d/%d planned", d.WorkoutsThisWeek, s.schedule.PlannedWorkoutsPerWeek),
		punishment,
		fmt.Sprintf("Weight: %gkg → goal %gkg", d.CurrentWeight, d.TargetWeight),
		fmt.Sprintf("Level %d · %d XP", d.Level, d.XP),
	}, "\n")
}

func (s *jobService) FitbitSync(ctx context.Context) (*JobReport, error) {
	if s.fitbit == nil || !s.fitbit.Configured() {
		return &JobReport{Job: "fitbit-sync", Skipped: "fitbit is not configured"}, nil
	}
	date := s.schedule.PreviousDayKey(s.now())
	keep := func(u *domain.User) bool { return u.FitbitLinked() }
	return s.forEachUser(ctx, "fitbit-sync", keep, func(ctx context.Context, user *domain.User, report *JobReport) error {
		synced, err := s.fitbit.SyncDay(ctx, user, date)
		if synced {
			report.Synced++
		}
		return err
	})
}

func (s *jobService) ScheduleWeek(ctx context.Context) (*JobReport, error) {
	if s.calendar == nil || !s.calendar.Configured() {
		return &JobReport{Job: "schedule-week", Skipped: "cal.com is not configured"}, nil
	}
	keep := func(u *domain.User) bool { return u.Email != "" }
	return s.forEachUser(ctx, "schedule-week", keep, func(ctx context.Context, user *domain.User, report *JobReport) error {
		res, err := s.calendar.ScheduleWeek(ctx, user.ID)
		if err != nil {
			return err
		}
		report.Created += res.Created
		if len(res.Errors) > 0 {
			return fmt.Errorf("%d of the week's bookings failed: %s", len(res.Errors), strings.Join(res.Errors, "; "))
		}
		return nil
	})
}
