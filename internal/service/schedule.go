package service

import (
	"alcyxob/getsfit/internal/config"
	"alcyxob/getsfit/internal/domain"
	"time"
)

// Schedule is the resolved accountability configuration shared by services.
type Schedule struct {
	Location               *time.Location
	MinWorkoutsPerWeek     int
	PlannedWorkoutsPerWeek int
	WindowStartHour        int
	WindowEndHour          int
	DefaultStartingWeight  float64
	DefaultTargetWeight    float64
}

func NewSchedule(cfg config.ScheduleConfig) Schedule {
	s := Schedule{
		Location:               cfg.Location(),
		MinWorkoutsPerWeek:     cfg.MinWorkoutsPerWeek,
		PlannedWorkoutsPerWeek: cfg.PlannedWorkoutsPerWeek,
		WindowStartHour:        cfg.WindowStartHour,
		WindowEndHour:          cfg.WindowEndHour,
		DefaultStartingWeight:  cfg.DefaultStartingWeight,
		DefaultTargetWeight:    cfg.DefaultTargetWeight,
	}
	if s.MinWorkoutsPerWeek <= 0 {
		s.MinWorkoutsPerWeek = 3
	}
	if s.PlannedWorkoutsPerWeek <= 0 {
		s.PlannedWorkoutsPerWeek = 5
	}
	if s.DefaultStartingWeight <= 0 {
		s.DefaultStartingWeight = domain.DefaultStartingWeight
	}
	if s.DefaultTargetWeight <= 0 {
		s.DefaultTargetWeight = domain.DefaultTargetWeight
	}
	return s
}

func (s Schedule) WeekStart(t time.Time) time.Time {
	return domain.WeekStart(t, s.Location)
}

// WeekBounds returns [start, end) of the week containing t.
func (s Schedule) WeekBounds(t time.Time) (time.Time, time.Time) {
	start := s.WeekStart(t)
	return start, start.AddDate(0, 0, 7)
}

// DayBounds returns [start, end) of t's calendar day.
func (s Schedule) DayBounds(t time.Time) (time.Time, time.Time) {
	start := domain.DayStart(t, s.Location)
	return start, start.AddDate(0, 0, 1)
}

func (s Schedule) DayKey(t time.Time) string {
	return domain.DayKey(t, s.Location)
}

// PreviousDayKey is the YYYY-MM-DD of the day before t's calendar day.
func (s Schedule) PreviousDayKey(t time.Time) string {
	return domain.DayStart(t, s.Location).AddDate(0, 0, -1).Format(domain.DayLayout)
}

func (s Schedule) Local(t time.Time) time.Time {
	return t.In(s.Location)
}

// Successful reports whether a week with count workouts met the minimum.
func (s Schedule) Successful(count int) bool {
	return count >= s.MinWorkoutsPerWeek
}
