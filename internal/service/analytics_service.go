package service

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	movingAverageWindow = 7
	heatmapDays         = 365
	analyticsWeeks      = 12
	topExerciseCount    = 6
	waistScanLimit      = 1000
)

// AnalyticsRange is the look-back window of the progress charts.
type AnalyticsRange string

const (
	Range1W AnalyticsRange = "1W"
	Range1M AnalyticsRange = "1M"
	Range3M AnalyticsRange = "3M"
	Range6M AnalyticsRange = "6M"
	Range1Y AnalyticsRange = "1Y"
)

// Days falls back to the 3 month window for unknown values.
func (r AnalyticsRange) Days() int {
	switch r {
	case Range1W:
		return 7
	case Range1M:
		return 30
	case Range6M:
		return 180
	case Range1Y:
		return 365
	default:
		return 90
	}
}

type WeightPoint struct {
	Date          string  `json:"date"`
	Weight        float64 `json:"weight"`
	MovingAverage float64 `json:"ma"`
}

type WaistPoint struct {
	Date  string  `json:"date"`
	Waist float64 `json:"waist"`
}

type WeekTypeCount struct {
	WeekStart string `json:"week"`
	Total     int    `json:"total"`
	A         int    `json:"A"`
	B         int    `json:"B"`
	C         int    `json:"C"`
}

type TypeShare struct {
	Type  domain.WorkoutType `json:"type"`
	Count int                `json:"value"`
}

type StrengthPoint struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

type ExerciseProgress struct {
	Name   string          `json:"name"`
	Points []StrengthPoint `json:"data"`
}

type HeatmapDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AnalyticsSummary struct {
	TotalWorkouts      int     `json:"totalWorkouts"`
	CurrentWeight      float64 `json:"currentWeight"`
	TargetWeight       float64 `json:"targetWeight"`
	StartingWeight     float64 `json:"startingWeight"`
	WeightLost         float64 `json:"weightLost"`
	ProgressPercent    int     `json:"progressPct"`
	Streak             int     `json:"streak"`
	ProjectedWeeksLeft *int    `json:"projectedWeeksLeft"`
}

// Analytics feeds the progress page.
type Analytics struct {
	WeightTrend     []WeightPoint        `json:"weightTrend"`
	WaistTrend      []WaistPoint         `json:"waistTrend"`
	WorkoutsPerWeek []WeekTypeCount      `json:"workoutsPerWeek"`
	WorkoutTypes    []TypeShare          `json:"workoutTypes"`
	TopExercises    []ExerciseProgress   `json:"topExercises"`
	FitbitTrend     []domain.FitbitDaily `json:"fitbitTrend"`
	FitbitLinked    bool                 `json:"fitbitLinked"`
	Heatmap         []HeatmapDay         `json:"heatmap"`
	Stats           AnalyticsSummary     `json:"stats"`
}

type AnalyticsService interface {
	Analytics(ctx context.Context, userID primitive.ObjectID, r AnalyticsRange) (*Analytics, error)
}

type analyticsService struct {
	repos    repository.Repositories
	stats    StatsService
	schedule Schedule
	now      Clock
}

func NewAnalyticsService(repos repository.Repositories, stats StatsService, schedule Schedule, now Clock) AnalyticsService {
	return &analyticsService{repos: repos, stats: stats, schedule: schedule, now: now}
}

func (s *analyticsService) Analytics(ctx context.Context, userID primitive.ObjectID, r AnalyticsRange) (*Analytics, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	now := s.now()
	todayStart, _ := s.schedule.DayBounds(now)
	since := todayStart.AddDate(0, 0, -r.Days())
	heatStart := todayStart.AddDate(0, 0, -(heatmapDays - 1))

	weights, err := s.repos.BodyLogs.ListWeights(ctx, userID, since, 0)
	if err != nil {
		return nil, fmt.Errorf("list weights: %w", err)
	}
	waists, err := s.repos.BodyLogs.ListWaists(ctx, userID, waistScanLimit)
	if err != nil {
		return nil, fmt.Errorf("list waists: %w", err)
	}
	workouts, err := s.repos.Workouts.ListSince(ctx, userID, heatStart)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	total, err := s.repos.Workouts.CountAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count workouts: %w", err)
	}
	logs, err := s.repos.ExerciseLogs.ListBetween(ctx, userID, since, now.Add(time.Second))
	if err != nil {
		return nil, fmt.Errorf("list exercise logs: %w", err)
	}
	days, err := s.repos.FitbitDays.ListSince(ctx, userID, s.schedule.DayKey(since))
	if err != nil {
		return nil, fmt.Errorf("list fitbit days: %w", err)
	}
	streak, err := s.stats.Streak(ctx, userID)
	if err != nil {
		return nil, err
	}

	var inRange []domain.Workout
	for _, w := range workouts {
		if !w.CompletedAt.Before(since) {
			inRange = append(inRange, w)
		}
	}

	top, err := s.topExercises(ctx, logs)
	if err != nil {
		return nil, err
	}

	a := &Analytics{
		WeightTrend:     s.weightTrend(weights),
		WaistTrend:      s.waistTrend(waists, since),
		WorkoutsPerWeek: s.workoutsPerWeek(inRange),
		WorkoutTypes:    workoutTypeShares(inRange),
		TopExercises:    top,
		FitbitTrend:     days,
		FitbitLinked:    user.FitbitLinked(),
		Heatmap:         s.heatmap(workouts, heatStart),
		Stats:           s.summary(user, int(total), streak, now),
	}
	return a, nil
}

func (s *analyticsService) chartDate(t time.Time) string {
	return s.schedule.Local(t).Format("Jan 2")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (s *analyticsService) weightTrend(logs []domain.WeightLog) []WeightPoint {
	points := make([]WeightPoint, 0, len(logs))
	sum := 0.0
	for i, l := range logs {
		sum += l.WeightKg
		n := i + 1
		if n > movingAverageWindow {
			sum -= logs[i-movingAverageWindow].WeightKg
			n = movingAverageWindow
		}
		points = append(points, WeightPoint{
			Date:          s.chartDate(l.LoggedAt),
			Weight:        l.WeightKg,
			MovingAverage: round1(sum / float64(n)),
		})
	}
	return points
}

// waistTrend takes newest-first logs and returns the in-range ones oldest first.
func (s *analyticsService) waistTrend(logs []domain.WaistLog, since time.Time) []WaistPoint {
	points := []WaistPoint{}
	for i := len(logs) - 1; i >= 0; i-- {
		if logs[i].LoggedAt.Before(since) {
			continue
		}
		points = append(points, WaistPoint{Date: s.chartDate(logs[i].LoggedAt), Waist: logs[i].WaistCm})
	}
	return points
}

func (s *analyticsService) workoutsPerWeek(workouts []domain.Workout) []WeekTypeCount {
	var weeks []WeekTypeCount
	index := map[int64]int{}
	for _, w := range workouts {
		ws := s.schedule.WeekStart(w.CompletedAt)
		i, ok := index[ws.Unix()]
		if !ok {
			weeks = append(weeks, WeekTypeCount{WeekStart: s.chartDate(ws)})
			i = len(weeks) - 1
			index[ws.Unix()] = i
		}
		weeks[i].Total++
		switch w.Type {
		case domain.WorkoutA:
			weeks[i].A++
		case domain.WorkoutB:
			weeks[i].B++
		case domain.WorkoutC:
			weeks[i].C++
		}
	}
	if len(weeks) > analyticsWeeks {
		weeks = weeks[len(weeks)-analyticsWeeks:]
	}
	return weeks
}

func workoutTypeShares(workouts []domain.Workout) []TypeShare {
	shares := []TypeShare{{Type: domain.WorkoutA}, {Type: domain.WorkoutB}, {Type: domain.WorkoutC}}
	for _, w := range workouts {
		for i := range shares {
			if shares[i].Type == w.Type {
				shares[i].Count++
			}
		}
	}
	return shares
}

// topExercises ranks exercises by how often they were logged in range.
func (s *analyticsService) topExercises(ctx context.Context, logs []domain.ExerciseLog) ([]ExerciseProgress, error) {
	catalog, err := s.repos.Exercises.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	names := make(map[primitive.ObjectID]string, len(catalog))
	for _, e := range catalog {
		names[e.ID] = e.Name
	}

	byName := map[string]*ExerciseProgress{}
	var order []string
	for _, l := range logs {
		name, ok := names[l.ExerciseID]
		if !ok {
			name = "Unknown"
		}
		p, ok := byName[name]
		if !ok {
			p = &ExerciseProgress{Name: name}
			byName[name] = p
			order = append(order, name)
		}
		p.Points = append(p.Points, StrengthPoint{Date: s.chartDate(l.PerformedAt), Weight: l.Weight})
	}

	sort.SliceStable(order, func(i, j int) bool {
		return len(byName[order[i]].Points) > len(byName[order[j]].Points)
	})
	if len(order) > topExerciseCount {
		order = order[:topExerciseCount]
	}
	top := make([]ExerciseProgress, 0, len(order))
	for _, name := range order {
		top = append(top, *byName[name])
	}
	return top, nil
}

func (s *analyticsService) heatmap(workouts []domain.Workout, start time.Time) []HeatmapDay {
	counts := map[string]int{}
	for _, w := range workouts {
		counts[s.schedule.DayKey(w.CompletedAt)]++
	}
	days := make([]HeatmapDay, 0, heatmapDays)
	for i := 0; i < heatmapDays; i++ {
		key := s.schedule.DayKey(start.AddDate(0, 0, i))
		days = append(days, HeatmapDay{Date: key, Count: counts[key]})
	}
	return days
}

func (s *analyticsService) summary(user *domain.User, total, streak int, now time.Time) AnalyticsSummary {
	start, current, target := user.Weights(s.schedule.DefaultStartingWeight, s.schedule.DefaultTargetWeight)
	lost := start - current
	sum := AnalyticsSummary{
		TotalWorkouts:   total,
		CurrentWeight:   current,
		TargetWeight:    target,
		StartingWeight:  start,
		WeightLost:      round1(lost),
		ProgressPercent: ProgressPercent(start, current, target),
		Streak:          streak,
	}
	sum.ProjectedWeeksLeft = projectedWeeksLeft(lost, current-target, user.GoalStartedAt, now)
	return sum
}

// projectedWeeksLeft extrapolates the average weekly loss since the goal
// started. It is nil while nothing has been lost or the goal is reached.
func projectedWeeksLeft(lost, remaining float64, goalStarted *time.Time, now time.Time) *int {
	if lost <= 0 || remaining <= 0 || goalStarted == nil {
		return nil
	}
	weeks := max(1, int(now.Sub(*goalStarted).Hours()/(24*7)))
	rate := lost / float64(weeks)
	left := int(math.Ceil(remaining / rate))
	return &left
}
