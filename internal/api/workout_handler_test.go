package api

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/service"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkoutFlow(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("Ann", "ann@test.dev")

	rec := s.do(http.MethodGet, "/api/v1/workouts/next", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var plan service.WorkoutPlan
	decode(t, rec, &plan)
	assert.Equal(t, domain.WorkoutA, plan.Type)
	require.NotEmpty(t, plan.Exercises)
	assert.NotEmpty(t, plan.WarmUps)

	first := plan.Exercises[0]
	rec = s.do(http.MethodPost, "/api/v1/workouts/complete", token, CompleteWorkoutRequest{
		WorkoutType: plan.Type,
		Exercises: []ExerciseResultRequest{{
			ExerciseID:    first.ID.Hex(),
			Weight:        first.RecommendedWeight,
			SetsCompleted: first.Sets,
			Difficulty:    domain.JustRight,
		}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res service.CompletionResult
	decode(t, rec, &res)
	assert.Equal(t, 1, res.WorkoutsThisWeek)
	assert.True(t, res.PunishmentActive)
	assert.GreaterOrEqual(t, res.XPEarned, domain.XPWorkout)

	rec = s.do(http.MethodGet, "/api/v1/workouts/next?express=true", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &plan)
	assert.Equal(t, domain.WorkoutB, plan.Type)
	assert.True(t, plan.Express)
	assert.LessOrEqual(t, len(plan.Exercises), 3)

	rec = s.do(http.MethodGet, "/api/v1/workouts/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var weeks []service.WeekHistory
	decode(t, rec, &weeks)
	require.Len(t, weeks, 1)
	assert.Equal(t, 1, weeks[0].Count)

	rec = s.do(http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash service.Dashboard
	decode(t, rec, &dash)
	assert.Equal(t, 1, dash.WorkoutsThisWeek)
	assert.Equal(t, domain.WorkoutB, dash.NextWorkoutType)

	rec = s.do(http.MethodGet, "/api/v1/achievements", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), string(domain.AchievementFirstBlood))
}

func TestCompleteWorkoutValidation(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("Ann", "ann@test.dev")

	rec := s.do(http.MethodPost, "/api/v1/workouts/complete", token, CompleteWorkoutRequest{WorkoutType: "Z"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/workouts/complete", token, CompleteWorkoutRequest{
		WorkoutType: domain.WorkoutA,
		Exercises:   []ExerciseResultRequest{{ExerciseID: "xyz", Difficulty: domain.JustRight}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/workouts/types/Q/exercises", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuickCompleteAndVerify(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("Ann", "ann@test.dev")

	rec := s.do(http.MethodPost, "/api/v1/workouts/quick-complete", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res service.CompletionResult
	decode(t, rec, &res)
	require.NotNil(t, res.Workout)

	// Fitbit is not linked for this user.
	rec = s.do(http.MethodPost, "/api/v1/workouts/"+res.Workout.ID.Hex()+"/verify", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/v1/workouts/not-an-id/verify", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsAndQuests(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("Ann", "ann@test.dev")

	rec := s.do(http.MethodGet, "/api/v1/analytics?range=1m", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var a service.Analytics
	decode(t, rec, &a)
	assert.Len(t, a.Heatmap, 365)

	rec = s.do(http.MethodGet, "/api/v1/quests", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var quests []service.Quest
	decode(t, rec, &quests)
	assert.Len(t, quests, 3)
}
