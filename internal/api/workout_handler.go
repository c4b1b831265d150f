package api

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/service"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

type ExerciseResultRequest struct {
	ExerciseID    string            `json:"exerciseId" binding:"required"`
	Weight        float64           `json:"weightKg" binding:"gte=0"`
	SetsCompleted int               `json:"setsCompleted" binding:"gte=0"`
	Difficulty    domain.Difficulty `json:"difficulty" binding:"required"`
	Enjoyed       *bool             `json:"enjoyed"`
}

type CompleteWorkoutRequest struct {
	WorkoutType domain.WorkoutType      `json:"workoutType" binding:"required"`
	Express     bool                    `json:"isExpress"`
	Exercises   []ExerciseResultRequest `json:"exercises" binding:"dive"`
}

type VerifyResponse struct {
	Verified bool `json:"verified"`
}

// toInput converts the request, defaulting enjoyed to true when omitted.
func (r CompleteWorkoutRequest) toInput() (service.CompleteWorkoutInput, error) {
	in := service.CompleteWorkoutInput{
		Type:    r.WorkoutType,
		Express: r.Express,
		Source:  domain.SourceApp,
	}
	for i, e := range r.Exercises {
		id, err := primitive.ObjectIDFromHex(e.ExerciseID)
		if err != nil {
			return in, fmt.Errorf("exercises[%d]: invalid exerciseId", i)
		}
		enjoyed := e.Enjoyed == nil || *e.Enjoyed
		in.Exercises = append(in.Exercises, service.ExerciseResult{
			ExerciseID:    id,
			Weight:        e.Weight,
			SetsCompleted: e.SetsCompleted,
			Difficulty:    e.Difficulty,
			Enjoyed:       enjoyed,
		})
	}
	return in, nil
}

// GetNext godoc
// @Summary Next workout
// @Description Builds the plan for the user's next workout in the A/B/C rotation.
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param express query bool false "Express (shortened) session"
// @Success 200 {object} service.WorkoutPlan
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /workouts/next [get]
func (h *WorkoutHandler) GetNext(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	express, _ := strconv.ParseBool(c.Query("express"))
	plan, err := h.workoutService.Next(c.Request.Context(), userID, express)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// GetExercises godoc
// @Summary Exercises for a workout type
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param type path string true "Workout type (A, B or C)"
// @Param express query bool false "Express (shortened) session"
// @Success 200 {array} service.PlannedExercise
// @Failure 400 {object} gin.H "Unknown workout type"
// @Router /workouts/types/{type}/exercises [get]
func (h *WorkoutHandler) GetExercises(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	express, _ := strconv.ParseBool(c.Query("express"))
	t := domain.WorkoutType(c.Param("type"))
	exercises, err := h.workoutService.ExercisesFor(c.Request.Context(), userID, t, express)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// GetWarmUps godoc
// @Summary Warm-up routine
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.PlannedExercise
// @Router /workouts/warmups [get]
func (h *WorkoutHandler) GetWarmUps(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	warmUps, err := h.workoutService.WarmUps(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, warmUps)
}

// Complete godoc
// @Summary Complete a workout
// @Description Logs the session, updates progression and weekly stats, and returns the XP earned.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body CompleteWorkoutRequest true "Session results"
// @Success 201 {object} service.CompletionResult
// @Failure 400 {object} gin.H "Invalid input"
// @Router /workouts/complete [post]
func (h *WorkoutHandler) Complete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req CompleteWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	res, err := h.workoutService.Complete(c.Request.Context(), userID, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// QuickComplete godoc
// @Summary Log the next workout without details
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.CompletionResult
// @Router /workouts/quick-complete [post]
func (h *WorkoutHandler) QuickComplete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	res, err := h.workoutService.QuickComplete(c.Request.Context(), userID, domain.SourceApp)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// History godoc
// @Summary Workout history by week
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.WeekHistory
// @Router /workouts/history [get]
func (h *WorkoutHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	weeks, err := h.workoutService.History(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, weeks)
}

// Verify godoc
// @Summary Verify a workout with Fitbit heart rate data
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} VerifyResponse
// @Failure 404 {object} gin.H "Workout not found"
// @Failure 409 {object} gin.H "Fitbit not linked"
// @Router /workouts/{workoutId}/verify [post]
func (h *WorkoutHandler) Verify(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}
	verified, err := h.workoutService.VerifyWithFitbit(c.Request.Context(), userID, workoutID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, VerifyResponse{Verified: verified})
}
