package api

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

type LinkSubstitutesRequest struct {
	ExerciseID   string `json:"exerciseId" binding:"required"`
	SubstituteID string `json:"substituteId" binding:"required"`
}

type VideoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmVideoRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

type VideoURLResponse struct {
	URL string `json:"url"`
}

// ListExercises godoc
// @Summary List the exercise catalog
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Exercise
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exerciseService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if exercises == nil {
		exercises = []domain.Exercise{}
	}
	c.JSON(http.StatusOK, exercises)
}

// GetVideoURL godoc
// @Summary Stream URL for an exercise demo video
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {object} VideoURLResponse
// @Failure 404 {object} gin.H "No video"
// @Router /exercises/{exerciseId}/video [get]
func (h *ExerciseHandler) GetVideoURL(c *gin.Context) {
	id, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}
	u, err := h.exerciseService.VideoURL(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, VideoURLResponse{URL: u})
}

// SeedExercises godoc
// @Summary Seed the built-in catalog
// @Description Does nothing when the catalog already has exercises.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} catalog.SeedResult
// @Failure 403 {object} gin.H "Forbidden (not an admin)"
// @Router /admin/exercises/seed [post]
func (h *ExerciseHandler) SeedExercises(c *gin.Context) {
	res, err := h.exerciseService.Seed(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// LinkSubstitutes godoc
// @Summary Pair two exercises as substitutes
// @Tags Admin
// @Accept json
// @Security BearerAuth
// @Param pair body LinkSubstitutesRequest true "Exercise pair"
// @Success 204
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /admin/exercises/substitutes [post]
func (h *ExerciseHandler) LinkSubstitutes(c *gin.Context) {
	var req LinkSubstitutesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	a, errA := primitive.ObjectIDFromHex(req.ExerciseID)
	b, errB := primitive.ObjectIDFromHex(req.SubstituteID)
	if errA != nil || errB != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format")
		return
	}
	if err := h.exerciseService.LinkSubstitutes(c.Request.Context(), a, b); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestVideoUpload godoc
// @Summary Get a presigned URL to upload an exercise video
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param upload body VideoUploadRequest true "Video content type"
// @Success 200 {object} service.UploadURLResponse
// @Failure 503 {object} gin.H "Storage not configured"
// @Router /admin/exercises/{exerciseId}/video/upload-url [post]
func (h *ExerciseHandler) RequestVideoUpload(c *gin.Context) {
	id, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}
	var req VideoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	res, err := h.exerciseService.RequestVideoUpload(c.Request.Context(), id, req.ContentType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ConfirmVideoUpload godoc
// @Summary Attach an uploaded video to the exercise
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param confirm body ConfirmVideoRequest true "Object key from the upload URL response"
// @Success 200 {object} domain.Exercise
// @Failure 400 {object} gin.H "Key mismatch or nothing uploaded"
// @Router /admin/exercises/{exerciseId}/video/confirm [post]
func (h *ExerciseHandler) ConfirmVideoUpload(c *gin.Context) {
	id, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}
	var req ConfirmVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	e, err := h.exerciseService.ConfirmVideoUpload(c.Request.Context(), id, req.ObjectKey)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}
