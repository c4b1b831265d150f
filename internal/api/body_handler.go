package api

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodyHandler serves weight, waist, goal and injury tracking.
type BodyHandler struct {
	bodyService   service.BodyService
	injuryService service.InjuryService
}

func NewBodyHandler(bodyService service.BodyService, injuryService service.InjuryService) *BodyHandler {
	return &BodyHandler{bodyService: bodyService, injuryService: injuryService}
}

type LogWeightRequest struct {
	WeightKg float64 `json:"weightKg" binding:"required"`
}

type LogWaistRequest struct {
	WaistCm float64 `json:"waistCm" binding:"required"`
}

type UpdateGoalsRequest struct {
	StartingWeight *float64 `json:"startingWeight"`
	TargetWeight   *float64 `json:"targetWeight"`
}

type ReportInjuryRequest struct {
	BodyArea domain.InjuryArea     `json:"bodyArea" binding:"required"`
	Severity domain.InjurySeverity `json:"severity" binding:"required"`
	Notes    string                `json:"notes"`
}

// LogWeight godoc
// @Summary Log body weight
// @Tags Body
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param log body LogWeightRequest true "Weight in kg (30-200)"
// @Success 201 {object} service.BodyLogResult
// @Failure 400 {object} gin.H "Out of range"
// @Router /body/weight [post]
func (h *BodyHandler) LogWeight(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req LogWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	res, err := h.bodyService.LogWeight(c.Request.Context(), userID, req.WeightKg)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// WeightHistory godoc
// @Summary Weight history, oldest first
// @Tags Body
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WeightLog
// @Router /body/weight [get]
func (h *BodyHandler) WeightHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	logs, err := h.bodyService.WeightHistory(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// LogWaist godoc
// @Summary Log waist measurement
// @Tags Body
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param log body LogWaistRequest true "Waist in cm (50-200)"
// @Success 201 {object} service.BodyLogResult
// @Failure 400 {object} gin.H "Out of range"
// @Router /body/waist [post]
func (h *BodyHandler) LogWaist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req LogWaistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	res, err := h.bodyService.LogWaist(c.Request.Context(), userID, req.WaistCm)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// WaistHistory godoc
// @Summary Latest waist measurements, newest first
// @Tags Body
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WaistLog
// @Router /body/waist [get]
func (h *BodyHandler) WaistHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	logs, err := h.bodyService.WaistHistory(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// UpdateGoals godoc
// @Summary Update starting and/or target weight
// @Tags Body
// @Accept json
// @Security BearerAuth
// @Param goals body UpdateGoalsRequest true "Goal weights in kg"
// @Success 204
// @Failure 400 {object} gin.H "Invalid input"
// @Router /body/goals [put]
func (h *BodyHandler) UpdateGoals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req UpdateGoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if err := h.bodyService.UpdateGoals(c.Request.Context(), userID, req.StartingWeight, req.TargetWeight); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReportInjury godoc
// @Summary Report an injury
// @Description Active injuries swap out conflicting exercises until resolved.
// @Tags Injuries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param injury body ReportInjuryRequest true "Injury details"
// @Success 201 {object} domain.Injury
// @Failure 400 {object} gin.H "Unknown area or severity"
// @Router /injuries [post]
func (h *BodyHandler) ReportInjury(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req ReportInjuryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	injury, err := h.injuryService.Report(c.Request.Context(), userID, req.BodyArea, req.Severity, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, injury)
}

// ListInjuries godoc
// @Summary Active injuries
// @Tags Injuries
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Injury
// @Router /injuries [get]
func (h *BodyHandler) ListInjuries(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	injuries, err := h.injuryService.ListActive(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, injuries)
}

// ResolveInjury godoc
// @Summary Mark an injury as healed
// @Tags Injuries
// @Security BearerAuth
// @Param injuryId path string true "Injury ID"
// @Success 204
// @Failure 404 {object} gin.H "Injury not found"
// @Router /injuries/{injuryId}/resolve [post]
func (h *BodyHandler) ResolveInjury(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	injuryID, ok := pathObjectID(c, "injuryId")
	if !ok {
		return
	}
	if err := h.injuryService.Resolve(c.Request.Context(), userID, injuryID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
