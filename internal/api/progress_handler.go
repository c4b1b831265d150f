package api

import (
	"alcyxob/getsfit/internal/service"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ProgressHandler serves the read-only views: dashboard, charts, quests and achievements.
type ProgressHandler struct {
	statsService       service.StatsService
	analyticsService   service.AnalyticsService
	questService       service.QuestService
	achievementService service.AchievementService
}

func NewProgressHandler(stats service.StatsService, analytics service.AnalyticsService, quests service.QuestService, achievements service.AchievementService) *ProgressHandler {
	return &ProgressHandler{
		statsService:       stats,
		analyticsService:   analytics,
		questService:       quests,
		achievementService: achievements,
	}
}

// Dashboard godoc
// @Summary Home screen summary
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Dashboard
// @Router /dashboard [get]
func (h *ProgressHandler) Dashboard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	d, err := h.statsService.Dashboard(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Analytics godoc
// @Summary Progress charts
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param range query string false "1W, 1M, 3M, 6M or 1Y" default(3M)
// @Success 200 {object} service.Analytics
// @Router /analytics [get]
func (h *ProgressHandler) Analytics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	r := service.AnalyticsRange(strings.ToUpper(c.DefaultQuery("range", string(service.Range3M))))
	a, err := h.analyticsService.Analytics(c.Request.Context(), userID, r)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Quests godoc
// @Summary This week's quests
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.Quest
// @Router /quests [get]
func (h *ProgressHandler) Quests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quests, err := h.questService.Weekly(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quests)
}

// Achievements godoc
// @Summary Unlocked achievements
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.AchievementView
// @Router /achievements [get]
func (h *ProgressHandler) Achievements(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	list, err := h.achievementService.List(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
