package api

import (
	"alcyxob/getsfit/internal/service"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CronHandler exposes the batch jobs to an external scheduler.
type CronHandler struct {
	jobService service.JobService
}

func NewCronHandler(jobService service.JobService) *CronHandler {
	return &CronHandler{jobService: jobService}
}

func runJob[T any](c *gin.Context, job func(context.Context) (T, error)) {
	report, err := job(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Tick godoc
// @Summary Time-of-day nudges and the rest-day check
// @Description Meant to be called every 15 minutes.
// @Tags Cron
// @Produce json
// @Security CronSecret
// @Success 200 {object} service.TickReport
// @Failure 401 {object} gin.H "Wrong cron secret"
// @Router /cron/tick [post]
func (h *CronHandler) Tick(c *gin.Context) {
	runJob(c, h.jobService.Tick)
}

// Daily godoc
// @Summary Time-of-day nudges only
// @Tags Cron
// @Produce json
// @Security CronSecret
// @Success 200 {object} service.JobReport
// @Router /cron/daily [post]
func (h *CronHandler) Daily(c *gin.Context) {
	runJob(c, h.jobService.Daily)
}

// RestDay godoc
// @Summary Sleep-based rest day recommendation
// @Tags Cron
// @Produce json
// @Security CronSecret
// @Success 200 {object} service.JobReport
// @Router /cron/rest-day [post]
func (h *CronHandler) RestDay(c *gin.Context) {
	runJob(c, h.jobService.RestDayCheck)
}

// WeeklyRecap godoc
// @Summary Sunday week recap
// @Tags Cron
// @Produce json
// @Security CronSecret
// @Success 200 {object} service.JobReport
// @Router /cron/weekly-recap [post]
func (h *CronHandler) WeeklyRecap(c *gin.Context) {
	runJob(c, h.jobService.WeeklyRecap)
}

// FitbitSync godoc
// @Summary Store yesterday's Fitbit data for every linked user
// @Tags Cron
// @Produce json
// @Security CronSecret
// @Success 200 {object} service.JobReport
// @Router /cron/fitbit-sync [post]
func (h *CronHandler) FitbitSync(c *gin.Context) {
	runJob(c, h.jobService.FitbitSync)
}

// ScheduleWeek godoc
// @Summary Book the week's workout slots for every user
// @Tags Cron
// @Produce json
// @Security CronSecret
// @Success 200 {object} service.JobReport
// @Router /cron/schedule-week [post]
func (h *CronHandler) ScheduleWeek(c *gin.Context) {
	runJob(c, h.jobService.ScheduleWeek)
}
