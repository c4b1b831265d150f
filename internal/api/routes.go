package api

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/metrics"
	"alcyxob/getsfit/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth         service.AuthService
	Workouts     service.WorkoutService
	Body         service.BodyService
	Injuries     service.InjuryService
	Stats        service.StatsService
	Analytics    service.AnalyticsService
	Quests       service.QuestService
	Achievements service.AchievementService
	Exercises    service.ExerciseService
	Bot          service.BotService
	Fitbit       service.FitbitService
	Calendar     service.CalendarService
	Jobs         service.JobService
}

// RouterConfig carries the secrets and optional infrastructure for SetupRoutes.
type RouterConfig struct {
	JWTSecret             string
	CronSecret            string
	TelegramWebhookSecret string
	AppURL                string

	Metrics *metrics.Manager
	// Gatherer backs GET /metrics; nil skips the endpoint.
	Gatherer prometheus.Gatherer

	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter    RequestRateLimiter
	RequestsPerMin int
}

func SetupRoutes(router *gin.Engine, cfg RouterConfig, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	workoutHandler := NewWorkoutHandler(svc.Workouts)
	bodyHandler := NewBodyHandler(svc.Body, svc.Injuries)
	progressHandler := NewProgressHandler(svc.Stats, svc.Analytics, svc.Quests, svc.Achievements)
	exerciseHandler := NewExerciseHandler(svc.Exercises)
	integrationHandler := NewIntegrationHandler(svc.Bot, svc.Fitbit, svc.Calendar, cfg.AppURL, cfg.TelegramWebhookSecret)
	cronHandler := NewCronHandler(svc.Jobs)

	if cfg.Metrics != nil {
		router.Use(MetricsMiddleware(cfg.Metrics))
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")

	authGroup := apiV1.Group("/auth")
	if cfg.RateLimiter != nil {
		authGroup.Use(RateLimitMiddleware(cfg.RateLimiter, "auth", cfg.RequestsPerMin))
	}
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Third-party callbacks authenticate themselves.
	apiV1.POST("/telegram/webhook", integrationHandler.TelegramWebhook)
	apiV1.POST("/calcom/webhook", integrationHandler.CalcomWebhook)
	apiV1.GET("/fitbit/callback", integrationHandler.FitbitCallback)

	cron := apiV1.Group("/cron")
	cron.Use(CronAuthMiddleware(cfg.CronSecret))
	{
		cron.POST("/tick", cronHandler.Tick)
		cron.POST("/daily", cronHandler.Daily)
		cron.POST("/rest-day", cronHandler.RestDay)
		cron.POST("/weekly-recap", cronHandler.WeeklyRecap)
		cron.POST("/fitbit-sync", cronHandler.FitbitSync)
		cron.POST("/schedule-week", cronHandler.ScheduleWeek)
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(cfg.JWTSecret))
	if cfg.RateLimiter != nil {
		protected.Use(RateLimitMiddleware(cfg.RateLimiter, "api", cfg.RequestsPerMin))
	}
	{
		protected.GET("/me", authHandler.Me)
		protected.GET("/settings/status", authHandler.SettingsStatus)

		workouts := protected.Group("/workouts")
		{
			workouts.GET("/next", workoutHandler.GetNext)
			workouts.GET("/warmups", workoutHandler.GetWarmUps)
			workouts.GET("/types/:type/exercises", workoutHandler.GetExercises)
			workouts.GET("/history", workoutHandler.History)
			workouts.POST("/complete", workoutHandler.Complete)
			workouts.POST("/quick-complete", workoutHandler.QuickComplete)
			workouts.POST("/:workoutId/verify", workoutHandler.Verify)
		}

		body := protected.Group("/body")
		{
			body.POST("/weight", bodyHandler.LogWeight)
			body.GET("/weight", bodyHandler.WeightHistory)
			body.POST("/waist", bodyHandler.LogWaist)
			body.GET("/waist", bodyHandler.WaistHistory)
			body.PUT("/goals", bodyHandler.UpdateGoals)
		}

		injuries := protected.Group("/injuries")
		{
			injuries.POST("", bodyHandler.ReportInjury)
			injuries.GET("", bodyHandler.ListInjuries)
			injuries.POST("/:injuryId/resolve", bodyHandler.ResolveInjury)
		}

		protected.GET("/dashboard", progressHandler.Dashboard)
		protected.GET("/analytics", progressHandler.Analytics)
		protected.GET("/quests", progressHandler.Quests)
		protected.GET("/achievements", progressHandler.Achievements)

		protected.GET("/exercises", exerciseHandler.ListExercises)
		protected.GET("/exercises/:exerciseId/video", exerciseHandler.GetVideoURL)

		protected.POST("/telegram/link-code", integrationHandler.TelegramLinkCode)
		protected.GET("/fitbit/auth", integrationHandler.FitbitAuthURL)
		protected.POST("/fitbit/sync", integrationHandler.FitbitSync)
		protected.POST("/calcom/schedule-week", integrationHandler.ScheduleWeek)

		admin := protected.Group("/admin")
		admin.Use(RoleMiddleware(domain.RoleAdmin))
		{
			admin.POST("/exercises/seed", exerciseHandler.SeedExercises)
			admin.POST("/exercises/substitutes", exerciseHandler.LinkSubstitutes)
			admin.POST("/exercises/:exerciseId/video/upload-url", exerciseHandler.RequestVideoUpload)
			admin.POST("/exercises/:exerciseId/video/confirm", exerciseHandler.ConfirmVideoUpload)
		}
	}
}
