package main

import (
	"alcyxob/getsfit/internal/api"
	"alcyxob/getsfit/internal/catalog"
	"alcyxob/getsfit/internal/clients/calcom"
	"alcyxob/getsfit/internal/clients/fitbit"
	"alcyxob/getsfit/internal/clients/telegram"
	"alcyxob/getsfit/internal/config"
	"alcyxob/getsfit/internal/logging"
	"alcyxob/getsfit/internal/metrics"
	"alcyxob/getsfit/internal/repository"
	"alcyxob/getsfit/internal/repository/memory"
	"alcyxob/getsfit/internal/repository/mongo"
	"alcyxob/getsfit/internal/service"
	"alcyxob/getsfit/internal/storage"
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

// @title GetsFit API
// @version 1.0
// @description Personal accountability trainer: workout rotation, progression, body tracking and nudges.
// @contact.name API Support
// @contact.email support@example.com
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.Stdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	log.Info("Starting GetsFit server...")

	if cfg.JWT.Secret == "" {
		log.Fatal("jwt.secret must be set")
	}

	// --- Repositories ---
	repos, closeDB := openRepositories(cfg.Database)
	defer closeDB()

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if res, err := catalog.Seed(seedCtx, repos.Exercises); err != nil {
		log.WithError(err).Error("failed to seed exercise catalog")
	} else if res.Seeded {
		log.WithField("exercises", res.Count).Info("exercise catalog seeded")
	}
	cancelSeed()

	// --- Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.BucketName != "" {
		s3Ctx, cancelS3 := context.WithTimeout(context.Background(), 30*time.Second)
		fileStorage, err = storage.NewS3Storage(s3Ctx, cfg.S3)
		cancelS3()
		if err != nil {
			log.Fatalf("failed to initialize S3 storage: %v", err)
		}
	} else {
		log.Warn("s3.bucket_name not set, exercise videos are disabled")
	}

	// --- External clients ---
	appURL := strings.TrimSuffix(cfg.App.URL, "/")
	messenger := newMessenger(cfg.Telegram, appURL)
	fitbitAPI := fitbit.NewClient(cfg.Fitbit.ClientID, cfg.Fitbit.ClientSecret, appURL+"/api/v1/fitbit/callback")
	calendarAPI := calcom.NewClient(cfg.Calcom.APIKey, cfg.Calcom.Username, cfg.Calcom.EventTypeSlug, cfg.Calcom.WebhookSecret)

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewManager("getsfit", "server", registry)

	// --- Services ---
	now := time.Now
	schedule := service.NewSchedule(cfg.Schedule)
	stats := service.NewStatsService(repos, schedule, now)
	achievements := service.NewAchievementService(repos, stats, schedule, m, now)
	quests := service.NewQuestService(repos, schedule, now)
	fitbitService := service.NewFitbitService(fitbitAPI, repos.Users, repos.FitbitDays, cfg.JWT.Secret, schedule, now)
	workouts := service.NewWorkoutService(repos, stats, achievements, quests, fitbitService, fileStorage, schedule, m, now)
	body := service.NewBodyService(repos, stats, achievements, quests, now)
	notifications := service.NewNotificationService(repos.Notifications, messenger, schedule, m, now)
	calendar := service.NewCalendarService(calendarAPI, repos.Users, notifications, schedule, now)

	services := api.Services{
		Auth:         service.NewAuthService(repos.Users, cfg.JWT.Secret, cfg.JWT.Expiration, now),
		Workouts:     workouts,
		Body:         body,
		Injuries:     service.NewInjuryService(repos.Injuries, now),
		Stats:        stats,
		Analytics:    service.NewAnalyticsService(repos, stats, schedule, now),
		Quests:       quests,
		Achievements: achievements,
		Exercises:    service.NewExerciseService(repos.Exercises, fileStorage),
		Bot:          service.NewBotService(repos.Users, stats, workouts, body, messenger, schedule, m, now),
		Fitbit:       fitbitService,
		Calendar:     calendar,
		Jobs:         service.NewJobService(repos, stats, fitbitService, calendar, calendarAPI, notifications, schedule, m, now),
	}

	routerCfg := api.RouterConfig{
		JWTSecret:             cfg.JWT.Secret,
		CronSecret:            cfg.Cron.Secret,
		TelegramWebhookSecret: cfg.Telegram.WebhookSecret,
		AppURL:                appURL,
		Metrics:               m,
		Gatherer:              registry,
	}

	// --- Rate limiting ---
	if cfg.Redis.Address != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.WithError(err).Error("failed to close redis client")
			}
		}()
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.WithError(err).Warn("redis not reachable, rate-limited routes will fail until it is")
		}
		cancelPing()
		routerCfg.RateLimiter = redis_rate.NewLimiter(rdb)
		routerCfg.RequestsPerMin = cfg.Redis.RequestsPerMin
	} else {
		log.Warn("redis.address not set, rate limiting is disabled")
	}

	// --- Gin Engine ---
	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, routerCfg, services)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("Server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}

	log.Info("Server exiting.")
}

// openRepositories returns the configured store and a func that releases it.
func openRepositories(cfg config.DatabaseConfig) (repository.Repositories, func()) {
	if cfg.Driver == "memory" {
		log.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore().Repositories(), func() {}
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		log.Fatalf("could not connect to MongoDB: %v", err)
	}
	db := client.Database(cfg.Name)
	log.Info("Database connection established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	mongo.EnsureIndexes(ctx, db)
	cancel()

	return mongo.NewRepositories(db), func() {
		log.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(client); err != nil {
			log.WithError(err).Error("failed to disconnect MongoDB")
		}
	}
}

// newMessenger connects the Telegram bot and registers its webhook. Without a
// token messages are only logged.
func newMessenger(cfg config.TelegramConfig, appURL string) service.Messenger {
	if cfg.BotToken == "" {
		log.Warn("telegram.bot_token not set, bot messages will only be logged")
		return telegram.LogClient{}
	}
	bot, err := telegram.NewClient(cfg.BotToken)
	if err != nil {
		log.Fatalf("failed to initialize telegram bot: %v", err)
	}

	hook := appURL + "/api/v1/telegram/webhook"
	if cfg.WebhookSecret != "" {
		hook += "?secret=" + url.QueryEscape(cfg.WebhookSecret)
	}
	if err := bot.SetWebhook(hook); err != nil {
		log.WithError(err).Error("failed to register telegram webhook")
	}
	return bot
}
