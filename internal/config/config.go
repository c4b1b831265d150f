package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Cron     CronConfig     `mapstructure:"cron"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Fitbit   FitbitConfig   `mapstructure:"fitbit"`
	Calcom   CalcomConfig   `mapstructure:"calcom"`
}

type AppConfig struct {
	URL string `mapstructure:"url"` // Public base URL, used for webhooks and OAuth redirects
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "mongo" or "memory"
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

// RedisConfig is only used for rate limiting; an empty address disables it.
type RedisConfig struct {
	Address        string `mapstructure:"address"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db"`
	RequestsPerMin int    `mapstructure:"requests_per_min"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	JSON   bool   `mapstructure:"json"`
	File   string `mapstructure:"file"`
	Stdout bool   `mapstructure:"stdout"`
}

// ScheduleConfig carries the accountability rules: the week boundaries, the
// workout window and the goal numbers.
type ScheduleConfig struct {
	Timezone               string  `mapstructure:"timezone"`
	MinWorkoutsPerWeek     int     `mapstructure:"min_workouts_per_week"`
	PlannedWorkoutsPerWeek int     `mapstructure:"planned_workouts_per_week"`
	WindowStartHour        int     `mapstructure:"window_start_hour"`
	WindowEndHour          int     `mapstructure:"window_end_hour"`
	DefaultStartingWeight  float64 `mapstructure:"default_starting_weight"`
	DefaultTargetWeight    float64 `mapstructure:"default_target_weight"`
}

// Location resolves the schedule timezone, falling back to UTC.
func (s ScheduleConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type CronConfig struct {
	Secret string `mapstructure:"secret"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	// WebhookSecret is appended to the webhook URL as ?secret= and checked on delivery.
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type FitbitConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

type CalcomConfig struct {
	APIKey        string `mapstructure:"api_key"`
	Username      string `mapstructure:"username"`
	EventTypeSlug string `mapstructure:"event_type_slug"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, telegram.bot_token -> TELEGRAM_BOT_TOKEN
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// No file: defaults and env vars only.
		err = nil
	} else if err != nil {
		return
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.url", "http://localhost:8080")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "getsfit")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.requests_per_min", 60)
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "168h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.stdout", true)
	v.SetDefault("schedule.timezone", "Australia/Sydney")
	v.SetDefault("schedule.min_workouts_per_week", 3)
	v.SetDefault("schedule.planned_workouts_per_week", 5)
	v.SetDefault("schedule.window_start_hour", 11)
	v.SetDefault("schedule.window_end_hour", 16)
	v.SetDefault("schedule.default_starting_weight", 82)
	v.SetDefault("schedule.default_target_weight", 75)
	v.SetDefault("cron.secret", "")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.webhook_secret", "")
	v.SetDefault("fitbit.client_id", "")
	v.SetDefault("fitbit.client_secret", "")
	v.SetDefault("calcom.api_key", "")
	v.SetDefault("calcom.username", "")
	v.SetDefault("calcom.event_type_slug", "workout")
	v.SetDefault("calcom.webhook_secret", "")
}
