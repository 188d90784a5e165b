package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// NotifyConfig carries the delivery-engine knobs. The defaults mirror the
// limits of the push transport (500-token multicast ceiling) and are not
// worth tuning without evidence.
type NotifyConfig struct {
	BatchSize   int
	MaxRetries  int
	BaseDelay   time.Duration
	BatchPause  time.Duration
	SendTimeout time.Duration
	QueueSize   int
}

type SchedulerConfig struct {
	ChunkSize          int
	StreakDedupWindow  time.Duration
	WorkoutDedupWindow time.Duration
	InactivityDays     int
	RetentionDays      int
}

type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	GoogleClientIDs string
	LogLevel        string

	FCMServiceAccount string
	PushDisabled      bool

	AIServiceURL string
	AITimeout    time.Duration

	UploadDir string

	Notify    NotifyConfig
	Scheduler SchedulerConfig
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", "calofit.db"),
		JWTSecret:         getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		GoogleClientIDs:   getEnv("GOOGLE_CLIENT_IDS", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		FCMServiceAccount: getEnv("FCM_SERVICE_ACCOUNT", ""),
		PushDisabled:      getEnvBool("PUSH_DISABLED", false),
		AIServiceURL:      getEnv("AI_SERVICE_URL", "http://localhost:8000"),
		AITimeout:         getEnvDuration("AI_TIMEOUT", 30*time.Second),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		Notify: NotifyConfig{
			BatchSize:   getEnvInt("NOTIFY_BATCH_SIZE", 500),
			MaxRetries:  getEnvInt("NOTIFY_MAX_RETRIES", 2),
			BaseDelay:   getEnvDuration("NOTIFY_BASE_DELAY", 250*time.Millisecond),
			BatchPause:  getEnvDuration("NOTIFY_BATCH_PAUSE", 200*time.Millisecond),
			SendTimeout: getEnvDuration("NOTIFY_SEND_TIMEOUT", 10*time.Second),
			QueueSize:   getEnvInt("NOTIFY_QUEUE_SIZE", 256),
		},
		Scheduler: SchedulerConfig{
			ChunkSize:          getEnvInt("SCHEDULER_CHUNK_SIZE", 30),
			StreakDedupWindow:  getEnvDuration("STREAK_DEDUP_WINDOW", 48*time.Hour),
			WorkoutDedupWindow: getEnvDuration("WORKOUT_DEDUP_WINDOW", 6*time.Hour),
			InactivityDays:     getEnvInt("INACTIVITY_DAYS", 3),
			RetentionDays:      getEnvInt("TOKEN_RETENTION_DAYS", 90),
		},
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the process cannot serve with. A missing
// FCM service account is fatal unless push is explicitly disabled for dev.
func (c *Config) Validate() error {
	if !c.PushDisabled && c.FCMServiceAccount == "" {
		return errors.New("FCM_SERVICE_ACCOUNT is required (set PUSH_DISABLED=true to run without push)")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
