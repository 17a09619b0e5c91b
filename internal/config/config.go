package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Library
		AI
		Session
		Tasks
		Scheduler
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Library struct {
		SearchThreshold float64
		FetchRetries    int
		RetryDelay      time.Duration // Doubled per attempt
		MaxRetryDelay   time.Duration
		InboxSize       int // Notifications kept per user
	}
	AI struct {
		Endpoint          string // Empty disables the assistant
		APIKey            string
		Timeout           time.Duration
		RequestsPerMinute int
		Burst             int
	}
	Session struct {
		Secret        string
		Lifetime      time.Duration
		SecureCookies bool // Set to false for local dev without HTTPS
		CSRFEnabled   bool
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration // Stuck tasks go back to the queue after this
		CleanupInterval time.Duration
	}
	Scheduler struct {
		RefreshEnabled  bool
		RefreshSchedule string // Cron format: "0 */6 * * *" = every 6 hours
		CleanupSchedule string
	}
	Log struct {
		Level  string
		Format string // console or json
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Library store defaults
	v.SetDefault("library_search_threshold", 0.6)
	v.SetDefault("library_fetch_retries", 2)
	v.SetDefault("library_retry_delay", "500ms")
	v.SetDefault("library_max_retry_delay", "10s")
	v.SetDefault("library_inbox_size", 20)

	// Assistant defaults
	v.SetDefault("ai_endpoint", "")
	v.SetDefault("ai_api_key", "")
	v.SetDefault("ai_timeout", "60s")
	v.SetDefault("ai_requests_per_minute", 10)
	v.SetDefault("ai_burst", 3)

	// Session defaults
	v.SetDefault("session_secret", "") // Auto-generated if empty
	v.SetDefault("session_lifetime", "720h")
	v.SetDefault("session_secure_cookies", true)
	v.SetDefault("session_csrf_enabled", true)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Scheduler defaults
	v.SetDefault("library_refresh_enabled", true)
	v.SetDefault("library_refresh_schedule", "0 */6 * * *") // Every 6 hours
	v.SetDefault("notes_cleanup_schedule", "30 3 * * *")    // Daily at 03:30

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Library: Library{
			SearchThreshold: v.GetFloat64("LIBRARY_SEARCH_THRESHOLD"),
			FetchRetries:    v.GetInt("LIBRARY_FETCH_RETRIES"),
			RetryDelay:      v.GetDuration("LIBRARY_RETRY_DELAY"),
			MaxRetryDelay:   v.GetDuration("LIBRARY_MAX_RETRY_DELAY"),
			InboxSize:       v.GetInt("LIBRARY_INBOX_SIZE"),
		},
		AI: AI{
			Endpoint:          v.GetString("AI_ENDPOINT"),
			APIKey:            v.GetString("AI_API_KEY"),
			Timeout:           v.GetDuration("AI_TIMEOUT"),
			RequestsPerMinute: v.GetInt("AI_REQUESTS_PER_MINUTE"),
			Burst:             v.GetInt("AI_BURST"),
		},
		Session: Session{
			Secret:        v.GetString("SESSION_SECRET"),
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			SecureCookies: v.GetBool("SESSION_SECURE_COOKIES"),
			CSRFEnabled:   v.GetBool("SESSION_CSRF_ENABLED"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Scheduler: Scheduler{
			RefreshEnabled:  v.GetBool("LIBRARY_REFRESH_ENABLED"),
			RefreshSchedule: v.GetString("LIBRARY_REFRESH_SCHEDULE"),
			CleanupSchedule: v.GetString("NOTES_CLEANUP_SCHEDULE"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}
