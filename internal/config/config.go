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
		OpenLibrary
		Search
		Sessions
		Covers
		Tasks
		Refresh
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
	OpenLibrary struct {
		BaseURL   string
		UserAgent string
		Language  string        // Passed as the "languages" search filter; empty disables it
		Timeout   time.Duration // Whole-request timeout (default: 20s)
		RateLimit float64       // Requests per second towards OpenLibrary
	}
	Search struct {
		Debounce       time.Duration // Quiet period before a typed query is searched (default: 500ms)
		MinQueryLength int           // Shorter non-blank queries are ignored (default: 2)
		ResultLimit    int           // Default page size for search requests
		MaxResultLimit int
		InitialQuery   string
	}
	Sessions struct {
		IdleTimeout     time.Duration // Screen sessions idle longer than this are closed
		CookieLifetime  time.Duration
		SecureCookies   bool
		CSRFSecret      string // Hex or raw key for CSRF tokens; random per process when empty
		CleanupInterval time.Duration
	}
	Covers struct {
		Dir string // Defaults to "covers" next to the database when empty
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Refresh struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// OpenLibrary defaults
	v.SetDefault("openlibrary_base_url", DefaultOpenLibraryBaseURL)
	v.SetDefault("openlibrary_user_agent", DefaultUserAgent)
	v.SetDefault("openlibrary_language", "eng")
	v.SetDefault("openlibrary_timeout", "20s")
	v.SetDefault("openlibrary_rate_limit", 5)

	// Search screen defaults
	v.SetDefault("search_debounce", "500ms")
	v.SetDefault("search_min_query_length", 2)
	v.SetDefault("search_result_limit", 20)
	v.SetDefault("search_max_result_limit", 100)
	v.SetDefault("search_initial_query", "")

	// Screen session defaults
	v.SetDefault("session_idle_timeout", "30m")
	v.SetDefault("session_cookie_lifetime", "24h")
	v.SetDefault("session_secure_cookies", false)
	v.SetDefault("session_csrf_secret", "")
	v.SetDefault("session_cleanup_interval", "1m")

	v.SetDefault("covers_dir", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "2m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("refresh_enabled", true)
	v.SetDefault("refresh_schedule", "0 3 * * *")

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
		OpenLibrary: OpenLibrary{
			BaseURL:   v.GetString("OPENLIBRARY_BASE_URL"),
			UserAgent: v.GetString("OPENLIBRARY_USER_AGENT"),
			Language:  v.GetString("OPENLIBRARY_LANGUAGE"),
			Timeout:   v.GetDuration("OPENLIBRARY_TIMEOUT"),
			RateLimit: v.GetFloat64("OPENLIBRARY_RATE_LIMIT"),
		},
		Search: Search{
			Debounce:       v.GetDuration("SEARCH_DEBOUNCE"),
			MinQueryLength: v.GetInt("SEARCH_MIN_QUERY_LENGTH"),
			ResultLimit:    v.GetInt("SEARCH_RESULT_LIMIT"),
			MaxResultLimit: v.GetInt("SEARCH_MAX_RESULT_LIMIT"),
			InitialQuery:   v.GetString("SEARCH_INITIAL_QUERY"),
		},
		Sessions: Sessions{
			IdleTimeout:     v.GetDuration("SESSION_IDLE_TIMEOUT"),
			CookieLifetime:  v.GetDuration("SESSION_COOKIE_LIFETIME"),
			SecureCookies:   v.GetBool("SESSION_SECURE_COOKIES"),
			CSRFSecret:      v.GetString("SESSION_CSRF_SECRET"),
			CleanupInterval: v.GetDuration("SESSION_CLEANUP_INTERVAL"),
		},
		Covers: Covers{
			Dir: v.GetString("COVERS_DIR"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Refresh: Refresh{
			Enabled:  v.GetBool("REFRESH_ENABLED"),
			Schedule: v.GetString("REFRESH_SCHEDULE"),
		},
	}
}
