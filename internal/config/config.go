package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Sports data API (TheSportsDB)
	SportsDBAPIKey  string        `envconfig:"SPORTSDB_API_KEY" required:"true"`
	SportsDBBaseURL string        `envconfig:"SPORTSDB_BASE_URL" default:"https://www.thesportsdb.com/api/v1/json"`
	SportsDBTimeout time.Duration `envconfig:"SPORTSDB_TIMEOUT" default:"30s"`

	// Weather API (OpenWeatherMap One Call). Key is optional: without it,
	// matches sync fine but carry no weather snapshots.
	OpenWeatherAPIKey  string        `envconfig:"OPENWEATHER_API_KEY" default:""`
	OpenWeatherBaseURL string        `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org/data/3.0/onecall"`
	OpenWeatherTimeout time.Duration `envconfig:"OPENWEATHER_TIMEOUT" default:"15s"`

	// Prediction API (OpenAI-compatible). Key is optional: without it, the
	// prediction endpoint is disabled.
	OpenAIAPIKey  string        `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIBaseURL string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIModel   string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAITimeout time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"matchsync"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"matchsync_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (sync lock, status tracking, response caches)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort int    `envconfig:"SERVER_PORT" default:"8080"`

	// Sync behaviour. Quota and cooldown shape the shared provider rate
	// budget; years bounds how much history a default run reconciles.
	SyncQuota          int           `envconfig:"SYNC_QUOTA" default:"28"`
	SyncCooldown       time.Duration `envconfig:"SYNC_COOLDOWN" default:"60s"`
	DefaultYearsToSync int           `envconfig:"DEFAULT_YEARS_TO_SYNC" default:"5"`

	// Retry venue resolution for venues previously stored without
	// coordinates. Off by default: a venue that resolved coordinate-less
	// stays that way until explicitly retried.
	VenueRetryNoCoords bool `envconfig:"VENUE_RETRY_NO_COORDS" default:"false"`

	// Scheduler
	EnableScheduler bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	NightlySyncCron string `envconfig:"NIGHTLY_SYNC_CRON" default:"0 3 * * *"`

	// Caching
	StatsCacheTTL time.Duration `envconfig:"STATS_CACHE_TTL" default:"5m"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.SportsDBAPIKey == "" {
		return fmt.Errorf("SPORTSDB_API_KEY is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.SyncQuota < 1 {
		return fmt.Errorf("SYNC_QUOTA must be at least 1")
	}

	if c.DefaultYearsToSync < 1 || c.DefaultYearsToSync > 20 {
		return fmt.Errorf("DEFAULT_YEARS_TO_SYNC must be between 1 and 20")
	}

	return nil
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
