package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/ceo-dashboard/internal/finance"
)

// Config holds runtime configuration for the dashboard binaries.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"20s"`
	AppLocale         string        `envconfig:"APP_LOCALE" default:"en"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	FeedBaseURL     string        `envconfig:"FEED_BASE_URL" default:"http://127.0.0.1:8081"`
	FeedTimeout     time.Duration `envconfig:"FEED_TIMEOUT" default:"10s"`
	FeedStatic      bool          `envconfig:"FEED_STATIC" default:"false"`
	ZoneAliasesFile string        `envconfig:"ZONE_ALIASES_FILE"`
	ZoneRows        string        `envconfig:"ZONE_ROWS" default:"all"`

	RedisAddr string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	PGDSN string `envconfig:"PG_DSN"`

	GlobalRateLimit   int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	ExportRateLimit   int    `envconfig:"EXPORT_RATE_LIMIT_PER_MINUTE" default:"10"`
	RefreshCron       string `envconfig:"REFRESH_CRON" default:"*/30 * * * *"`
	WorkerConcurrency int    `envconfig:"WORKER_CONCURRENCY" default:"5"`
}

// LoadConfig reads an optional .env file, then configuration from environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if !cfg.FeedStatic && strings.TrimSpace(cfg.FeedBaseURL) == "" {
		return nil, errors.New("feed base url must be provided unless FEED_STATIC is set")
	}
	if _, ok := finance.ParseZoneRowPolicy(cfg.ZoneRows); !ok {
		return nil, fmt.Errorf("invalid ZONE_ROWS %q", cfg.ZoneRows)
	}
	if _, err := language.Parse(cfg.AppLocale); err != nil {
		return nil, fmt.Errorf("invalid APP_LOCALE %q: %w", cfg.AppLocale, err)
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// ZoneRowPolicy returns the configured default zone row policy.
func (c *Config) ZoneRowPolicy() finance.ZoneRowPolicy {
	if c == nil {
		return finance.ZoneRowsAll
	}
	policy, _ := finance.ParseZoneRowPolicy(c.ZoneRows)
	return policy
}

// Locale returns the configured export locale, English when unset.
func (c *Config) Locale() language.Tag {
	if c == nil {
		return language.English
	}
	tag, err := language.Parse(c.AppLocale)
	if err != nil {
		return language.English
	}
	return tag
}
