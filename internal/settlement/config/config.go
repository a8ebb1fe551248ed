package config

import (
	"fmt"
	"time"

	"golang-signal-settler/pkg/config"
	"golang-signal-settler/pkg/push"
)

// Scheduler holds the cycle trigger configuration. An immediate cycle runs
// at startup unless SkipInitialRun is set.
type Scheduler struct {
	CronExpression string `mapstructure:"cron_expression"`
	SkipInitialRun bool   `mapstructure:"skip_initial_run"`
}

// Worker holds settlement cycle tuning.
type Worker struct {
	MaxConcurrentSignals int           `mapstructure:"max_concurrent_signals"`
	QuoteTimeout         time.Duration `mapstructure:"quote_timeout"`
	// DataQualityWarnInterval bounds how often a non-evaluable signal
	// (zero target or stop) is warned about.
	DataQualityWarnInterval time.Duration `mapstructure:"data_quality_warn_interval"`
}

// Finnhub holds the configuration for the Finnhub quote API.
type Finnhub struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Firebase holds the push notification backend configuration.
type Firebase struct {
	ServiceAccountJSON string `mapstructure:"service_account_json"`
}

// Telegram holds configuration for the ops notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the settlement service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
	Worker    Worker          `mapstructure:"worker"`
	Finnhub   Finnhub         `mapstructure:"finnhub"`
	Firebase  Firebase        `mapstructure:"firebase"`
	Telegram  Telegram        `mapstructure:"telegram"`
}

// Load loads the settlement service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scheduler.CronExpression == "" {
		c.Scheduler.CronExpression = "*/5 * * * *"
	}
	if c.Worker.MaxConcurrentSignals <= 0 {
		c.Worker.MaxConcurrentSignals = 5
	}
	if c.Worker.QuoteTimeout <= 0 {
		c.Worker.QuoteTimeout = 10 * time.Second
	}
	if c.Worker.DataQualityWarnInterval <= 0 {
		c.Worker.DataQualityWarnInterval = time.Hour
	}
	if c.Finnhub.BaseURL == "" {
		c.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	}
	if c.Finnhub.MaxRequestPerMinute <= 0 {
		c.Finnhub.MaxRequestPerMinute = 30
	}
}

// Validate fails fast on configuration the service cannot run with. In
// particular a malformed Firebase service account is rejected at startup
// instead of surfacing as notification failures at runtime.
func (c *Config) Validate() error {
	if c.Finnhub.APIKey == "" {
		return fmt.Errorf("finnhub.api_key is required")
	}
	if c.Firebase.ServiceAccountJSON != "" {
		if err := push.ValidateCredentials(c.Firebase.ServiceAccountJSON); err != nil {
			return fmt.Errorf("firebase.service_account_json: %w", err)
		}
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
	}
	return nil
}
