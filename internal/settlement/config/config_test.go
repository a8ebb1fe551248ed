package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, "*/5 * * * *", cfg.Scheduler.CronExpression)
	assert.Equal(t, 5, cfg.Worker.MaxConcurrentSignals)
	assert.Equal(t, 10*time.Second, cfg.Worker.QuoteTimeout)
	assert.Equal(t, time.Hour, cfg.Worker.DataQualityWarnInterval)
	assert.Equal(t, "https://finnhub.io/api/v1", cfg.Finnhub.BaseURL)
	assert.Equal(t, 30, cfg.Finnhub.MaxRequestPerMinute)
}

func TestValidateRequiresFinnhubKey(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finnhub.api_key")
}

func TestValidateRejectsMalformedFirebaseCredentials(t *testing.T) {
	cfg := &Config{Finnhub: Finnhub{APIKey: "key"}}
	cfg.applyDefaults()
	cfg.Firebase.ServiceAccountJSON = `{\"type\":\"service_account\"}`

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "firebase.service_account_json")
}

func TestValidateRequiresTelegramTokenWhenEnabled(t *testing.T) {
	cfg := &Config{Finnhub: Finnhub{APIKey: "key"}, Telegram: Telegram{Enabled: true}}
	cfg.applyDefaults()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram.bot_token")
}

func TestValidateAcceptsMinimalConfig(t *testing.T) {
	cfg := &Config{Finnhub: Finnhub{APIKey: "key"}}
	cfg.applyDefaults()

	assert.NoError(t, cfg.Validate())
}
