package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &Config{}
	cfg.Portal.Username = "meter-user"
	cfg.Portal.Password = "meter-pass"
	cfg.Scrape.MonthsBack = 24
	cfg.API.AutoUpdate = true
	cfg.API.UpdateHour = 7

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "meter-user", loaded.Portal.Username)
	assert.Equal(t, 24, loaded.GetMonthsBack())
	assert.True(t, loaded.API.AutoUpdate)
	assert.Equal(t, 7, loaded.GetUpdateHour())
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}

	assert.Equal(t, "http://www.carmasmartmetering.com/DirectConsumptionDev/", cfg.GetBaseURL())
	assert.Equal(t, 12, cfg.GetMonthsBack())
	assert.True(t, cfg.GetStopOnEmpty())
	assert.Equal(t, 6, cfg.GetPauseInterval())
	assert.Equal(t, 30*time.Second, cfg.GetPauseDuration())
	assert.Equal(t, time.Second, cfg.GetStepDelay())
	assert.Equal(t, 10*time.Second, cfg.GetRetryDelay())
	assert.Equal(t, ":5000", cfg.GetListen())
	assert.Equal(t, 5, cfg.GetUpdateHour())
}

func TestOverrides(t *testing.T) {
	disabled := false
	cfg := &Config{
		Scrape: ScrapeConfig{
			MonthsBack:       6,
			StopOnEmpty:      &disabled,
			PauseInterval:    -1,
			PauseDurationSec: 10,
			StepDelaySec:     2,
			RetryDelaySec:    5,
		},
		API: APIConfig{Listen: ":8080", UpdateHour: 23},
	}

	assert.Equal(t, 6, cfg.GetMonthsBack())
	assert.False(t, cfg.GetStopOnEmpty())
	assert.Equal(t, 0, cfg.GetPauseInterval(), "negative interval disables the long pause")
	assert.Equal(t, 10*time.Second, cfg.GetPauseDuration())
	assert.Equal(t, 2*time.Second, cfg.GetStepDelay())
	assert.Equal(t, 5*time.Second, cfg.GetRetryDelay())
	assert.Equal(t, ":8080", cfg.GetListen())
	assert.Equal(t, 23, cfg.GetUpdateHour())
}
