package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Portal        PortalConfig `yaml:"portal"`
	Scrape        ScrapeConfig `yaml:"scrape,omitempty"`
	API           APIConfig    `yaml:"api,omitempty"`
	MQTT          MQTTConfig   `yaml:"mqtt,omitempty"`
	HomeAssistant HAConfig     `yaml:"home_assistant,omitempty"`
}

// PortalConfig holds credentials and the base URL for the metering portal
type PortalConfig struct {
	BaseURL  string `yaml:"base_url,omitempty"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ScrapeConfig controls how far back collection goes and how it paces itself
type ScrapeConfig struct {
	MonthsBack       int   `yaml:"months_back,omitempty"`            // fallback: 12
	StopOnEmpty      *bool `yaml:"stop_on_empty,omitempty"`          // fallback: true
	PauseInterval    int   `yaml:"pause_interval,omitempty"`         // pause every N months (negative disables)
	PauseDurationSec int   `yaml:"pause_duration_seconds,omitempty"` // fallback: 30
	StepDelaySec     int   `yaml:"step_delay_seconds,omitempty"`     // fallback: 1
	RetryDelaySec    int   `yaml:"retry_delay_seconds,omitempty"`    // fallback: 10
}

// APIConfig holds settings for the read-only query API
type APIConfig struct {
	Listen     string `yaml:"listen,omitempty"`      // fallback: ":5000"
	AutoUpdate bool   `yaml:"auto_update,omitempty"` // run a scrape daily at UpdateHour
	UpdateHour int    `yaml:"update_hour,omitempty"` // fallback: 5 (5 AM local)
}

// MQTTConfig holds MQTT broker settings for Home Assistant publishing
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`       // e.g., "http://yourdomain.local:5050"
	Token    string `yaml:"token"`     // Long-lived access token
	EntityID string `yaml:"entity_id"` // e.g., "sensor.carma_energy_usage"
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetBaseURL returns the portal base URL with the production default
func (c *Config) GetBaseURL() string {
	if c.Portal.BaseURL != "" {
		return c.Portal.BaseURL
	}
	return "http://www.carmasmartmetering.com/DirectConsumptionDev/"
}

// GetMonthsBack returns how many months to collect, defaulting to a year
func (c *Config) GetMonthsBack() int {
	if c.Scrape.MonthsBack <= 0 {
		return 12
	}
	return c.Scrape.MonthsBack
}

// GetStopOnEmpty reports whether collection halts after consecutive empty months
func (c *Config) GetStopOnEmpty() bool {
	if c.Scrape.StopOnEmpty == nil {
		return true
	}
	return *c.Scrape.StopOnEmpty
}

// GetPauseInterval returns how often (in months) to take the long pause.
// A negative value disables the long pause entirely.
func (c *Config) GetPauseInterval() int {
	if c.Scrape.PauseInterval < 0 {
		return 0
	}
	if c.Scrape.PauseInterval == 0 {
		return 6
	}
	return c.Scrape.PauseInterval
}

// GetPauseDuration returns the long pause duration
func (c *Config) GetPauseDuration() time.Duration {
	if c.Scrape.PauseDurationSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Scrape.PauseDurationSec) * time.Second
}

// GetStepDelay returns the delay between ordinary navigation steps
func (c *Config) GetStepDelay() time.Duration {
	if c.Scrape.StepDelaySec <= 0 {
		return time.Second
	}
	return time.Duration(c.Scrape.StepDelaySec) * time.Second
}

// GetRetryDelay returns the wait before retrying a transient server error
func (c *Config) GetRetryDelay() time.Duration {
	if c.Scrape.RetryDelaySec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Scrape.RetryDelaySec) * time.Second
}

// GetListen returns the API listen address
func (c *Config) GetListen() string {
	if c.API.Listen == "" {
		return ":5000"
	}
	return c.API.Listen
}

// GetUpdateHour returns the hour of day for the scheduled daily scrape
func (c *Config) GetUpdateHour() int {
	if c.API.UpdateHour <= 0 || c.API.UpdateHour > 23 {
		return 5
	}
	return c.API.UpdateHour
}
