package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
	Browser  BrowserConfig  `toml:"browser"`
	Harvest  HarvestConfig  `toml:"harvest"`
}

// APIConfig contains the remote gallery listing API settings.
type APIConfig struct {
	BaseURL  string `toml:"base_url"`
	Key      string `toml:"key"`
	PageSize int    `toml:"page_size"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// BrowserConfig contains the headless rendering session settings used for tag extraction.
type BrowserConfig struct {
	Headless          bool   `toml:"headless"`
	MaxAttempts       int    `toml:"max_attempts"`
	MaxSessionRetries int    `toml:"max_session_retries"`
	RetryDelaySeconds int    `toml:"retry_delay_seconds"`
	WaitTimeoutSecs   int    `toml:"wait_timeout_seconds"`
	TagSelector       string `toml:"tag_selector"`
}

// RetryDelay returns the fixed pause between extraction or session-init attempts.
func (b BrowserConfig) RetryDelay() time.Duration {
	return time.Duration(b.RetryDelaySeconds) * time.Second
}

// WaitTimeout returns the bounded wait for the primary content region to appear.
func (b BrowserConfig) WaitTimeout() time.Duration {
	return time.Duration(b.WaitTimeoutSecs) * time.Second
}

// HarvestConfig contains the ingestion loop thresholds and pacing settings.
type HarvestConfig struct {
	RefreshIntervalSecs  int     `toml:"refresh_interval_seconds"`
	TimeThresholdSecs    int     `toml:"time_threshold_seconds"`
	ProcessThreshold     int     `toml:"process_threshold"`
	PauseDurationSecs    int     `toml:"pause_duration_seconds"`
	HistorySize          int     `toml:"history_size"`
	DuplicateStreakLimit int     `toml:"duplicate_streak_limit"`
	SimilarityThreshold  float64 `toml:"similarity_threshold"`
}

// RefreshInterval returns the minimum duration of one page cycle.
func (h HarvestConfig) RefreshInterval() time.Duration {
	return time.Duration(h.RefreshIntervalSecs) * time.Second
}

// TimeThreshold returns the recency-suppression window per username.
func (h HarvestConfig) TimeThreshold() time.Duration {
	return time.Duration(h.TimeThresholdSecs) * time.Second
}

// PauseDuration returns the cool-down applied once the processing quota is reached.
func (h HarvestConfig) PauseDuration() time.Duration {
	return time.Duration(h.PauseDurationSecs) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
