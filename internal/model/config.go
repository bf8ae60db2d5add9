package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// MaxBatchSize is the largest batch the backend will process at once.
	MaxBatchSize = 200

	// MinRefreshIntervalSec is the shortest allowed auto-refresh period.
	MinRefreshIntervalSec = 60

	envPrefix = "INBOX_TRIAGE"
)

// BackendConfig holds connection settings for the triage backend.
type BackendConfig struct {
	// BaseURL is the root URL of the backend (e.g., http://localhost:5000).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds every request to the backend.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// BatchSize is how many emails to ask for per load.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// RefreshIntervalSec enables background reloads when positive.
	RefreshIntervalSec int `mapstructure:"refresh_interval_sec" yaml:"refresh_interval_sec"`
}

// ChatConfig holds settings for the chat panel.
type ChatConfig struct {
	// RedirectDelayMs is how long a redirect reply stays readable
	// before the dashboard opens.
	RedirectDelayMs int `mapstructure:"redirect_delay_ms" yaml:"redirect_delay_ms"`

	// DashboardPath is the navigation target named by redirect replies.
	DashboardPath string `mapstructure:"dashboard_path" yaml:"dashboard_path"`
}

// LogConfig controls the diagnostic log file.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Chat    ChatConfig    `mapstructure:"chat" yaml:"chat"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// Timeout returns the request timeout as a duration.
func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// RefreshInterval returns the auto-refresh period, or zero when disabled.
func (c BackendConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSec) * time.Second
}

// RedirectDelay returns the redirect delay as a duration.
func (c ChatConfig) RedirectDelay() time.Duration {
	return time.Duration(c.RedirectDelayMs) * time.Millisecond
}

// ConfigDir returns ~/.config/inbox-triage.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "inbox-triage")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/inbox-triage/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			BaseURL:    "http://localhost:5000",
			TimeoutSec: 30,
			BatchSize:  20,
		},
		Chat: ChatConfig{
			RedirectDelayMs: 2000,
			DashboardPath:   "/emails",
		},
		Log: LogConfig{
			File:  filepath.Join(ConfigDir(), "inbox-triage.log"),
			Level: "info",
		},
	}
}

// setDefaults registers every key so env overrides resolve through Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.timeout_sec", d.Backend.TimeoutSec)
	v.SetDefault("backend.batch_size", d.Backend.BatchSize)
	v.SetDefault("backend.refresh_interval_sec", d.Backend.RefreshIntervalSec)
	v.SetDefault("chat.redirect_delay_ms", d.Chat.RedirectDelayMs)
	v.SetDefault("chat.dashboard_path", d.Chat.DashboardPath)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.level", d.Log.Level)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults apply. Environment variables
// prefixed with INBOX_TRIAGE_ override both.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Normalize()
	return cfg, nil
}

// Normalize clamps values into the ranges the backend accepts.
func (c *AppConfig) Normalize() {
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	if c.Backend.TimeoutSec <= 0 {
		c.Backend.TimeoutSec = 30
	}
	if c.Backend.BatchSize <= 0 {
		c.Backend.BatchSize = 20
	}
	if c.Backend.BatchSize > MaxBatchSize {
		c.Backend.BatchSize = MaxBatchSize
	}
	if c.Backend.RefreshIntervalSec < 0 {
		c.Backend.RefreshIntervalSec = 0
	}
	if c.Backend.RefreshIntervalSec > 0 &&
		c.Backend.RefreshIntervalSec < MinRefreshIntervalSec {
		c.Backend.RefreshIntervalSec = MinRefreshIntervalSec
	}
	if c.Chat.RedirectDelayMs <= 0 {
		c.Chat.RedirectDelayMs = 2000
	}
	if c.Chat.DashboardPath == "" {
		c.Chat.DashboardPath = "/emails"
	}
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("chat", cfg.Chat)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
