package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. GEMPROFIT_PORT.
const EnvPrefix = "GEMPROFIT"

type Config struct {
	Port                   int     `yaml:"port" envconfig:"PORT"`
	LogLevel               string  `yaml:"log_level" envconfig:"LOG_LEVEL"`
	BazaarURL              string  `yaml:"bazaar_url" envconfig:"BAZAAR_URL"`
	HTTPTimeoutSeconds     int     `yaml:"http_timeout_seconds" envconfig:"HTTP_TIMEOUT_SECONDS"`
	RefreshIntervalSeconds int     `yaml:"refresh_interval_seconds" envconfig:"REFRESH_INTERVAL_SECONDS"`
	TickIntervalMillis     int     `yaml:"tick_interval_ms" envconfig:"TICK_INTERVAL_MS"`
	IdleTimeoutSeconds     int     `yaml:"idle_timeout_seconds" envconfig:"IDLE_TIMEOUT_SECONDS"`
	UnitFee                float64 `yaml:"unit_fee" envconfig:"UNIT_FEE"`
	ChatFeedURL            string  `yaml:"chat_feed_url" envconfig:"CHAT_FEED_URL"`
	UpdateRepo             string  `yaml:"update_repo" envconfig:"UPDATE_REPO"`
	CheckUpdates           bool    `yaml:"check_updates" envconfig:"CHECK_UPDATES"`
}

func defaults() Config {
	return Config{
		Port:                   8087,
		LogLevel:               "info",
		BazaarURL:              "https://api.hypixel.net/v2/skyblock/bazaar",
		HTTPTimeoutSeconds:     15,
		RefreshIntervalSeconds: 300,
		TickIntervalMillis:     250,
		IdleTimeoutSeconds:     48,
		UnitFee:                0.1,
		ChatFeedURL:            "ws://127.0.0.1:8765/chat",
		UpdateRepo:             "averithefox/ct-gem-profit-calc",
		CheckUpdates:           true,
	}
}

// Load reads path over the defaults, then applies GEMPROFIT_* environment overrides.
// A missing file is not an error; the defaults are used instead.
func Load(path string) (Config, error) {
	cfg := defaults()
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("env overrides: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges and normalizes the log level.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("invalid port")
	}
	if c.BazaarURL == "" {
		return errors.New("bazaar_url required")
	}
	if c.HTTPTimeoutSeconds < 1 {
		return errors.New("http_timeout_seconds must be >=1")
	}
	if c.RefreshIntervalSeconds < 0 {
		return errors.New("refresh_interval_seconds must be >=0 (0 disables)")
	}
	if c.TickIntervalMillis < 10 {
		return errors.New("tick_interval_ms must be >=10")
	}
	if c.IdleTimeoutSeconds < 1 {
		return errors.New("idle_timeout_seconds must be >=1")
	}
	// ticks must be frequent relative to the idle window
	if time.Duration(c.TickIntervalMillis)*time.Millisecond >= c.IdleTimeout() {
		return errors.New("tick_interval_ms must be shorter than the idle timeout")
	}
	if c.UnitFee < 0 {
		return errors.New("unit_fee must be >=0")
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	return nil
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// RefreshInterval is zero when periodic refresh is disabled.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMillis) * time.Millisecond
}

func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

func (c Config) Fee() decimal.Decimal {
	return decimal.NewFromFloat(c.UnitFee)
}

func NewLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(h)
}
