// Package config loads memstore configuration from an optional YAML
// file with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/cortexlab/memstore/internal/cache"
)

// Environment variables recognized by Load.
const (
	EnvDir      = "MEMSTORE_DIR"
	EnvLogLevel = "MEMSTORE_LOG_LEVEL"
)

// CacheConfig holds the cache settings.
type CacheConfig struct {
	Enabled                bool `yaml:"enabled"`
	TTLSeconds             int  `yaml:"ttl_seconds"`
	MaxEntries             int  `yaml:"max_entries"`
	CleanupIntervalSeconds int  `yaml:"cleanup_interval_seconds"`
}

// ToCache converts to the cache package's runtime configuration.
func (c CacheConfig) ToCache() cache.Config {
	return cache.Config{
		Enabled:         c.Enabled,
		TTL:             time.Duration(c.TTLSeconds) * time.Second,
		MaxEntries:      c.MaxEntries,
		CleanupInterval: time.Duration(c.CleanupIntervalSeconds) * time.Second,
	}
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full memstore configuration.
type Config struct {
	Dir   string      `yaml:"dir"`
	Cache CacheConfig `yaml:"cache"`
	Log   LogConfig   `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Dir: filepath.Join(home, ".memstore", "data"),
		Cache: CacheConfig{
			Enabled:                true,
			TTLSeconds:             60,
			MaxEntries:             100,
			CleanupIntervalSeconds: 120,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (if path is empty, ~/.memstore/config.yaml is used when present),
// then environment overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, ".memstore", "config.yaml")
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		if explicit {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if dir := os.Getenv(EnvDir); dir != "" {
		cfg.Dir = dir
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.Log.Level = lvl
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every configuration problem, not just the first.
func (c Config) Validate() error {
	var merr *multierror.Error

	if c.Dir == "" {
		merr = multierror.Append(merr, fmt.Errorf("dir must not be empty"))
	}
	if c.Cache.Enabled {
		if c.Cache.TTLSeconds <= 0 {
			merr = multierror.Append(merr, fmt.Errorf("cache.ttl_seconds must be positive"))
		}
		if c.Cache.MaxEntries <= 0 {
			merr = multierror.Append(merr, fmt.Errorf("cache.max_entries must be positive"))
		}
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		merr = multierror.Append(merr, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return merr.ErrorOrNil()
}

// NewLogger builds a logrus logger from the logging configuration.
// Logs go to stderr so stdout stays machine-readable for CLI output.
func NewLogger(c LogConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if c.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{})
	}
	lvl, err := logrus.ParseLevel(c.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
