// Package config loads the weave server and CLI settings from a YAML file,
// with WEAVE_* environment variables taking precedence.
package config

import (
	"fmt"
	"time"

	"github.com/aretw0/weave/internal/logging"
)

// Config is the top-level configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	HTTP    HTTPConfig    `yaml:"http"`
	Store   StoreConfig   `yaml:"store"`
	Options OptionsConfig `yaml:"options"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// HTTPConfig contains the API server settings.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// StoreConfig selects where custom variables are kept.
type StoreConfig struct {
	// Driver is one of memory, file, redis.
	Driver string `yaml:"driver"`

	// Path is the JSON file used by the file driver.
	Path string `yaml:"path"`

	Redis RedisConfig `yaml:"redis"`

	// EncryptionKey, when set, encrypts variable values at rest.
	// 32 bytes, hex or base64 encoded.
	EncryptionKey string `yaml:"encryption_key"`

	// Redact lists name patterns whose values are masked before saving.
	Redact []string `yaml:"redact"`
}

// RedisConfig contains the redis driver settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// OptionsConfig tunes the built-in options provider.
type OptionsConfig struct {
	// Latency simulates a slow backend for assignee lists.
	Latency time.Duration `yaml:"latency"`

	// CacheTTL expires cached option lists. Zero never expires.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// DefaultConfig returns a Config with all default values set.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: string(logging.FormatText),
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Driver: DriverMemory,
			Path:   ".weave/variables.json",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "weave:",
			},
		},
		Options: OptionsConfig{
			Latency: 300 * time.Millisecond,
		},
	}
}

// Validate checks the configuration for valid values.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch logging.Format(c.Log.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("log.format must be one of: text, json; got %q", c.Log.Format)
	}

	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr cannot be empty")
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path cannot be empty for the file driver")
		}
	case DriverRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr cannot be empty for the redis driver")
		}
		if c.Store.Redis.DB < 0 {
			return fmt.Errorf("store.redis.db must be >= 0; got %d", c.Store.Redis.DB)
		}
	default:
		return fmt.Errorf("store.driver must be one of: memory, file, redis; got %q", c.Store.Driver)
	}

	if c.Options.Latency < 0 {
		return fmt.Errorf("options.latency must be >= 0; got %s", c.Options.Latency)
	}
	if c.Options.CacheTTL < 0 {
		return fmt.Errorf("options.cache_ttl must be >= 0; got %s", c.Options.CacheTTL)
	}
	return nil
}
