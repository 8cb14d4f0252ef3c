package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads path (when non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies WEAVE_<SECTION>_<FIELD> variables. Empty values
// are ignored; malformed numbers and durations are errors.
func applyEnvOverrides(c *Config) error {
	applyString := func(key string, target *string) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			*target = val
		}
	}
	applyInt := func(key string, target *int) error {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*target = i
		}
		return nil
	}
	applyDuration := func(key string, target *time.Duration) error {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			d, err := time.ParseDuration(val)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*target = d
		}
		return nil
	}

	applyString("WEAVE_LOG_LEVEL", &c.Log.Level)
	applyString("WEAVE_LOG_FORMAT", &c.Log.Format)
	applyString("WEAVE_HTTP_ADDR", &c.HTTP.Addr)
	applyString("WEAVE_STORE_DRIVER", &c.Store.Driver)
	applyString("WEAVE_STORE_PATH", &c.Store.Path)
	applyString("WEAVE_REDIS_ADDR", &c.Store.Redis.Addr)
	applyString("WEAVE_REDIS_PASSWORD", &c.Store.Redis.Password)
	applyString("WEAVE_REDIS_PREFIX", &c.Store.Redis.Prefix)
	applyString("WEAVE_ENCRYPTION_KEY", &c.Store.EncryptionKey)
	if err := applyInt("WEAVE_REDIS_DB", &c.Store.Redis.DB); err != nil {
		return err
	}
	if err := applyDuration("WEAVE_OPTIONS_LATENCY", &c.Options.Latency); err != nil {
		return err
	}
	return nil
}
