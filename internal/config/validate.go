package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTournament(); err != nil {
		return err
	}
	if err := c.validatePrefetch(); err != nil {
		return err
	}
	if err := c.validateRemote(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTournament() error {
	t := c.Tournament.AdvancementThreshold
	if math.IsNaN(t) || t <= 0 || t > 1 {
		return fmt.Errorf("tournament.advancement_threshold must be in (0,1], got %v", t)
	}
	if c.Tournament.PrefetchCount < 0 {
		return errors.New("tournament.prefetch_count must be >= 0")
	}
	return nil
}

func (c *Config) validatePrefetch() error {
	if !c.Prefetch.Enabled {
		return nil
	}
	if c.Prefetch.Bytes <= 0 {
		return errors.New("prefetch.bytes must be positive when prefetch.enabled is true")
	}
	if c.Prefetch.Workers <= 0 {
		return errors.New("prefetch.workers must be positive when prefetch.enabled is true")
	}
	return nil
}

func (c *Config) validateRemote() error {
	if c.Remote.Enabled && strings.TrimSpace(c.Remote.Bucket) == "" {
		return errors.New("remote.bucket must be set when remote.enabled is true (or set SAMPLERANK_S3_BUCKET)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}
