package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlayback(); err != nil {
		return err
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if c.Playback.RepeatRate <= 0 || c.Playback.RepeatRate > 1 {
		return errors.New("playback.repeat_rate must be greater than 0 and at most 1")
	}
	if c.Playback.SampleIntervalMS <= 0 {
		return errors.New("playback.sample_interval_ms must be positive")
	}
	if c.Playback.RepeatGuardMS < 0 {
		return errors.New("playback.repeat_guard_ms must not be negative")
	}
	if c.Playback.RepeatGuardMS >= c.Playback.SampleIntervalMS*10 {
		return fmt.Errorf("playback.repeat_guard_ms must be below %d (ten sample intervals)", c.Playback.SampleIntervalMS*10)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
