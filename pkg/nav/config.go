package nav

import (
	"errors"
	"time"
)

// Config holds the tunable thresholds for turn-by-turn guidance.
type Config struct {
	// TurnNowMeters is the distance at which the upcoming turn is
	// announced imperatively ("... Now.").
	TurnNowMeters float64

	// TurnWarnMeters is the early-warning distance
	// ("In X meters, ...").
	TurnWarnMeters float64

	// StartupGrace suppresses proximity-triggered instructions after
	// route start so the spoken route summary is not talked over.
	StartupGrace time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		TurnNowMeters:  12,
		TurnWarnMeters: 45,
		StartupGrace:   18 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.TurnNowMeters <= 0 {
		return errors.New("nav: turn-now threshold must be positive")
	}
	if c.TurnWarnMeters <= c.TurnNowMeters {
		return errors.New("nav: early-warning threshold must exceed turn-now threshold")
	}
	if c.StartupGrace < 0 {
		return errors.New("nav: startup grace must not be negative")
	}
	return nil
}

// WithThresholds returns a copy with both distance thresholds set.
func (c Config) WithThresholds(nowMeters, warnMeters float64) Config {
	c.TurnNowMeters = nowMeters
	c.TurnWarnMeters = warnMeters
	return c
}

// WithStartupGrace returns a copy with the grace window set.
func (c Config) WithStartupGrace(d time.Duration) Config {
	c.StartupGrace = d
	return c
}
