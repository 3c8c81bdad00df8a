package config

import (
	"fmt"
	"strings"
	"time"
)

// ParseDurationField parses an optional non-negative duration. Empty is zero.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// Durations holds the parsed duration fields of a Config.
type Durations struct {
	PollInterval      time.Duration
	Lookback          time.Duration
	ContentTimeout    time.Duration
	DispatcherTimeout time.Duration
}

// ParseDurations parses every duration field. A zero poll interval is an error.
func (c *Config) ParseDurations() (Durations, error) {
	var (
		d   Durations
		err error
	)
	if d.PollInterval, err = ParseDurationField("scheduler.poll_interval", c.Scheduler.PollInterval); err != nil {
		return d, err
	}
	if d.PollInterval <= 0 {
		return d, fmt.Errorf("scheduler.poll_interval: must be > 0")
	}
	if d.Lookback, err = ParseDurationField("scheduler.lookback", c.Scheduler.Lookback); err != nil {
		return d, err
	}
	if d.ContentTimeout, err = ParseDurationField("content.timeout", c.Content.Timeout); err != nil {
		return d, err
	}
	if d.DispatcherTimeout, err = ParseDurationField("dispatcher.timeout", c.Dispatcher.Timeout); err != nil {
		return d, err
	}
	return d, nil
}
