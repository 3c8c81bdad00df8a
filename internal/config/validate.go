package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"digestbot/internal/digest"
	"digestbot/internal/task/scheduler"
	"digestbot/internal/task/window"
	logx "digestbot/pkg/logx"
)

// Validate checks a defaulted config and reports every problem found.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if _, ok := logx.ParseLevel(cfg.Logging.Level); !ok {
		add(fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level))
	}

	_, err := cfg.ParseDurations()
	add(err)

	loc, err := time.LoadLocation(strings.TrimSpace(cfg.Scheduler.Timezone))
	if err != nil {
		add(fmt.Errorf("scheduler.timezone: %w", err))
		loc = time.UTC
	}
	if _, err := window.ParseWindow(cfg.Scheduler.ActiveWindow.Start, cfg.Scheduler.ActiveWindow.End); err != nil {
		add(fmt.Errorf("scheduler.active_window: %w", err))
	}

	switch cfg.Dispatcher.Driver {
	case DriverAuto, DriverFCM, DriverTelegram, DriverConsole, DriverNop:
	default:
		add(fmt.Errorf("dispatcher.driver: unknown driver %q", cfg.Dispatcher.Driver))
	}
	if cfg.Debug.Enabled {
		if _, _, err := net.SplitHostPort(cfg.DebugAddr()); err != nil {
			add(fmt.Errorf("debug.addr: %w", err))
		}
	}
	if cfg.Content.RequestsPerMinute < RPMUnlimited {
		add(fmt.Errorf("content.requests_per_minute: must be >= 0, or %d for no limit", RPMUnlimited))
	}

	seen := map[string]bool{}
	for i, j := range cfg.Jobs {
		name := strings.TrimSpace(j.Name)
		if name == "" {
			add(fmt.Errorf("jobs[%d].name: required", i))
		} else if seen[name] {
			add(fmt.Errorf("jobs[%d].name: %w: %q", i, scheduler.ErrDuplicateJob, name))
		}
		seen[name] = true

		kind := digest.Kind(strings.ToLower(strings.TrimSpace(j.Kind)))
		if !kind.Valid() {
			add(fmt.Errorf("jobs[%d].kind: unknown kind %q", i, j.Kind))
		}
		if kind == digest.KindLearn && len(j.Topics) == 0 {
			add(fmt.Errorf("jobs[%d].topics: learn job needs topics", i))
		}
		if _, err := scheduler.ParseTrigger(j.Schedule, loc); err != nil {
			add(fmt.Errorf("jobs[%d].schedule: %w", i, err))
		}
	}

	return errors.Join(errs...)
}
