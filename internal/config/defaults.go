package config

import (
	"strings"

	"digestbot/internal/content"
	"digestbot/internal/digest"
	"digestbot/internal/task/window"
	logx "digestbot/pkg/logx"
)

const (
	DefaultPath         = "./config.yaml"
	DefaultPollInterval = "30s"
	DefaultWindowStart  = "11:30"
	DefaultWindowEnd    = "23:30"
	DefaultHistorySize  = 200
	DefaultRatePerSec   = 3
	DefaultRPM          = 15
	// RPMUnlimited disables the content provider rate limit.
	RPMUnlimited = -1
	DefaultDebugAddr    = "127.0.0.1:6060"
)

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			File:    LoggingFileConfig{Enabled: true, Path: logx.DefaultFilePath},
		},
		Dispatcher: DispatcherConfig{Driver: DriverAuto},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero fields in place. Logging switches are left alone
// so a file can turn sinks off.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.File.Enabled && strings.TrimSpace(cfg.Logging.File.Path) == "" {
		cfg.Logging.File.Path = logx.DefaultFilePath
	}

	s := &cfg.Scheduler
	if strings.TrimSpace(s.Timezone) == "" {
		s.Timezone = window.DefaultTimezone
	}
	if strings.TrimSpace(s.ActiveWindow.Start) == "" {
		s.ActiveWindow.Start = DefaultWindowStart
	}
	if strings.TrimSpace(s.ActiveWindow.End) == "" {
		s.ActiveWindow.End = DefaultWindowEnd
	}
	if strings.TrimSpace(s.PollInterval) == "" {
		s.PollInterval = DefaultPollInterval
	}
	if s.HistorySize <= 0 {
		s.HistorySize = DefaultHistorySize
	}

	if strings.TrimSpace(cfg.Content.Model) == "" {
		cfg.Content.Model = content.DefaultModel
	}
	if cfg.Content.RequestsPerMinute == 0 {
		cfg.Content.RequestsPerMinute = DefaultRPM
	}

	if strings.TrimSpace(cfg.Dispatcher.Driver) == "" {
		cfg.Dispatcher.Driver = DriverAuto
	}
	cfg.Dispatcher.Driver = strings.ToLower(strings.TrimSpace(cfg.Dispatcher.Driver))
	if cfg.Dispatcher.RatePerSec <= 0 {
		cfg.Dispatcher.RatePerSec = DefaultRatePerSec
	}

	if len(cfg.Jobs) == 0 {
		for _, sp := range digest.DefaultSpecs() {
			cfg.Jobs = append(cfg.Jobs, JobConfig{
				Name:     sp.Name,
				Kind:     string(sp.Kind),
				Schedule: sp.Trigger,
				Topics:   sp.Topics,
			})
		}
	}
}

// DebugAddr is the debug server address with its default applied.
func (c *Config) DebugAddr() string {
	if a := strings.TrimSpace(c.Debug.Addr); a != "" {
		return a
	}
	return DefaultDebugAddr
}

// DigestSpecs converts job entries for digest.Builder.
func (c *Config) DigestSpecs() []digest.Spec {
	out := make([]digest.Spec, 0, len(c.Jobs))
	for _, j := range c.Jobs {
		out = append(out, digest.Spec{
			Name:    j.Name,
			Kind:    digest.Kind(strings.ToLower(strings.TrimSpace(j.Kind))),
			Trigger: j.Schedule,
			Topics:  append([]string(nil), j.Topics...),
			Title:   j.Title,
			Prompt:  j.Prompt,
			Image:   j.Image,
		})
	}
	return out
}

// Logx converts the logging section for logx.Service.
func (c LoggingConfig) Logx() logx.Config {
	return logx.Config{
		Level:   c.Level,
		Console: c.Console,
		File:    logx.FileConfig{Enabled: c.File.Enabled, Path: c.File.Path},
	}
}
