package config

// Config is the file configuration. Secrets never live here; see Secrets.
//
// All durations are Go duration strings (e.g. "30s", "2m").
type Config struct {
	Logging    LoggingConfig    `json:"logging"`
	Scheduler  SchedulerConfig  `json:"scheduler"`
	Content    ContentConfig    `json:"content"`
	Dispatcher DispatcherConfig `json:"dispatcher"`
	Debug      DebugConfig      `json:"debug"`

	// Jobs replaces the built-in schedule when non-empty.
	Jobs []JobConfig `json:"jobs,omitempty"`
}

type LoggingConfig struct {
	Level   string            `json:"level"`
	Console bool              `json:"console"`
	File    LoggingFileConfig `json:"file"`
}

type LoggingFileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// SchedulerConfig controls the polling loop and active-hours gate.
//
// Defaults (when fields are omitted/zero):
//   - timezone: "Asia/Kolkata"
//   - active_window: 11:30 to 23:30, both ends inclusive
//   - poll_interval: "30s"
//   - lookback: "0s" (no cap on catch-up)
//   - history_size: 200
type SchedulerConfig struct {
	Timezone     string             `json:"timezone"`
	ActiveWindow ActiveWindowConfig `json:"active_window"`
	PollInterval string             `json:"poll_interval"`
	Lookback     string             `json:"lookback,omitempty"`
	HistorySize  int                `json:"history_size,omitempty"`
}

type ActiveWindowConfig struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ContentConfig struct {
	Model string `json:"model"`
	// RequestsPerMinute throttles provider calls. 0 means DefaultRPM and
	// RPMUnlimited (-1) turns throttling off.
	RequestsPerMinute int `json:"requests_per_minute,omitempty"`
	// Timeout bounds one generation call. Empty or "0s" disables it.
	Timeout string `json:"timeout,omitempty"`
}

// Dispatcher drivers.
const (
	DriverAuto     = "auto"
	DriverFCM      = "fcm"
	DriverTelegram = "telegram"
	DriverConsole  = "console"
	DriverNop      = "nop"
)

// DispatcherConfig selects and tunes the notification driver.
//
// driver "auto" picks fcm when FCM_PROJECT_ID is set, then telegram when a
// bot token and chat id are set, and falls back to console.
type DispatcherConfig struct {
	Driver     string         `json:"driver"`
	RatePerSec int            `json:"rate_per_sec,omitempty"`
	Timeout    string         `json:"timeout,omitempty"`
	FCM        FCMConfig      `json:"fcm"`
	Telegram   TelegramConfig `json:"telegram"`
}

type FCMConfig struct {
	Topic string `json:"topic,omitempty"`
}

type TelegramConfig struct {
	// ChatID may also come from TELEGRAM_CHAT_ID.
	ChatID int64  `json:"chat_id,omitempty"`
	APIURL string `json:"api_url,omitempty"`
}

// DebugConfig enables the operator HTTP endpoint (/healthz, /status,
// /debug/pprof/). A non-loopback addr requires DEBUG_TOKEN.
type DebugConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"`
}

// JobConfig declares one scheduled job.
//
// kind is one of learn, news, meme. schedule accepts "HH:MM" (daily),
// "every:<duration>" (anchored at local midnight) or a cron expression.
type JobConfig struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Schedule string   `json:"schedule"`
	Topics   []string `json:"topics,omitempty"`
	Title    string   `json:"title,omitempty"`
	Prompt   string   `json:"prompt,omitempty"`
	Image    string   `json:"image,omitempty"`
}
