package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrMissingCredential is returned when the content provider key is unset.
var ErrMissingCredential = errors.New("missing credential")

// Secrets holds credentials read from the environment.
type Secrets struct {
	GeminiAPIKey       string `envconfig:"GEMINI_API_KEY"`
	FCMProjectID       string `envconfig:"FCM_PROJECT_ID"`
	FCMCredentialsFile string `envconfig:"FCM_CREDENTIALS_FILE"`
	TelegramBotToken   string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID     int64  `envconfig:"TELEGRAM_CHAT_ID"`
	DebugToken         string `envconfig:"DEBUG_TOKEN"`

	// ConfigPath locates the optional config file.
	ConfigPath string `envconfig:"DIGEST_CONFIG" default:"./config.yaml"`
}

// LoadEnv loads dotenv files (missing files are skipped; existing variables
// win) and then reads Secrets. It fails with ErrMissingCredential when
// GEMINI_API_KEY is unset.
func LoadEnv(dotenv ...string) (Secrets, error) {
	for _, p := range dotenv {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Secrets{}, fmt.Errorf("load %s: %w", p, err)
		}
	}

	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return s, err
	}
	if strings.TrimSpace(s.GeminiAPIKey) == "" {
		return s, fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrMissingCredential)
	}
	return s, nil
}

func (s Secrets) HasFCM() bool { return strings.TrimSpace(s.FCMProjectID) != "" }

func (s Secrets) HasTelegram() bool { return strings.TrimSpace(s.TelegramBotToken) != "" }
