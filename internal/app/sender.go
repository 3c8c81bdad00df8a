package app

import (
	"context"
	"io"
	"os"

	"digestbot/internal/config"
	"digestbot/internal/notifier"
	logx "digestbot/pkg/logx"
)

// consoleOut is where the console driver prints.
var consoleOut io.Writer = os.Stdout

// selectSender builds the configured driver. A driver with missing or
// broken credentials degrades to a Nop so the loop keeps running.
func selectSender(ctx context.Context, cfg *config.Config, s config.Secrets, log logx.Logger) notifier.Sender {
	chatID := cfg.Dispatcher.Telegram.ChatID
	if chatID == 0 {
		chatID = s.TelegramChatID
	}

	driver := cfg.Dispatcher.Driver
	if driver == config.DriverAuto {
		switch {
		case s.HasFCM():
			driver = config.DriverFCM
		case s.HasTelegram() && chatID != 0:
			driver = config.DriverTelegram
		default:
			driver = config.DriverConsole
		}
	}

	switch driver {
	case config.DriverFCM:
		if !s.HasFCM() {
			log.Error("fcm driver selected but FCM_PROJECT_ID is not set; notifications disabled")
			return notifier.Nop{Reason: "fcm: no credentials"}
		}
		f, err := notifier.NewFCM(ctx, notifier.FCMConfig{
			ProjectID:       s.FCMProjectID,
			CredentialsFile: s.FCMCredentialsFile,
			Topic:           cfg.Dispatcher.FCM.Topic,
		})
		if err != nil {
			log.Error("fcm init failed; notifications disabled", logx.Err(err))
			return notifier.Nop{Reason: "fcm: init failed"}
		}
		return f
	case config.DriverTelegram:
		if !s.HasTelegram() || chatID == 0 {
			log.Error("telegram driver selected but TELEGRAM_BOT_TOKEN or chat id is not set; notifications disabled")
			return notifier.Nop{Reason: "telegram: no credentials"}
		}
		t, err := notifier.NewTelegram(notifier.TelegramConfig{
			Token:  s.TelegramBotToken,
			ChatID: chatID,
			APIURL: cfg.Dispatcher.Telegram.APIURL,
		})
		if err != nil {
			log.Error("telegram init failed; notifications disabled", logx.Err(err))
			return notifier.Nop{Reason: "telegram: init failed"}
		}
		return t
	case config.DriverNop:
		return notifier.Nop{}
	default:
		return notifier.NewConsole(consoleOut)
	}
}
