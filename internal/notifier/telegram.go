package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Telegram captions are capped at 1024 characters and messages at 4096.
const (
	telegramMaxCaption = 1024
	telegramMaxText    = 4096
)

type TelegramConfig struct {
	Token  string
	ChatID int64
	// APIURL overrides the Bot API endpoint. Empty means the public API.
	APIURL string
}

// Telegram posts notifications to one chat.
type Telegram struct {
	bot  *tele.Bot
	chat *tele.Chat
}

func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram: bot token required")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram: chat id required")
	}
	// Offline: the bot only sends, so skip the getMe round trip at startup.
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token, URL: cfg.APIURL, Offline: true})
	if err != nil {
		return nil, fmt.Errorf("telegram: new bot: %w", err)
	}
	return &Telegram{bot: b, chat: &tele.Chat{ID: cfg.ChatID}}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, p Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := telegramText(p)
	if p.Image != "" {
		photo := &tele.Photo{File: tele.FromURL(p.Image), Caption: truncate(text, telegramMaxCaption)}
		_, err := t.bot.Send(t.chat, photo)
		return err
	}
	_, err := t.bot.Send(t.chat, truncate(text, telegramMaxText))
	return err
}

func telegramText(p Payload) string {
	body := strings.TrimSpace(p.Body)
	if body == "" {
		return p.Title
	}
	return p.Title + "\n\n" + body
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
