package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrEmptyTitle = errors.New("notification title required")

// Payload is one notification. Body may be an error placeholder.
type Payload struct {
	Title string
	Body  string
	// Image is an optional public image URL.
	Image string
}

func (p Payload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Sender is a delivery driver.
type Sender interface {
	Send(ctx context.Context, p Payload) error
	Name() string
}

// DeliveryError is a recoverable send failure.
type DeliveryError struct {
	Driver string
	Title  string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %q via %s: %v", e.Title, e.Driver, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Config controls the dispatcher.
type Config struct {
	// RatePerSec caps sends per second. <=0 means 3.
	RatePerSec int
	// Timeout bounds one send. 0 means none.
	Timeout     time.Duration
	HistorySize int
}

type HistoryItem struct {
	At     time.Time
	Driver string
	Title  string
	Error  string
}

// NotificationEvent is emitted on the event bus after each delivery attempt.
// Keep it small; Data may be logged/serialized by subscribers.
type NotificationEvent struct {
	Driver string    `json:"driver"`
	Title  string    `json:"title"`
	At     time.Time `json:"at"`
	Error  string    `json:"error,omitempty"`
}
