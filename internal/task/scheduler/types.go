package scheduler

import (
	"context"
	"errors"
	"time"

	"digestbot/internal/eventbus"
	"digestbot/internal/task/engine"
)

const DefaultPollInterval = 30 * time.Second

var ErrAlreadyRunning = errors.New("scheduler already running")

// Config controls the polling loop.
type Config struct {
	// PollInterval is the sleep between ticks. <=0 means DefaultPollInterval.
	PollInterval time.Duration

	// Lookback caps how far behind now a tick looks for due-instants.
	// 0 means no cap: an instant missed while the gate was closed still
	// fires once on the first active tick.
	Lookback time.Duration
}

// Executor runs one job and reports its outcome. *engine.Executor implements it.
type Executor interface {
	Execute(ctx context.Context, name string, fn func(ctx context.Context) error) engine.Outcome
}

// State is the loop's coarse state.
type State int

const (
	StateIdle State = iota
	StateDispatching
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// TickReport describes what one tick did.
type TickReport struct {
	Tick     uint64
	Now      time.Time
	Active   bool
	Due      []string
	Outcomes []engine.Outcome
	// Defect is set when a panic escaped the tick body.
	Defect error
}

type ScheduleInfo struct {
	Name    string    `json:"name"`
	Trigger string    `json:"trigger"`
	Next    time.Time `json:"next"`
}

type Snapshot struct {
	State        string               `json:"state"`
	Ticks        uint64               `json:"ticks"`
	LastChecked  time.Time            `json:"last_checked"`
	Gate         string               `json:"gate"`
	Timezone     string               `json:"timezone"`
	PollInterval time.Duration        `json:"poll_interval"`
	Lookback     time.Duration        `json:"lookback"`
	Schedules    []ScheduleInfo       `json:"schedules"`
	History      []engine.HistoryItem `json:"history"`
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSleep overrides the wait between ticks. sleep returns false when ctx
// ended before d elapsed.
func WithSleep(sleep func(ctx context.Context, d time.Duration) bool) Option {
	return func(s *Service) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithOnTick registers a hook called after every tick, on the loop goroutine.
func WithOnTick(fn func(TickReport)) Option {
	return func(s *Service) { s.onTick = fn }
}

func WithEventBus(bus eventbus.Bus) Option {
	return func(s *Service) {
		if bus != nil {
			s.bus = bus
		}
	}
}
