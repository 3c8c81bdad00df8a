package engine

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"digestbot/internal/eventbus"
	logx "digestbot/pkg/logx"
)

const defaultHistorySize = 200

// Executor runs one job at a time on the caller's goroutine and turns every
// failure, panics included, into a Failed outcome.
type Executor struct {
	cfg Config
	log logx.Logger
	bus eventbus.Bus
	now func() time.Time

	hmu     sync.Mutex
	history []HistoryItem
}

type Option func(*Executor)

// WithClock overrides time.Now for Started/Duration.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

func New(cfg Config, log logx.Logger, bus eventbus.Bus, opts ...Option) *Executor {
	if log.IsZero() {
		log = logx.Nop()
	}
	if bus == nil {
		bus = eventbus.Nop()
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaultHistorySize
	}
	e := &Executor{cfg: cfg, log: log, bus: bus, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Execute runs fn synchronously and reports how it ended. It never panics and
// never returns an error; the outcome is logged exactly once.
func (e *Executor) Execute(ctx context.Context, name string, fn func(ctx context.Context) error) Outcome {
	out := Outcome{ID: uuid.NewString(), Job: name, Started: e.now()}

	err := e.run(ctx, fn)
	out.Duration = e.now().Sub(out.Started)
	if out.Duration < 0 {
		out.Duration = 0
	}

	fields := []logx.Field{
		logx.String("job", name),
		logx.String("id", out.ID),
		logx.Duration("took", out.Duration),
	}
	if err != nil {
		out.Status = Failed
		out.Reason = err.Error()
		fields = append(fields, logx.String("reason", out.Reason))
		var pe *PanicError
		if errors.As(err, &pe) {
			out.Panicked = true
			e.log.Error("job failed", append(fields, logx.Bool("panic", true), logx.Stack(pe.Stack))...)
		} else {
			e.log.Warn("job failed", fields...)
		}
	} else {
		out.Status = Succeeded
		e.log.Info("job succeeded", fields...)
	}

	e.record(out)
	return out
}

func (e *Executor) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if fn == nil {
		return ErrNilHandler
	}
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return fn(ctx)
}

func (e *Executor) record(out Outcome) {
	item := HistoryItem{ID: out.ID, Name: out.Job, Started: out.Started, Duration: out.Duration, Error: out.Reason}

	e.hmu.Lock()
	e.history = append(e.history, item)
	if len(e.history) > e.cfg.HistorySize {
		e.history = e.history[len(e.history)-e.cfg.HistorySize:]
	}
	e.hmu.Unlock()

	typ := eventbus.JobFinished
	if !out.Ok() {
		typ = eventbus.JobFailed
	}
	e.bus.Publish(eventbus.Event{Type: typ, Time: out.Started.Add(out.Duration), Data: JobEvent{
		ID:       out.ID,
		Name:     out.Job,
		Started:  out.Started,
		Duration: out.Duration,
		Error:    out.Reason,
	}})
}

// History returns the most recent outcomes, oldest first.
func (e *Executor) History() []HistoryItem {
	e.hmu.Lock()
	defer e.hmu.Unlock()
	return append([]HistoryItem(nil), e.history...)
}
