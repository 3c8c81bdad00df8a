package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"digestbot/internal/eventbus"
	"digestbot/internal/task/engine"
	"digestbot/internal/task/window"
	logx "digestbot/pkg/logx"
)

// Service is the polling loop. Its state is only written by the goroutine
// running Run; Snapshot may be called from anywhere.
type Service struct {
	cfg  Config
	reg  *Registry
	gate window.Gate
	exec Executor
	log  logx.Logger
	bus  eventbus.Bus

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) bool
	onTick func(TickReport)

	mu          sync.Mutex
	running     bool
	state       State
	ticks       uint64
	lastChecked time.Time
}

func New(cfg Config, reg *Registry, gate window.Gate, exec Executor, log logx.Logger, opts ...Option) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Lookback < 0 {
		cfg.Lookback = 0
	}
	if reg == nil {
		reg = NewRegistry()
	}
	s := &Service{
		cfg:   cfg,
		reg:   reg,
		gate:  gate,
		exec:  exec,
		log:   log,
		bus:   eventbus.Nop(),
		now:   time.Now,
		sleep: sleepCtx,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run loops until ctx is canceled. Cancellation is noticed at the top of a
// tick; jobs already dispatching run to completion.
func (s *Service) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	start := s.now()
	// Instants before start are not caught up.
	s.lastChecked = start
	s.state = StateIdle
	s.mu.Unlock()

	s.log.Info("scheduler started",
		logx.Int("jobs", s.reg.Len()),
		logx.String("gate", s.gate.String()),
		logx.Duration("poll", s.cfg.PollInterval),
		logx.Duration("lookback", s.cfg.Lookback),
	)

	for {
		if err := ctx.Err(); err != nil {
			s.setState(StateTerminated)
			s.mu.Lock()
			ticks := s.ticks
			s.running = false
			s.mu.Unlock()
			s.log.Info("scheduler stopped", logx.Uint64("ticks", ticks))
			s.bus.Publish(eventbus.Event{Type: eventbus.LoopStopped, Data: map[string]any{"ticks": ticks}})
			return nil
		}

		rep := s.Tick(ctx)
		if s.onTick != nil {
			s.onTick(rep)
		}

		s.sleep(ctx, s.cfg.PollInterval)
	}
}

// Tick runs one iteration without sleeping. A panic inside the tick is
// logged and reported in TickReport.Defect; last_checked is not advanced.
func (s *Service) Tick(ctx context.Context) (rep TickReport) {
	s.mu.Lock()
	s.ticks++
	rep.Tick = s.ticks
	last := s.lastChecked
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			rep.Defect = fmt.Errorf("tick %d: panic: %v", rep.Tick, r)
			s.log.Error("tick defect", logx.Uint64("tick", rep.Tick), logx.Any("panic", r), logx.Stack(string(debug.Stack())))
			s.setState(StateIdle)
		}
	}()

	now := s.now()
	rep.Now = now

	if !s.gate.IsActive(now) {
		s.setState(StateIdle)
		s.log.Debug("gate closed", logx.Uint64("tick", rep.Tick), logx.Time("now", now), logx.String("gate", s.gate.String()))
		return rep
	}
	rep.Active = true

	from := last
	if s.cfg.Lookback > 0 {
		if floor := now.Add(-s.cfg.Lookback); floor.After(from) {
			from = floor
		}
	}

	due := s.reg.DueJobs(now, from)
	s.log.Debug("gate open", logx.Uint64("tick", rep.Tick), logx.Time("now", now), logx.Time("from", from), logx.Int("due", len(due)))

	// Jobs are not interrupted by shutdown.
	jobCtx := context.WithoutCancel(ctx)
	for _, j := range due {
		rep.Due = append(rep.Due, j.Name)
		s.setState(StateDispatching)
		rep.Outcomes = append(rep.Outcomes, s.execute(jobCtx, j))
	}

	s.mu.Lock()
	if now.After(s.lastChecked) {
		s.lastChecked = now
	}
	s.mu.Unlock()
	s.setState(StateIdle)
	return rep
}

func (s *Service) execute(ctx context.Context, j Job) engine.Outcome {
	if s.exec == nil {
		panic(fmt.Sprintf("scheduler: no executor for job %q", j.Name))
	}
	return s.exec.Execute(ctx, j.Name, j.Handler)
}

func (s *Service) setState(st State) {
	s.mu.Lock()
	prev := s.state
	s.state = st
	s.mu.Unlock()
	if prev != st {
		s.log.Debug("state", logx.String("from", prev.String()), logx.String("to", st.String()))
	}
}

func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Service) LastChecked() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastChecked
}

// SetLastChecked seeds last_checked for manual Ticks. Run resets it to its
// start time.
func (s *Service) SetLastChecked(t time.Time) {
	s.mu.Lock()
	s.lastChecked = t
	s.mu.Unlock()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
