package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"digestbot/internal/task/engine"
	"digestbot/internal/task/window"
	logx "digestbot/pkg/logx"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recorder counts handler invocations by job name.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) handler(name string, err error) Handler {
	return func(ctx context.Context) error {
		r.mu.Lock()
		r.calls = append(r.calls, name)
		r.mu.Unlock()
		return err
	}
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type panicTrigger struct{}

func (panicTrigger) Next(time.Time) time.Time { panic("broken trigger") }
func (panicTrigger) String() string           { return "broken" }

func defaultGate(t *testing.T) window.Gate {
	t.Helper()
	w, err := window.ParseWindow("11:30", "23:30")
	if err != nil {
		t.Fatalf("ParseWindow: %v", err)
	}
	g, err := window.NewGate(w, ist(t))
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	return g
}

func newTestService(t *testing.T, reg *Registry, clock *fakeClock, cfg Config, opts ...Option) *Service {
	t.Helper()
	exec := engine.New(engine.Config{}, logx.Nop(), nil)
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return New(cfg, reg, defaultGate(t), exec, logx.Nop(), opts...)
}

func TestTickGateClosedDispatchesNothing(t *testing.T) {
	t.Parallel()
	loc := ist(t)
	rec := &recorder{}
	reg := NewRegistry()
	every, _ := Every(time.Minute, loc)
	_ = reg.Register(Job{Name: "often", Trigger: every, Handler: rec.handler("often", nil)})

	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, loc)}
	s := newTestService(t, reg, clock, Config{})
	s.SetLastChecked(clock.Now().Add(-time.Hour))

	rep := s.Tick(context.Background())
	if rep.Active || len(rep.Due) != 0 {
		t.Fatalf("report = %+v, want inactive", rep)
	}
	if len(rec.Calls()) != 0 {
		t.Fatalf("calls = %v, want none", rec.Calls())
	}
	if s.State() != StateIdle {
		t.Fatalf("State = %v, want idle", s.State())
	}
	// last_checked only moves in the active branch.
	if !s.LastChecked().Equal(clock.Now().Add(-time.Hour)) {
		t.Fatalf("LastChecked moved while gate closed")
	}
}

func TestTickFiresOncePerInstant(t *testing.T) {
	t.Parallel()
	loc := ist(t)
	rec := &recorder{}
	reg := NewRegistry()
	_ = reg.Register(Job{Name: "news", Trigger: mustDaily(t, 13, 0, loc), Handler: rec.handler("news", nil)})

	clock := &fakeClock{now: time.Date(2024, 3, 1, 13, 0, 15, 0, loc)}
	s := newTestService(t, reg, clock, Config{})
	s.SetLastChecked(time.Date(2024, 3, 1, 12, 59, 50, 0, loc))

	rep := s.Tick(context.Background())
	if len(rep.Outcomes) != 1 || !rep.Outcomes[0].Ok() {
		t.Fatalf("first tick outcomes = %+v", rep.Outcomes)
	}

	clock.Advance(30 * time.Second)
	rep = s.Tick(context.Background())
	if len(rep.Due) != 0 {
		t.Fatalf("second tick due = %v, want none", rep.Due)
	}
	if got := rec.Calls(); len(got) != 1 {
		t.Fatalf("calls = %v, want one", got)
	}
	if rep.Tick != 2 {
		t.Fatalf("Tick = %d, want 2", rep.Tick)
	}
}

func TestTickIsolatesFailures(t *testing.T) {
	t.Parallel()
	loc := ist(t)
	rec := &recorder{}
	reg := NewRegistry()
	_ = reg.Register(Job{Name: "bad", Trigger: mustDaily(t, 13, 0, loc), Handler: rec.handler("bad", errors.New("api down"))})
	_ = reg.Register(Job{Name: "panics", Trigger: mustDaily(t, 13, 0, loc), Handler: func(context.Context) error { panic("boom") }})
	_ = reg.Register(Job{Name: "good", Trigger: mustDaily(t, 13, 0, loc), Handler: rec.handler("good", nil)})

	clock := &fakeClock{now: time.Date(2024, 3, 1, 13, 0, 10, 0, loc)}
	s := newTestService(t, reg, clock, Config{})
	s.SetLastChecked(clock.Now().Add(-30 * time.Second))

	rep := s.Tick(context.Background())
	if rep.Defect != nil {
		t.Fatalf("Defect = %v", rep.Defect)
	}
	if len(rep.Outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(rep.Outcomes))
	}
	want := []engine.Status{engine.Failed, engine.Failed, engine.Succeeded}
	for i, st := range want {
		if rep.Outcomes[i].Status != st {
			t.Fatalf("outcome[%d] = %v, want %v", i, rep.Outcomes[i].Status, st)
		}
	}
}

func TestTickRecoversDefect(t *testing.T) {
	t.Parallel()
	loc := ist(t)
	reg := NewRegistry()
	_ = reg.Register(Job{Name: "broken", Trigger: panicTrigger{}, Handler: noop})

	clock := &fakeClock{now: time.Date(2024, 3, 1, 13, 0, 0, 0, loc)}
	s := newTestService(t, reg, clock, Config{})
	last := clock.Now().Add(-time.Minute)
	s.SetLastChecked(last)

	rep := s.Tick(context.Background())
	if rep.Defect == nil {
		t.Fatal("Defect = nil, want recovered panic")
	}
	if !s.LastChecked().Equal(last) {
		t.Fatal("LastChecked advanced after defect")
	}
	if s.State() != StateIdle {
		t.Fatalf("State = %v, want idle", s.State())
	}
}

func TestTickLookbackCapsCatchUp(t *testing.T) {
	t.Parallel()
	loc := ist(t)
	reg := NewRegistry()
	// 09:00 is before the window opens.
	_ = reg.Register(Job{Name: "early", Trigger: mustDaily(t, 9, 0, loc), Handler: noop})

	start := time.Date(2024, 3, 1, 8, 0, 0, 0, loc)
	open := time.Date(2024, 3, 1, 11, 30, 0, 0, loc)

	tests := []struct {
		name     string
		lookback time.Duration
		wantDue  int
	}{
		{"unlimited catches up", 0, 1},
		{"short lookback skips", 30 * time.Minute, 0},
		{"long lookback catches up", 3 * time.Hour, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			clock := &fakeClock{now: open}
			s := newTestService(t, reg, clock, Config{Lookback: tt.lookback})
			s.SetLastChecked(start)
			if rep := s.Tick(context.Background()); len(rep.Due) != tt.wantDue {
				t.Fatalf("due = %v, want %d", rep.Due, tt.wantDue)
			}
		})
	}
}

func TestRunStopsAtTopOfTick(t *testing.T) {
	t.Parallel()
	loc := ist(t)
	rec := &recorder{}
	reg := NewRegistry()
	every, _ := Every(time.Minute, loc)
	_ = reg.Register(Job{Name: "minutely", Trigger: every, Handler: rec.handler("minutely", nil)})

	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 5, 0, loc)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reports []TickReport
	sleep := func(ctx context.Context, d time.Duration) bool {
		clock.Advance(d)
		if len(reports) == 4 {
			cancel()
		}
		return ctx.Err() == nil
	}
	s := newTestService(t, reg, clock, Config{PollInterval: 30 * time.Second},
		WithSleep(sleep),
		WithOnTick(func(r TickReport) { reports = append(reports, r) }),
	)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}

	if len(reports) != 4 {
		t.Fatalf("ticks = %d, want 4", len(reports))
	}
	// Ticks at 12:00:05, :35, 12:01:05, :35 cover the 12:01 instant once.
	if got := rec.Calls(); len(got) != 1 {
		t.Fatalf("calls = %v, want one", got)
	}
	if s.State() != StateTerminated {
		t.Fatalf("State = %v, want terminated", s.State())
	}
}

func TestRunDoesNotInterruptInFlightJob(t *testing.T) {
	t.Parallel()
	loc := ist(t)
	reg := NewRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	var jobCtxErr error
	_ = reg.Register(Job{Name: "slow", Trigger: mustDaily(t, 13, 0, loc), Handler: func(jctx context.Context) error {
		cancel()
		jobCtxErr = jctx.Err()
		return nil
	}})

	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 59, 50, 0, loc)}
	ticks := 0
	sleep := func(ctx context.Context, d time.Duration) bool {
		clock.Advance(d)
		return ctx.Err() == nil
	}
	s := newTestService(t, reg, clock, Config{PollInterval: 30 * time.Second},
		WithSleep(sleep),
		WithOnTick(func(TickReport) { ticks++ }),
	)

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run = %v", err)
	}
	if jobCtxErr != nil {
		t.Fatalf("job context err = %v, want nil", jobCtxErr)
	}
	if ticks != 2 {
		t.Fatalf("ticks = %d, want 2", ticks)
	}
}

func TestSnapshot(t *testing.T) {
	t.Parallel()
	loc := ist(t)
	reg := NewRegistry()
	_ = reg.Register(Job{Name: "news", Trigger: mustDaily(t, 13, 0, loc), Handler: noop})

	clock := &fakeClock{now: time.Date(2024, 3, 1, 13, 0, 5, 0, loc)}
	s := newTestService(t, reg, clock, Config{})
	s.SetLastChecked(clock.Now().Add(-10 * time.Second))
	s.Tick(context.Background())

	snap := s.Snapshot()
	if snap.Ticks != 1 || snap.State != "idle" || snap.Timezone != "Asia/Kolkata" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(snap.Schedules) != 1 || !snap.Schedules[0].Next.Equal(time.Date(2024, 3, 2, 13, 0, 0, 0, loc)) {
		t.Fatalf("schedules = %+v", snap.Schedules)
	}
	if len(snap.History) != 1 || snap.History[0].Name != "news" {
		t.Fatalf("history = %+v", snap.History)
	}
	if snap.PollInterval != DefaultPollInterval {
		t.Fatalf("PollInterval = %v, want default", snap.PollInterval)
	}
}

func TestSnapshotBeforeRunLeavesClockAlone(t *testing.T) {
	t.Parallel()
	loc := ist(t)
	reg := NewRegistry()
	_ = reg.Register(Job{Name: "news", Trigger: mustDaily(t, 13, 0, loc), Handler: noop})

	var reads int
	s := New(Config{}, reg, defaultGate(t), engine.New(engine.Config{}, logx.Nop(), nil), logx.Nop(),
		WithClock(func() time.Time {
			reads++
			return time.Date(2024, 3, 1, 12, 0, 0, 0, loc)
		}))

	snap := s.Snapshot()
	if reads != 0 {
		t.Fatalf("Snapshot read the clock %d times", reads)
	}
	if len(snap.Schedules) != 1 || !snap.Schedules[0].Next.IsZero() {
		t.Fatalf("schedules = %+v, want unknown next", snap.Schedules)
	}
	if !snap.LastChecked.IsZero() {
		t.Fatalf("LastChecked = %v", snap.LastChecked)
	}
}
