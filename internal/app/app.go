package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"digestbot/internal/config"
	"digestbot/internal/content"
	"digestbot/internal/digest"
	"digestbot/internal/eventbus"
	"digestbot/internal/notifier"
	"digestbot/internal/observability/debughttp"
	"digestbot/internal/runtime/sdnotify"
	"digestbot/internal/runtime/supervisor"
	"digestbot/internal/task/engine"
	"digestbot/internal/task/scheduler"
	"digestbot/internal/task/window"
	logx "digestbot/pkg/logx"
)

type App struct {
	cfgm *config.ConfigManager
	cfg  *config.Config

	log  logx.Logger
	logs *logx.Service
	bus  eventbus.Bus
	sd   *sdnotify.Notifier

	disp  *notifier.Dispatcher
	exec  *engine.Executor
	sched *scheduler.Service
	debug *debughttp.Server

	gateDesc string
	poll     time.Duration
	watch    bool
}

// Option customizes New. Tests use it to swap external services.
type Option func(*options)

type options struct {
	provider  content.Provider
	sender    notifier.Sender
	schedOpts []scheduler.Option
	watch     bool
}

// WithProvider replaces the Gemini provider.
func WithProvider(p content.Provider) Option { return func(o *options) { o.provider = p } }

// WithSender replaces the driver chosen from config.
func WithSender(s notifier.Sender) Option { return func(o *options) { o.sender = s } }

// WithSchedulerOptions passes extra options to the polling loop.
func WithSchedulerOptions(opts ...scheduler.Option) Option {
	return func(o *options) { o.schedOpts = append(o.schedOpts, opts...) }
}

// WithConfigWatch toggles the config file watcher. It is on by default.
func WithConfigWatch(enabled bool) Option { return func(o *options) { o.watch = enabled } }

// New wires every component from a loaded config. Nothing runs until Run.
func New(ctx context.Context, cfgm *config.ConfigManager, secrets config.Secrets, opts ...Option) (*App, error) {
	o := options{watch: true}
	for _, fn := range opts {
		fn(&o)
	}

	cfg := cfgm.Get()
	if cfg == nil {
		return nil, errors.New("config not loaded")
	}
	d, err := cfg.ParseDurations()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(cfg.Logging.Logx())
	cfgm.SetLogger(log.With(logx.String("comp", "config")))
	bus := eventbus.New()

	provider := o.provider
	if provider == nil {
		g, err := content.NewGemini(ctx, content.GeminiConfig{
			APIKey:            secrets.GeminiAPIKey,
			Model:             cfg.Content.Model,
			RequestsPerMinute: cfg.Content.RequestsPerMinute,
			Timeout:           d.ContentTimeout,
		})
		if err != nil {
			logSvc.Close()
			return nil, err
		}
		provider = g
		log.Info("content provider ready", logx.String("model", g.Model()))
	}
	gen := content.NewGenerator(provider, log.With(logx.String("comp", "content")))

	sender := o.sender
	if sender == nil {
		sender = selectSender(ctx, cfg, secrets, log.With(logx.String("comp", "notifier")))
	}
	disp := notifier.New(notifier.Config{
		RatePerSec:  cfg.Dispatcher.RatePerSec,
		Timeout:     d.DispatcherTimeout,
		HistorySize: cfg.Scheduler.HistorySize,
	}, sender, log.With(logx.String("comp", "notifier")), bus)
	log.Info("notification driver selected", logx.String("driver", disp.Driver()))

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logSvc.Close()
		return nil, fmt.Errorf("scheduler.timezone: %w", err)
	}
	win, err := window.ParseWindow(cfg.Scheduler.ActiveWindow.Start, cfg.Scheduler.ActiveWindow.End)
	if err != nil {
		logSvc.Close()
		return nil, fmt.Errorf("scheduler.active_window: %w", err)
	}
	gate, err := window.NewGate(win, loc)
	if err != nil {
		logSvc.Close()
		return nil, err
	}

	jobs, err := digest.NewBuilder(gen, disp, loc, log.With(logx.String("comp", "digest"))).Build(cfg.DigestSpecs())
	if err != nil {
		logSvc.Close()
		return nil, err
	}
	reg := scheduler.NewRegistry()
	for _, j := range jobs {
		if err := reg.Register(j); err != nil {
			logSvc.Close()
			return nil, err
		}
	}

	exec := engine.New(engine.Config{HistorySize: cfg.Scheduler.HistorySize}, log.With(logx.String("comp", "engine")), bus)

	a := &App{
		cfgm:  cfgm,
		cfg:   cfg,
		log:   log.With(logx.String("comp", "app")),
		logs:  logSvc,
		bus:   bus,
		sd:    sdnotify.New(log.With(logx.String("comp", "sdnotify"))),
		disp:  disp,
		exec:  exec,
		watch: o.watch,

		gateDesc: gate.String(),
		poll:     d.PollInterval,
	}

	schedOpts := append([]scheduler.Option{
		scheduler.WithEventBus(bus),
		scheduler.WithOnTick(a.onTick),
	}, o.schedOpts...)
	a.sched = scheduler.New(scheduler.Config{
		PollInterval: d.PollInterval,
		Lookback:     d.Lookback,
	}, reg, gate, exec, log.With(logx.String("comp", "scheduler")), schedOpts...)

	if cfg.Debug.Enabled {
		a.debug = debughttp.New(debughttp.Config{Addr: cfg.DebugAddr(), Token: secrets.DebugToken},
			a.Status, log.With(logx.String("comp", "debughttp")))
	}

	return a, nil
}

func (a *App) Scheduler() *scheduler.Service { return a.sched }

func (a *App) Dispatcher() *notifier.Dispatcher { return a.disp }

func (a *App) Bus() eventbus.Bus { return a.bus }

// Status is the document served at /status.
type Status struct {
	Scheduler  scheduler.Snapshot     `json:"scheduler"`
	Driver     string                 `json:"driver"`
	Deliveries []notifier.HistoryItem `json:"deliveries"`
	Dropped    uint64                 `json:"events_dropped"`
}

func (a *App) Status() any {
	return Status{
		Scheduler:  a.sched.Snapshot(),
		Driver:     a.disp.Driver(),
		Deliveries: a.disp.History(),
		Dropped:    eventbus.Dropped(a.bus),
	}
}

// Run starts the loop and its helpers and blocks until ctx is canceled or
// the loop fails. It always closes the log sinks before returning.
func (a *App) Run(ctx context.Context) error {
	sup := supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	events, unsub := a.bus.Subscribe(128)
	sup.Go("eventbus.log", func(c context.Context) error {
		defer unsub()
		return a.logEvents(c, events)
	})

	sub := a.cfgm.Subscribe(8)
	sup.Go("config.apply", func(c context.Context) error {
		defer a.cfgm.Unsubscribe(sub)
		return a.applyConfig(c, sub)
	})
	if a.watch {
		sup.GoRestart("config.watch", a.cfgm.Watch, supervisor.WithRestartBackoff(time.Second, time.Minute))
	}

	if a.debug != nil {
		// Optional endpoint; a failure here never stops the loop.
		sup.Go("debughttp", func(c context.Context) error {
			if err := a.debug.Run(c); err != nil {
				a.log.Error("debug server failed", logx.Err(err))
			}
			return nil
		})
	}

	// The watchdog is pinged once per tick, so a stuck loop gets restarted.
	if iv := sdnotify.WatchdogInterval(); iv > 0 && iv <= a.poll {
		a.log.Warn("systemd watchdog interval is shorter than the poll interval",
			logx.Duration("watchdog", iv), logx.Duration("poll", a.poll))
	}

	sup.Go("scheduler", func(c context.Context) error {
		err := a.sched.Run(c)
		// The loop only returns on shutdown; stop the helpers with it.
		sup.Cancel()
		return err
	})

	a.sd.Ready()
	a.sd.Status("running " + a.gateDesc)
	a.log.Info("digest bot started", logx.String("config", a.cfgm.Path()))

	<-sup.Context().Done()
	a.sd.Stopping()
	a.log.Info("stopping")

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	err := sup.Wait(stopCtx)
	if err != nil {
		a.log.Error("stopped with error", logx.Err(err))
	} else {
		a.log.Info("stopped")
	}
	_ = a.logs.Close()
	return err
}

func (a *App) onTick(rep scheduler.TickReport) {
	a.sd.Watchdog()
	if !rep.Active || len(rep.Due) == 0 {
		return
	}
	failed := 0
	for _, o := range rep.Outcomes {
		if !o.Ok() {
			failed++
		}
	}
	a.sd.Status(fmt.Sprintf("tick %d: ran %d job(s), %d failed", rep.Tick, len(rep.Outcomes), failed))
}

func (a *App) logEvents(ctx context.Context, events <-chan eventbus.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time))
		}
	}
}

// applyConfig applies logging changes live. Other sections are only
// reported; they take effect after a restart.
func (a *App) applyConfig(ctx context.Context, sub <-chan *config.Config) error {
	last := a.cfg
	for {
		select {
		case <-ctx.Done():
			return nil
		case next, ok := <-sub:
			if !ok {
				return nil
			}
			// Keep only the newest pending config.
			for drained := false; !drained; {
				select {
				case newer := <-sub:
					if newer != nil {
						next = newer
					}
				default:
					drained = true
				}
			}

			changed, attrs := config.SummarizeConfigChange(last, next)
			last = next
			if len(changed) == 0 {
				a.log.Debug("config reload received, but no effective changes detected")
				continue
			}
			a.logs.Apply(next.Logging.Logx())

			fields := append([]logx.Field{logx.String("changed", strings.Join(changed, ","))}, attrs...)
			a.log.Info("config reloaded", fields...)
			if pending := config.RestartRequired(changed); len(pending) > 0 {
				a.log.Warn("config change requires restart", logx.String("sections", strings.Join(pending, ",")))
			}
			a.bus.Publish(eventbus.Event{Type: eventbus.ConfigReloaded, Data: map[string]any{"changed": changed}})
		}
	}
}
