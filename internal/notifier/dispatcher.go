package notifier

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"digestbot/internal/eventbus"
	logx "digestbot/pkg/logx"
)

// Dispatcher sends payloads through one Sender. It is safe for concurrent use.
type Dispatcher struct {
	cfg     Config
	sender  Sender
	log     logx.Logger
	bus     eventbus.Bus
	limiter *rate.Limiter

	hmu     sync.Mutex
	history []HistoryItem
}

func New(cfg Config, sender Sender, log logx.Logger, bus eventbus.Bus) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	if bus == nil {
		bus = eventbus.Nop()
	}
	if sender == nil {
		sender = Nop{}
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 3
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 200
	}
	return &Dispatcher{
		cfg:    cfg,
		sender: sender,
		log:    log,
		bus:    bus,
		// Token bucket: burst = rate per sec, so a digest of a few topics goes out at once.
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}
}

func (d *Dispatcher) Driver() string { return d.sender.Name() }

// Deliver sends p once. Failures come back as *DeliveryError and are not retried.
func (d *Dispatcher) Deliver(ctx context.Context, p Payload) error {
	driver := d.sender.Name()
	if err := p.Validate(); err != nil {
		return d.done(p, &DeliveryError{Driver: driver, Title: p.Title, Err: err})
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return d.done(p, &DeliveryError{Driver: driver, Title: p.Title, Err: err})
	}

	sendCtx := ctx
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}
	if err := d.sender.Send(sendCtx, p); err != nil {
		return d.done(p, &DeliveryError{Driver: driver, Title: p.Title, Err: err})
	}
	return d.done(p, nil)
}

func (d *Dispatcher) done(p Payload, derr *DeliveryError) error {
	now := time.Now()
	item := HistoryItem{At: now, Driver: d.sender.Name(), Title: p.Title}
	ev := NotificationEvent{Driver: item.Driver, Title: p.Title, At: now}
	typ := eventbus.NotifySent

	if derr != nil {
		item.Error = derr.Err.Error()
		ev.Error = item.Error
		typ = eventbus.NotifyFailed
		d.log.Debug("notification failed", logx.String("driver", item.Driver), logx.String("title", p.Title), logx.Err(derr.Err))
	} else {
		d.log.Info("notification sent", logx.String("driver", item.Driver), logx.String("title", p.Title), logx.Bool("image", p.Image != ""))
	}

	d.hmu.Lock()
	d.history = append(d.history, item)
	if len(d.history) > d.cfg.HistorySize {
		d.history = d.history[len(d.history)-d.cfg.HistorySize:]
	}
	d.hmu.Unlock()

	d.bus.Publish(eventbus.Event{Type: typ, Time: now, Data: ev})

	if derr != nil {
		return derr
	}
	return nil
}

// History returns recent deliveries, oldest first.
func (d *Dispatcher) History() []HistoryItem {
	d.hmu.Lock()
	defer d.hmu.Unlock()
	return append([]HistoryItem(nil), d.history...)
}
