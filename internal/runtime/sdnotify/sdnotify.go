// Package sdnotify reports service state to systemd over NOTIFY_SOCKET.
// Every call is a no-op when the process is not started by systemd.
package sdnotify

import (
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	logx "digestbot/pkg/logx"
)

type Notifier struct {
	log logx.Logger

	// send is daemon.SdNotify; tests swap it out.
	send func(unsetEnv bool, state string) (bool, error)
}

func New(log logx.Logger) *Notifier {
	return &Notifier{log: log, send: daemon.SdNotify}
}

func (n *Notifier) Ready()    { n.notify(daemon.SdNotifyReady) }
func (n *Notifier) Stopping() { n.notify(daemon.SdNotifyStopping) }
func (n *Notifier) Watchdog() { n.notify(daemon.SdNotifyWatchdog) }

// Status sets the free-form STATUS= line shown by systemctl status.
func (n *Notifier) Status(s string) { n.notify("STATUS=" + s) }

// WatchdogInterval returns the interval systemd expects pings at, or zero
// when the watchdog is disabled.
func WatchdogInterval() time.Duration {
	d, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return 0
	}
	return d
}

func (n *Notifier) notify(state string) {
	if n == nil || n.send == nil {
		return
	}
	sent, err := n.send(false, state)
	if err != nil {
		n.log.Warn("sd_notify failed", logx.String("state", state), logx.Err(err))
		return
	}
	if sent {
		n.log.Trace("sd_notify", logx.String("state", state))
	}
}
