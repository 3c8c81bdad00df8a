package sdnotify

import (
	"errors"
	"testing"

	"github.com/coreos/go-systemd/v22/daemon"

	logx "digestbot/pkg/logx"
)

func TestNotifierStates(t *testing.T) {
	t.Parallel()

	var got []string
	n := New(logx.Nop())
	n.send = func(_ bool, state string) (bool, error) {
		got = append(got, state)
		return true, nil
	}

	n.Ready()
	n.Watchdog()
	n.Status("idle")
	n.Stopping()

	want := []string{daemon.SdNotifyReady, daemon.SdNotifyWatchdog, "STATUS=idle", daemon.SdNotifyStopping}
	if len(got) != len(want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("state[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNotifierToleratesErrors(t *testing.T) {
	t.Parallel()

	n := New(logx.Nop())
	n.send = func(bool, string) (bool, error) { return false, errors.New("socket gone") }
	n.Ready()

	var nilNotifier *Notifier
	nilNotifier.Ready()
}
