// Package window implements the active-hours gate: a daily time-of-day range,
// evaluated in one reference timezone, outside of which no job runs.
package window

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTimezone is the reference zone used when none is configured.
const DefaultTimezone = "Asia/Kolkata"

var (
	ErrInvalidClock  = errors.New("window: invalid time of day")
	ErrInvalidWindow = errors.New("window: start after end")
)

// Clock is a time of day at minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" (24h). A single-digit hour is accepted.
func ParseClock(s string) (Clock, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(m) != 2 {
		return Clock{}, fmt.Errorf("%w: %q (expected HH:MM)", ErrInvalidClock, s)
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 23 {
		return Clock{}, fmt.Errorf("%w: %q (hour)", ErrInvalidClock, s)
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return Clock{}, fmt.Errorf("%w: %q (minute)", ErrInvalidClock, s)
	}
	return Clock{Hour: hh, Minute: mm}, nil
}

// MustClock is ParseClock for literals.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Minutes returns minutes since midnight (0..1439).
func (c Clock) Minutes() int { return c.Hour*60 + c.Minute }

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// Window is an inclusive daily range. Overnight ranges are not supported.
type Window struct {
	Start Clock
	End   Clock
}

// ParseWindow builds a Window from two "HH:MM" values.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, fmt.Errorf("start: %w", err)
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, fmt.Errorf("end: %w", err)
	}
	w := Window{Start: s, End: e}
	return w, w.Validate()
}

func (w Window) Validate() error {
	if w.Start.Minutes() > w.End.Minutes() {
		return fmt.Errorf("%w: %s > %s", ErrInvalidWindow, w.Start, w.End)
	}
	return nil
}

// Contains reports whether minute-of-day m lies in [Start, End].
func (w Window) Contains(m int) bool {
	return m >= w.Start.Minutes() && m <= w.End.Minutes()
}

func (w Window) String() string { return w.Start.String() + "-" + w.End.String() }

// Gate decides whether the scheduler may dispatch at a given instant.
type Gate struct {
	win Window
	loc *time.Location
}

// NewGate returns a gate for win in loc. A nil loc means UTC.
func NewGate(win Window, loc *time.Location) (Gate, error) {
	if err := win.Validate(); err != nil {
		return Gate{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return Gate{win: win, loc: loc}, nil
}

// IsActive converts now to the reference zone and compares its minute of day
// against the window. Seconds are ignored, so the whole end minute is active.
func (g Gate) IsActive(now time.Time) bool {
	loc := g.loc
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return g.win.Contains(local.Hour()*60 + local.Minute())
}

func (g Gate) Window() Window { return g.win }

func (g Gate) Location() *time.Location {
	if g.loc == nil {
		return time.UTC
	}
	return g.loc
}

func (g Gate) String() string {
	return g.win.String() + " " + g.Location().String()
}
