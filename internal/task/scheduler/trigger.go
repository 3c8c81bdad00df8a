package scheduler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Trigger yields the due-instants of a job. Next returns the first instant
// strictly after t, or the zero time if there is none.
type Trigger interface {
	cron.Schedule
	String() string
}

// TriggerKind describes how a trigger string was interpreted.
type TriggerKind int

const (
	TriggerDaily TriggerKind = iota
	TriggerInterval
	TriggerCron
)

var (
	reHHMM = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*$`)

	// SecondOptional allows both 5-field and 6-field (with seconds) cron specs.
	cronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
)

// ParseTrigger parses a trigger string evaluated in loc.
//
// Supported forms:
//   - Daily time of day: "13:00", "daily:13:00", "at:13:00"
//   - Interval anchored at local midnight: "every:6h", "interval:00:30", "@every 2h"
//   - Cron: "0 13 * * *", "@daily", "cron:*/15 * * * *"
func ParseTrigger(raw string, loc *time.Location) (Trigger, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("trigger required")
	}

	low := strings.ToLower(s)
	switch {
	case strings.HasPrefix(low, "daily:"):
		return parseDaily(s[len("daily:"):], loc)
	case strings.HasPrefix(low, "at:"):
		return parseDaily(s[len("at:"):], loc)
	case strings.HasPrefix(low, "every:"):
		return parseInterval(s[len("every:"):], loc)
	case strings.HasPrefix(low, "interval:"):
		return parseInterval(s[len("interval:"):], loc)
	case strings.HasPrefix(low, "@every "):
		return parseInterval(s[len("@every "):], loc)
	case strings.HasPrefix(low, "cron:"):
		return parseCron(strings.TrimSpace(s[len("cron:"):]), loc)
	}

	if reHHMM.MatchString(s) {
		return parseDaily(s, loc)
	}
	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		return parseCron(s, loc)
	}
	return nil, fmt.Errorf(
		"invalid trigger %q (use HH:MM like '13:00', every:<duration> like 'every:2h', or cron like '0 13 * * *')",
		raw,
	)
}

// Daily returns a trigger firing once a day at hour:minute in loc.
func Daily(hour, minute int, loc *time.Location) (Trigger, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}
	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	sched, err := cronParser.Parse(spec)
	if err != nil {
		return nil, err
	}
	return zoned{sched: sched, loc: loc, kind: TriggerDaily, text: fmt.Sprintf("daily %02d:%02d", hour, minute)}, nil
}

// MaxInterval is the longest interval Every accepts. Instants restart at
// every local midnight, so a longer interval could not be honored.
const MaxInterval = 24 * time.Hour

// Every returns an interval trigger whose instants are midnight + k*every in
// loc, for every local day. every must be in (0, MaxInterval].
func Every(every time.Duration, loc *time.Location) (Trigger, error) {
	if every <= 0 {
		return nil, fmt.Errorf("interval must be > 0")
	}
	if every > MaxInterval {
		return nil, fmt.Errorf("interval %s exceeds %s; use a cron expression for multi-day schedules", every, MaxInterval)
	}
	if loc == nil {
		loc = time.UTC
	}
	return interval{every: every, loc: loc}, nil
}

// KindOf reports how t was built. Triggers from other packages are TriggerCron.
func KindOf(t Trigger) TriggerKind {
	switch v := t.(type) {
	case zoned:
		return v.kind
	case interval:
		return TriggerInterval
	default:
		return TriggerCron
	}
}

func parseDaily(v string, loc *time.Location) (Trigger, error) {
	m := reHHMM.FindStringSubmatch(v)
	if len(m) != 3 {
		return nil, fmt.Errorf("invalid daily time %q (expected HH:MM)", strings.TrimSpace(v))
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return Daily(hh, mm, loc)
}

func parseInterval(v string, loc *time.Location) (Trigger, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, fmt.Errorf("interval required")
	}
	if m := reHHMM.FindStringSubmatch(v); len(m) == 3 {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm > 59 {
			return nil, fmt.Errorf("invalid minutes in %q", v)
		}
		return Every(time.Duration(hh)*time.Hour+time.Duration(mm)*time.Minute, loc)
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return nil, fmt.Errorf("invalid interval %q (use HH:MM or Go duration like '30m'/'2h')", v)
	}
	return Every(d, loc)
}

func parseCron(expr string, loc *time.Location) (Trigger, error) {
	if expr == "" {
		return nil, fmt.Errorf("cron expression required")
	}
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron %q: %w", expr, err)
	}
	if _, ok := sched.(cron.ConstantDelaySchedule); ok {
		// Constant delays drift with process start; intervals are anchored instead.
		return nil, fmt.Errorf("use every:<duration> instead of %q", expr)
	}
	return zoned{sched: sched, loc: loc, kind: TriggerCron, text: "cron " + expr}, nil
}

// zoned evaluates a cron schedule in a fixed location. robfig's parser leaves
// specs in time.Local, which follows the location of the input time.
type zoned struct {
	sched cron.Schedule
	loc   *time.Location
	kind  TriggerKind
	text  string
}

func (z zoned) Next(t time.Time) time.Time {
	loc := z.loc
	if loc == nil {
		loc = time.UTC
	}
	return z.sched.Next(t.In(loc))
}

func (z zoned) String() string { return z.text }

// interval fires at midnight + k*every of each local day, so the set of
// instants per day does not depend on when the process started.
type interval struct {
	every time.Duration
	loc   *time.Location
}

func (iv interval) Next(t time.Time) time.Time {
	lt := t.In(iv.loc)
	y, mo, d := lt.Date()
	midnight := time.Date(y, mo, d, 0, 0, 0, 0, iv.loc)
	nextMidnight := time.Date(y, mo, d+1, 0, 0, 0, 0, iv.loc)

	k := lt.Sub(midnight)/iv.every + 1
	next := midnight.Add(k * iv.every)
	if !next.Before(nextMidnight) {
		return nextMidnight
	}
	return next
}

func (iv interval) String() string { return "every " + iv.every.String() }
