package scheduler

import (
	"testing"
	"time"
)

func ist(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	return loc
}

func TestParseTriggerVariants(t *testing.T) {
	t.Parallel()
	loc := ist(t)
	from := time.Date(2024, 3, 1, 12, 59, 50, 0, loc)

	tests := []struct {
		name string
		raw  string
		kind TriggerKind
		next time.Time
	}{
		{name: "hhmm", raw: "13:00", kind: TriggerDaily, next: time.Date(2024, 3, 1, 13, 0, 0, 0, loc)},
		{name: "daily prefix", raw: "daily:9:15", kind: TriggerDaily, next: time.Date(2024, 3, 2, 9, 15, 0, 0, loc)},
		{name: "at prefix", raw: "at:20:00", kind: TriggerDaily, next: time.Date(2024, 3, 1, 20, 0, 0, 0, loc)},
		{name: "every duration", raw: "every:2h", kind: TriggerInterval, next: time.Date(2024, 3, 1, 14, 0, 0, 0, loc)},
		{name: "interval hhmm", raw: "interval:00:30", kind: TriggerInterval, next: time.Date(2024, 3, 1, 13, 0, 0, 0, loc)},
		{name: "at every", raw: "@every 6h", kind: TriggerInterval, next: time.Date(2024, 3, 1, 18, 0, 0, 0, loc)},
		{name: "cron", raw: "0 17 * * *", kind: TriggerCron, next: time.Date(2024, 3, 1, 17, 0, 0, 0, loc)},
		{name: "cron prefix", raw: "cron:*/15 * * * *", kind: TriggerCron, next: time.Date(2024, 3, 1, 13, 0, 0, 0, loc)},
		{name: "descriptor", raw: "@daily", kind: TriggerCron, next: time.Date(2024, 3, 2, 0, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTrigger(tt.raw, loc)
			if err != nil {
				t.Fatalf("ParseTrigger(%q) error: %v", tt.raw, err)
			}
			if k := KindOf(got); k != tt.kind {
				t.Fatalf("KindOf = %v, want %v", k, tt.kind)
			}
			if next := got.Next(from); !next.Equal(tt.next) {
				t.Fatalf("Next(%v) = %v, want %v", from, next, tt.next)
			}
		})
	}
}

func TestParseTriggerInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "not-a-trigger", "25:00", "every:0s", "every:-1h", "cron:", "cron:@every 1h", "61 * * * *", "every:36h", "interval:48:00", "@every 25h"} {
		if _, err := ParseTrigger(raw, time.UTC); err == nil {
			t.Fatalf("ParseTrigger(%q): expected error", raw)
		}
	}
}

func TestDailyUsesReferenceZone(t *testing.T) {
	t.Parallel()
	loc := ist(t)
	tr, err := Daily(13, 0, loc)
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	// 07:00 UTC is 12:30 IST; the next 13:00 IST is 07:30 UTC.
	got := tr.Next(time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC))
	want := time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}
}

func TestIntervalAnchoredAtMidnight(t *testing.T) {
	t.Parallel()
	loc := ist(t)
	tr, err := Every(5*time.Hour, loc)
	if err != nil {
		t.Fatalf("Every: %v", err)
	}

	// 00:00, 05:00, 10:00, 15:00, 20:00 then the next midnight.
	cur := time.Date(2024, 3, 1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)
	var got []string
	for i := 0; i < 6; i++ {
		cur = tr.Next(cur)
		got = append(got, cur.Format("02 15:04"))
	}
	want := []string{"01 00:00", "01 05:00", "01 10:00", "01 15:00", "01 20:00", "02 00:00"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("instants = %v, want %v", got, want)
		}
	}
}

func TestNextIsStrictlyAfter(t *testing.T) {
	t.Parallel()
	loc := ist(t)
	at := time.Date(2024, 3, 1, 13, 0, 0, 0, loc)

	daily, _ := Daily(13, 0, loc)
	if got := daily.Next(at); !got.Equal(at.AddDate(0, 0, 1)) {
		t.Fatalf("daily Next(at) = %v, want next day", got)
	}
	every, _ := Every(time.Hour, loc)
	if got := every.Next(at); !got.Equal(at.Add(time.Hour)) {
		t.Fatalf("interval Next(at) = %v, want +1h", got)
	}
}

func TestIntervalOfOneDayFiresAtMidnight(t *testing.T) {
	t.Parallel()
	loc := ist(t)
	tr, err := Every(MaxInterval, loc)
	if err != nil {
		t.Fatalf("Every(24h): %v", err)
	}
	reg := NewRegistry()
	if err := reg.Register(Job{Name: "daily", Trigger: tr, Handler: noop}); err != nil {
		t.Fatal(err)
	}

	// Poll every 30s for three days.
	start := time.Date(2024, 3, 1, 0, 0, 30, 0, loc)
	last := start
	fired := 0
	for now := start.Add(30 * time.Second); !now.After(start.Add(72 * time.Hour)); now = now.Add(30 * time.Second) {
		fired += len(reg.DueJobs(now, last))
		last = now
	}
	if fired != 3 {
		t.Fatalf("every 24h fired %d times in 72h, want 3", fired)
	}
}
