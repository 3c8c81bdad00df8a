package window

import (
	"errors"
	"testing"
	"time"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q): %v", name, err)
	}
	return loc
}

func mustGate(t *testing.T, start, end string, loc *time.Location) Gate {
	t.Helper()
	w, err := ParseWindow(start, end)
	if err != nil {
		t.Fatalf("ParseWindow(%q, %q): %v", start, end, err)
	}
	g, err := NewGate(w, loc)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	return g
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{in: "11:30", want: Clock{11, 30}},
		{in: " 9:05 ", want: Clock{9, 5}},
		{in: "00:00", want: Clock{0, 0}},
		{in: "23:59", want: Clock{23, 59}},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12:5", wantErr: true},
		{in: "1230", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidClock) {
					t.Fatalf("ParseClock(%q) err = %v, want ErrInvalidClock", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q) err = %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseClock(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseWindowRejectsReversed(t *testing.T) {
	t.Parallel()

	if _, err := ParseWindow("23:30", "11:30"); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("err = %v, want ErrInvalidWindow", err)
	}
}

func TestGateIsActive(t *testing.T) {
	t.Parallel()

	ist := mustLoc(t, DefaultTimezone)
	g := mustGate(t, "11:30", "23:30", ist)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before start", time.Date(2024, 3, 1, 10, 0, 0, 0, ist), false},
		{"one minute before start", time.Date(2024, 3, 1, 11, 29, 59, 0, ist), false},
		{"start minute", time.Date(2024, 3, 1, 11, 30, 0, 0, ist), true},
		{"midday", time.Date(2024, 3, 1, 15, 0, 0, 0, ist), true},
		{"end minute", time.Date(2024, 3, 1, 23, 30, 0, 0, ist), true},
		{"end minute seconds", time.Date(2024, 3, 1, 23, 30, 45, 0, ist), true},
		{"after end", time.Date(2024, 3, 1, 23, 31, 0, 0, ist), false},
		// 06:00 UTC is 11:30 IST.
		{"utc input converted", time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC), true},
		{"utc input before window", time.Date(2024, 3, 1, 5, 59, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := g.IsActive(tt.now); got != tt.want {
				t.Fatalf("IsActive(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestGateSingleMinuteWindow(t *testing.T) {
	t.Parallel()

	g := mustGate(t, "12:00", "12:00", time.UTC)
	if !g.IsActive(time.Date(2024, 1, 1, 12, 0, 30, 0, time.UTC)) {
		t.Fatal("12:00:30 should be active")
	}
	if g.IsActive(time.Date(2024, 1, 1, 12, 1, 0, 0, time.UTC)) {
		t.Fatal("12:01 should be inactive")
	}
	if g.IsActive(time.Date(2024, 1, 1, 11, 59, 0, 0, time.UTC)) {
		t.Fatal("11:59 should be inactive")
	}
}

func TestGateWholeDay(t *testing.T) {
	t.Parallel()

	g := mustGate(t, "00:00", "23:59", time.UTC)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for m := 0; m < 24*60; m += 7 {
		now := start.Add(time.Duration(m) * time.Minute)
		if !g.IsActive(now) {
			t.Fatalf("IsActive(%v) = false, want true", now)
		}
	}
}

func TestGateString(t *testing.T) {
	t.Parallel()

	g := mustGate(t, "11:30", "23:30", mustLoc(t, DefaultTimezone))
	if got, want := g.String(), "11:30-23:30 Asia/Kolkata"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
