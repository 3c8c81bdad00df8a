package scheduler

import (
	"time"

	"digestbot/internal/task/engine"
)

type historian interface {
	History() []engine.HistoryItem
}

// Snapshot is a point-in-time view for logs and diagnostics.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	st := s.state
	ticks := s.ticks
	last := s.lastChecked
	s.mu.Unlock()

	jobs := s.reg.Jobs()
	items := make([]ScheduleInfo, 0, len(jobs))
	for _, j := range jobs {
		info := ScheduleInfo{Name: j.Name, Trigger: j.Trigger.String()}
		// Next is unknown until Run has seeded last_checked.
		if !last.IsZero() {
			info.Next = nextIn(j.Trigger, last, s.gate.Location())
		}
		items = append(items, info)
	}

	var hist []engine.HistoryItem
	if h, ok := s.exec.(historian); ok {
		hist = h.History()
	}

	return Snapshot{
		State:        st.String(),
		Ticks:        ticks,
		LastChecked:  last,
		Gate:         s.gate.String(),
		Timezone:     s.gate.Location().String(),
		PollInterval: s.cfg.PollInterval,
		Lookback:     s.cfg.Lookback,
		Schedules:    items,
		History:      hist,
	}
}

func nextIn(t Trigger, after time.Time, loc *time.Location) time.Time {
	next := t.Next(after)
	if next.IsZero() {
		return next
	}
	return next.In(loc)
}
