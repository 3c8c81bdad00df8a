package engine

import (
	"time"
)

// Config controls the job executor.
type Config struct {
	// HistorySize bounds the in-memory outcome ring. <=0 means 200.
	HistorySize int
}

// Status is the terminal state of one execution.
type Status int

const (
	Succeeded Status = iota
	Failed
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of running one job once. Reason is empty on success.
type Outcome struct {
	ID       string
	Job      string
	Status   Status
	Reason   string
	Started  time.Time
	Duration time.Duration
	Panicked bool
}

func (o Outcome) Ok() bool { return o.Status == Succeeded }

type HistoryItem struct {
	ID       string
	Name     string
	Started  time.Time
	Duration time.Duration
	Error    string
}

// JobEvent is published on the event bus after every execution.
type JobEvent struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}
