package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var ErrDuplicateJob = errors.New("duplicate job")

// Handler runs one job. It may produce any number of notifications.
type Handler func(ctx context.Context) error

// Job is a named (trigger, handler) pair, fixed for the process lifetime.
type Job struct {
	Name    string
	Trigger Trigger
	Handler Handler
}

// Registry is an ordered set of jobs keyed by name. It is filled at startup
// and only read afterwards.
type Registry struct {
	mu     sync.RWMutex
	jobs   []Job
	byName map[string]int
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]int{}}
}

// Register appends job. A name already present returns ErrDuplicateJob and
// leaves the registry unchanged.
func (r *Registry) Register(job Job) error {
	name := strings.TrimSpace(job.Name)
	if name == "" {
		return errors.New("job name required")
	}
	if job.Trigger == nil {
		return fmt.Errorf("job %q: trigger required", name)
	}
	if job.Handler == nil {
		return fmt.Errorf("job %q: handler required", name)
	}
	job.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateJob, name)
	}
	r.byName[name] = len(r.jobs)
	r.jobs = append(r.jobs, job)
	return nil
}

// Jobs returns a copy of the registered jobs in registration order.
func (r *Registry) Jobs() []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Job(nil), r.jobs...)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

func (r *Registry) Get(name string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byName[strings.TrimSpace(name)]
	if !ok {
		return Job{}, false
	}
	return r.jobs[i], true
}

// DueJobs returns, in registration order, every job with at least one
// due-instant in (lastChecked, now]. A job is returned once per call however
// many of its instants fall inside the range.
func (r *Registry) DueJobs(now, lastChecked time.Time) []Job {
	if !now.After(lastChecked) {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var due []Job
	for _, j := range r.jobs {
		next := j.Trigger.Next(lastChecked)
		if next.IsZero() || next.After(now) {
			continue
		}
		due = append(due, j)
	}
	return due
}
