// Package scheduler owns the job registry and the polling loop.
//
// The loop wakes every poll interval, asks the active-hours gate whether it
// may dispatch, and if so runs every job with a due-instant in
// (last_checked, now] through the executor, in registration order, on the
// loop goroutine. Triggers are robfig/cron schedules evaluated in the
// reference timezone.
package scheduler
