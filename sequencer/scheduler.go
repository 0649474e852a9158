package sequencer

import (
	"context"
	"time"
)

// Scheduler is the timing source that drives a clock. It calls back once
// per interval and never starts a callback before the previous one returned.
type Scheduler struct {
	now func() time.Time
}

// NewScheduler creates a scheduler on the wall clock
func NewScheduler() *Scheduler {
	return &Scheduler{now: time.Now}
}

// ScheduleRepeating blocks until ctx is done. interval is read again before
// each wait, so a tempo change applies to the next tick. Each callback gets
// the time the tick was due, which drifts less than the time it ran.
func (s *Scheduler) ScheduleRepeating(ctx context.Context, interval func() time.Duration, cb func(at time.Time)) {
	next := s.now()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		cb(next)

		d := interval()
		if d <= 0 {
			d = time.Millisecond
		}
		next = next.Add(d)

		// Fell behind (slow callback or a tempo jump): resync instead of bursting
		wait := next.Sub(s.now())
		if wait < 0 {
			next = s.now()
			wait = 0
		}
		timer.Reset(wait)
	}
}
