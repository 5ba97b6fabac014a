package bridge

import (
	"context"
	"time"
)

// Scheduler runs an action at a fixed interval with drift correction.
//
// Each tick is anchored to the previous deadline rather than to the
// action's completion, so a 60s interval produces readings 60s apart
// regardless of how long each poll takes. If the action overruns the
// interval the missed deadline is logged and the schedule is re-anchored
// to now; ticks are never run back-to-back to catch up.
type Scheduler struct {
	interval time.Duration
	action   func(ctx context.Context)
	logger   Logger
}

// NewScheduler builds a scheduler for action at the given interval.
func NewScheduler(interval time.Duration, action func(ctx context.Context), logger Logger) *Scheduler {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Scheduler{
		interval: interval,
		action:   action,
		logger:   logger,
	}
}

// Run executes the schedule until ctx is cancelled. The first action
// runs after one full interval, not immediately; callers that want an
// immediate reading invoke the action themselves before Run.
func (s *Scheduler) Run(ctx context.Context) {
	nextRun := time.Now().Add(s.interval)

	for {
		sleepFor := time.Until(nextRun)

		if sleepFor >= 0 {
			timer := time.NewTimer(sleepFor)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			nextRun = nextRun.Add(s.interval)
		} else {
			s.logger.Warn("poll overran the publish interval",
				"behind", (-sleepFor).Round(time.Millisecond).String(),
				"interval", s.interval.String())
			nextRun = time.Now().Add(s.interval)
		}

		if ctx.Err() != nil {
			return
		}
		s.action(ctx)
	}
}
