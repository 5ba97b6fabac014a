package bridge

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) record(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprint(append([]any{level, " ", msg}, args...)...))
}

func (l *recordingLogger) Info(msg string, args ...any)  { l.record("INFO", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("WARN", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args...) }

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if len(e) >= len(level) && e[:len(level)] == level {
			n++
		}
	}
	return n
}

func TestSchedulerRunsAtInterval(t *testing.T) {
	interval := 50 * time.Millisecond

	var mu sync.Mutex
	var ticks []time.Time
	action := func(context.Context) {
		mu.Lock()
		ticks = append(ticks, time.Now())
		mu.Unlock()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Millisecond)
	defer cancel()

	NewScheduler(interval, action, nil).Run(ctx)

	mu.Lock()
	defer mu.Unlock()
	if len(ticks) < 2 {
		t.Fatalf("got %d ticks, want at least 2", len(ticks))
	}
	for i := 1; i < len(ticks); i++ {
		gap := ticks[i].Sub(ticks[i-1])
		if gap < interval-20*time.Millisecond || gap > interval+40*time.Millisecond {
			t.Errorf("gap between ticks %d and %d = %v, want ~%v", i-1, i, gap, interval)
		}
	}
}

func TestSchedulerOverrunResetsSchedule(t *testing.T) {
	interval := 30 * time.Millisecond
	logger := &recordingLogger{}

	var mu sync.Mutex
	var ticks []time.Time
	first := true
	action := func(context.Context) {
		mu.Lock()
		ticks = append(ticks, time.Now())
		slow := first
		first = false
		mu.Unlock()
		if slow {
			time.Sleep(2 * interval)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	NewScheduler(interval, action, logger).Run(ctx)

	if logger.count("WARN") == 0 {
		t.Error("overrun produced no warning")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(ticks) < 3 {
		t.Fatalf("got %d ticks, want at least 3", len(ticks))
	}

	// The tick after the overrun fires as soon as the slow action
	// returns, not a further interval later.
	recovery := ticks[1].Sub(ticks[0])
	if recovery > 2*interval+20*time.Millisecond {
		t.Errorf("recovery tick came %v after the slow tick started, want roughly the action duration", recovery)
	}

	// The schedule re-anchors after the overrun: subsequent ticks are
	// a full interval apart again.
	settled := ticks[2].Sub(ticks[1])
	if settled < interval-15*time.Millisecond {
		t.Errorf("post-overrun gap = %v, want at least ~%v", settled, interval)
	}
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count := 0
	action := func(context.Context) { count++ }

	done := make(chan struct{})
	go func() {
		NewScheduler(10*time.Millisecond, action, nil).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
	if count != 0 {
		t.Errorf("action ran %d times under a cancelled context, want 0", count)
	}
}
