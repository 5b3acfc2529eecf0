package services

import "time"

// Timer is a cancellable pending callback
type Timer interface {
	Stop() bool
}

// Scheduler arms callbacks after a delay
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// wallClockScheduler schedules on real time
type wallClockScheduler struct{}

func (wallClockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// NewWallClockScheduler returns a Scheduler backed by time.AfterFunc
func NewWallClockScheduler() Scheduler {
	return wallClockScheduler{}
}

// tableTimer is one timer slot on a table. Every arm bumps the generation so
// a callback that lost the race to a newer arm or a stop can tell it is stale.
type tableTimer struct {
	timer      Timer
	generation uint64
}

// arm replaces any pending callback and returns the new generation
func (t *tableTimer) arm(scheduler Scheduler, d time.Duration, fire func(generation uint64)) uint64 {
	t.stop()
	gen := t.generation
	t.timer = scheduler.AfterFunc(d, func() { fire(gen) })
	return gen
}

// stop cancels the pending callback, if any, and invalidates its generation
func (t *tableTimer) stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.generation++
}

// current reports whether generation is still the armed one
func (t *tableTimer) current(generation uint64) bool {
	return t.timer != nil && t.generation == generation
}
