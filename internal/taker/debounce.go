package taker

import (
	"sync"
	"time"
)

// Timer is a scheduled callback that can be stopped.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d. time.AfterFunc satisfies it once
// wrapped by RealTimers.
type AfterFunc func(d time.Duration, f func()) Timer

// RealTimers schedules callbacks on the runtime timer.
func RealTimers(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Debouncer coalesces bursts of triggers into one call after a quiet
// period. Every Trigger replaces the pending call; Cancel drops it.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	after   AfterFunc
	timer   Timer
	pending func()
	gen     uint64
}

// NewDebouncer returns a Debouncer with the given quiet period. A nil after
// uses RealTimers.
func NewDebouncer(delay time.Duration, after AfterFunc) *Debouncer {
	if after == nil {
		after = RealTimers
	}
	return &Debouncer{delay: delay, after: after}
}

// Trigger schedules fn, superseding any call still waiting.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = d.after(d.delay, func() { d.fire(gen) })
}

// Cancel drops the waiting call, if any. It reports whether one was waiting.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	had := d.pending != nil
	d.stopLocked()
	d.gen++
	return had
}

// Flush runs the waiting call now, on the caller's goroutine.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	d.stopLocked()
	d.gen++
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Pending reports whether a call is waiting.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// fire runs the call scheduled as generation gen unless it was superseded
// after the timer had already fired.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}
