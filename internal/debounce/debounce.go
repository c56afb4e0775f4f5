// Package debounce coalesces bursts of calls into a single delayed action.
package debounce

import (
	"sync"
	"time"
)

// Timer is the handle returned by an AfterFunc. Stop reports whether the
// pending run was prevented.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

// RealAfterFunc schedules on the runtime timer.
func RealAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer runs its action once the caller has stopped calling for delay.
// Every Call supersedes the pending one; only the latest call inside a
// delay-wide window executes the action.
type Debouncer struct {
	delay  time.Duration
	action func()
	after  AfterFunc

	// timer callbacks fire on their own goroutine
	mu      sync.Mutex
	pending Timer
	seq     uint64
}

// New returns a Debouncer that runs action delay after the last Call.
func New(delay time.Duration, action func()) *Debouncer {
	return NewWithAfterFunc(delay, action, RealAfterFunc)
}

// NewWithAfterFunc is New with an injectable scheduler, used by tests to
// drive time explicitly.
func NewWithAfterFunc(delay time.Duration, action func(), after AfterFunc) *Debouncer {
	if after == nil {
		after = RealAfterFunc
	}
	return &Debouncer{delay: delay, action: action, after: after}
}

// Delay returns the coalescing window.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Call cancels any pending run and schedules a new one.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = d.after(d.delay, func() { d.fire(seq) })
}

// fire runs the action unless a newer Call replaced this one after the timer
// had already started firing.
func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.pending = nil
	d.mu.Unlock()

	d.action()
}
