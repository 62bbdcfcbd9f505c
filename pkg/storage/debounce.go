package storage

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of calls into the last one, run once the window
// has passed without a newer call. Each caller owns its own Debouncer; there
// is no shared timer.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	seq     uint64
	stopped bool
}

// NewDebouncer returns a trailing-edge debouncer. A window <= 0 runs calls
// immediately.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Window returns the quiet period.
func (d *Debouncer) Window() time.Duration { return d.window }

// Trigger schedules fn, superseding any call still waiting. It reports false
// once the debouncer is stopped.
func (d *Debouncer) Trigger(fn func()) bool {
	if fn == nil {
		return false
	}

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return false
	}
	d.resetLocked()
	if d.window <= 0 {
		d.mu.Unlock()
		fn()
		return true
	}
	d.pending = fn
	seq := d.seq
	d.timer = time.AfterFunc(d.window, func() { d.fire(seq) })
	d.mu.Unlock()
	return true
}

// Flush runs the waiting call now, on the caller's goroutine.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	d.resetLocked()
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Cancel drops the waiting call.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	had := d.pending != nil
	d.resetLocked()
	return had
}

// Stop cancels the waiting call and refuses further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
	d.stopped = true
}

// Pending reports whether a call is waiting for its window to pass.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

// resetLocked invalidates the scheduled call. Callers hold d.mu.
func (d *Debouncer) resetLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.seq++
}
