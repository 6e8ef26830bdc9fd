package console

import (
	"sync"
	"time"
)

// Debouncer delivers the last value pushed once no new value has arrived
// for its delay. Intermediate values are dropped.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(T)
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// NewDebouncer returns a Debouncer that calls fn on its own goroutine.
func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Push restarts the delay with v as the pending value.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := !d.stopped && gen == d.gen
		d.mu.Unlock()
		if current {
			d.fn(v)
		}
	})
}

// Stop cancels any pending delivery. Later pushes are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
