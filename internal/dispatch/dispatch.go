// Package dispatch marshals work from reader goroutines onto a single
// consumer goroutine.
//
// All mutation of supervisor-visible state happens inside thunks drained by
// Run. Producers only enqueue; they never touch shared state, which keeps the
// hot path lock-free at the cost of one queue hop per event. A periodic tick
// forces a redraw while a session is running so polling observers stay
// current even when the worker is quiet.
package dispatch

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultTickInterval is the redraw cadence while a session runs.
const DefaultTickInterval = 500 * time.Millisecond

// Dispatcher is a bounded FIFO of thunks plus the consumer drain loop.
type Dispatcher struct {
	work     chan func()
	interval time.Duration
	redraw   func()

	running     atomic.Bool
	finalRedraw atomic.Bool
}

// New constructs a dispatcher. redraw is invoked on the consumer goroutine
// after each drain and on every tick while a session is running; it may be
// nil.
func New(capacity int, interval time.Duration, redraw func()) *Dispatcher {
	if capacity <= 0 {
		capacity = 256
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if redraw == nil {
		redraw = func() {}
	}
	return &Dispatcher{
		work:     make(chan func(), capacity),
		interval: interval,
		redraw:   redraw,
	}
}

// Enqueue submits a thunk for execution on the consumer goroutine. It blocks
// when the queue is full, applying backpressure to the producer. Order is
// preserved per producer.
func (d *Dispatcher) Enqueue(fn func()) {
	if fn == nil {
		return
	}
	d.work <- fn
}

// SetRunning toggles the periodic redraw tick. Turning it off schedules one
// final redraw so observers see the terminal state.
func (d *Dispatcher) SetRunning(running bool) {
	was := d.running.Swap(running)
	if was && !running {
		d.finalRedraw.Store(true)
	}
}

// Run drains the queue until ctx is canceled. It is the single consumer; all
// enqueued thunks execute on the calling goroutine, in FIFO order.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-d.work:
			fn()
			d.drainPending()
			d.redraw()
		case <-ticker.C:
			if d.running.Load() {
				d.redraw()
			} else if d.finalRedraw.CompareAndSwap(true, false) {
				d.redraw()
			}
		}
	}
}

// drainPending executes whatever is already queued without blocking, so a
// burst of events coalesces into one redraw.
func (d *Dispatcher) drainPending() {
	for {
		select {
		case fn := <-d.work:
			fn()
		default:
			return
		}
	}
}
