package workspace

import (
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/standardbeagle/vbsym/internal/debug"
)

// Debouncer coalesces requests per key. A key's flush runs once, with the
// latest value, after no request for that key arrived for the wait period.
type Debouncer[T any] struct {
	wait  time.Duration
	flush func(key string, value T)

	mu       sync.Mutex
	timers   map[string]func(func())
	pending  map[string]T
	stopped  bool
	inflight sync.WaitGroup
}

// NewDebouncer creates a debouncer calling flush for each settled key.
func NewDebouncer[T any](wait time.Duration, flush func(key string, value T)) *Debouncer[T] {
	return &Debouncer[T]{
		wait:    wait,
		flush:   flush,
		timers:  make(map[string]func(func())),
		pending: make(map[string]T),
	}
}

// Request records value for key and restarts the key's wait period.
// Requests after Stop are dropped.
func (d *Debouncer[T]) Request(key string, value T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending[key] = value
	fn, ok := d.timers[key]
	if !ok {
		fn = debounce.New(d.wait)
		d.timers[key] = fn
	}
	fn(func() { d.fire(key) })
}

func (d *Debouncer[T]) fire(key string) {
	d.mu.Lock()
	value, ok := d.pending[key]
	if !ok || d.stopped {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.inflight.Add(1)
	d.mu.Unlock()

	defer d.inflight.Done()
	debug.LogWorkspace("debounced flush of %s\n", key)
	d.flush(key, value)
}

// Cancel drops the pending value for key, if any.
func (d *Debouncer[T]) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pending, key)
}

// Pending reports how many keys wait for a flush.
func (d *Debouncer[T]) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels pending flushes and waits for running ones to return.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, fn := range d.timers {
		// replaces the armed callback; the timer can no longer flush
		fn(func() {})
	}
	clear(d.pending)
	d.mu.Unlock()

	d.inflight.Wait()
}
