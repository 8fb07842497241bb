package table

import (
	"sync"
	"time"
)

// DefaultSearchDelay is how long the search input must stay quiet before
// the term is applied.
const DefaultSearchDelay = 450 * time.Millisecond

// Debouncer delays applying a search term until no new term has been pushed
// for the configured delay. apply runs on the timer goroutine.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	apply   func(term string)
	timer   *time.Timer
	pending string
	armed   bool
	gen     uint64
}

func NewDebouncer(delay time.Duration, apply func(term string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &Debouncer{delay: delay, apply: apply}
}

// Push records the latest raw term and restarts the timer.
func (d *Debouncer) Push(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = term
	d.armed = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Flush applies a pending term immediately. It reports whether one was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	term, armed := d.pending, d.armed
	d.armed = false
	d.mu.Unlock()

	if armed {
		d.apply(term)
	}
	return armed
}

// Stop discards any pending term.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.armed = false
}

// fire ignores timers superseded by a later Push.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	term, armed := d.pending, d.armed
	d.armed = false
	d.mu.Unlock()

	if armed {
		d.apply(term)
	}
}
