package session

import (
	"sync"
	"time"

	"github.com/matzehuels/schemaflow/pkg/diagram"
)

// Coalescer batches layout writes. Each Schedule replaces the pending
// snapshot and restarts the window; the snapshot is written once the window
// elapses with no further Schedule. Writes never overlap and happen in
// scheduling order.
type Coalescer struct {
	window time.Duration
	write  func(diagram.LayoutRecord) error

	writeMu sync.Mutex // serialises take+write

	mu      sync.Mutex
	timer   *time.Timer
	pending diagram.LayoutRecord
	has     bool
	stopped bool
}

// NewCoalescer returns a Coalescer that calls write after window of quiet.
// write runs on a timer goroutine, or on the caller's goroutine for Flush and Stop.
func NewCoalescer(window time.Duration, write func(diagram.LayoutRecord) error) *Coalescer {
	return &Coalescer{window: window, write: write}
}

// Schedule makes rec the pending snapshot and restarts the window.
func (c *Coalescer) Schedule(rec diagram.LayoutRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.pending = rec.Clone()
	c.has = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.window, c.fire)
}

// Replace swaps the pending snapshot, if there is one, without restarting
// the window. It reports whether a snapshot was pending.
func (c *Coalescer) Replace(rec diagram.LayoutRecord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.has {
		return false
	}
	c.pending = rec.Clone()
	return true
}

// Cancel drops the pending snapshot without writing it. A write already in
// flight is allowed to finish; Cancel returns only after it has, so a store
// operation issued afterwards is ordered behind it.
func (c *Coalescer) Cancel() {
	c.mu.Lock()
	c.stopTimer()
	c.pending, c.has = nil, false
	c.mu.Unlock()

	// Wait out any in-flight write.
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
}

// Pending reports whether a snapshot is waiting to be written.
func (c *Coalescer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.has
}

// Flush writes the pending snapshot now. It returns the write error, or nil
// when nothing was pending.
func (c *Coalescer) Flush() error {
	c.mu.Lock()
	c.stopTimer()
	c.mu.Unlock()
	return c.writePending()
}

// Stop flushes and disables further scheduling.
func (c *Coalescer) Stop() error {
	c.mu.Lock()
	c.stopped = true
	c.stopTimer()
	c.mu.Unlock()
	return c.writePending()
}

func (c *Coalescer) fire() {
	_ = c.writePending()
}

func (c *Coalescer) writePending() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	rec, ok := c.pending, c.has
	c.pending, c.has = nil, false
	c.mu.Unlock()

	if !ok {
		return nil
	}
	return c.write(rec)
}

func (c *Coalescer) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
