package kvstore

import "sync/atomic"

// Clock hands out the seq numbers that define storage-natural order.
//
// Every newly inserted record is stamped with a strictly increasing seq.
// Replacing a record keeps its seq, so order reflects first insertion.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// The store still serializes writers, so only one goroutine typically
// calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used on open to resume from the persisted high-water mark.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
