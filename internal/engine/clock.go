package engine

import "sync/atomic"

// Clock issues strictly increasing sequence numbers. Sessions stamp each
// Change with one, and the form builder draws row identities from one.
// Safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock whose first Next is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt returns a clock whose first Next is start+1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new value.
func (c *Clock) Next() int64 { return c.seq.Add(1) }

// Current returns the last value issued, or the start value.
func (c *Clock) Current() int64 { return c.seq.Load() }
