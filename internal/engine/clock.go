package engine

import "sync/atomic"

// Clock numbers the batches an Engine runs.
//
// Every Run or RunFresh takes the next number, including batches that
// fail, so log lines and results from one engine can be correlated.
// Numbers are per process and restart at 1.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first batch is 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next batch number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}
