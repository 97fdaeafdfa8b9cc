package engine

// Clock is the monotonic logical clock of one ranking session.
//
// Every event reported to a Recorder is stamped with a strictly increasing
// seq from this clock, so journal and trace order never depend on wall time
// and replaying the same answers yields identical seqs.
//
// A Clock belongs to a single session and is not safe for concurrent use.
type Clock struct {
	seq int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next increments the clock and returns the new value.
// The first call on a new clock returns 1.
func (c *Clock) Next() int64 {
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq
}
