package ecs

import "time"

// Frame is the per-tick evaluation context handed to every system. It doubles
// as the memoisation scope for Derived queries: every reader that forces a
// query through the same Frame observes the same value.
type Frame struct {
	Number  uint64
	Delta   time.Duration
	Elapsed time.Duration // total world time at the start of this frame
}

// Seconds returns Delta in seconds.
func (f *Frame) Seconds() float64 {
	if f == nil {
		return 0
	}
	return f.Delta.Seconds()
}

// Clock is the world time source. Elapsed time only moves forward.
type Clock struct {
	elapsed time.Duration
	frame   uint64
}

func NewClock() *Clock { return &Clock{} }

// TotalElapsedTime returns the world time accumulated so far.
func (c *Clock) TotalElapsedTime() time.Duration { return c.elapsed }

// Advance moves world time forward by dt and returns the context for the
// frame that starts now. Negative deltas are treated as zero.
func (c *Clock) Advance(dt time.Duration) *Frame {
	if dt < 0 {
		dt = 0
	}
	c.elapsed += dt
	c.frame++
	return &Frame{Number: c.frame, Delta: dt, Elapsed: c.elapsed}
}
