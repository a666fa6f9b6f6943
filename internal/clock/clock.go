// Package clock provides the simulation's synthetic time source: a
// counter advanced by a fixed step per event so that timestamps are
// seed-independent and deterministic (spec §4.G step 4, §5). The
// Simulate-mode generator creates and owns its own instance.
package clock

import "time"

// Clock advances a monotonic counter by a fixed step on each Tick. It
// never reads the wall clock, so an optional real-time sleep elsewhere
// in the pipeline can never perturb it.
type Clock struct {
	step    time.Duration
	current time.Time
}

// New creates a Clock starting at start and advancing by step on each
// call to Tick.
func New(start time.Time, step time.Duration) *Clock {
	return &Clock{step: step, current: start}
}

// Now returns the current simulated time without advancing it.
func (c *Clock) Now() time.Time {
	return c.current
}

// Tick advances the clock by its step and returns the new time.
func (c *Clock) Tick() time.Time {
	c.current = c.current.Add(c.step)
	return c.current
}
