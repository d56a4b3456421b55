package tracker

import (
	"math"
	"time"
)

// pollBackoff stretches the poll interval after consecutive transport
// failures so a flapping backend is not hammered, and snaps back to the
// base interval on the first successful observation. A poll failure never
// fails the task; the next authoritative read settles everything.
type pollBackoff struct {
	base       time.Duration
	multiplier float64
	max        time.Duration
	failures   int
}

func newPollBackoff(base time.Duration) *pollBackoff {
	return &pollBackoff{
		base:       base,
		multiplier: 2.0,
		max:        30 * time.Second,
	}
}

// next returns the delay until the following poll attempt.
func (b *pollBackoff) next() time.Duration {
	if b.failures == 0 {
		return b.base
	}
	delay := float64(b.base) * math.Pow(b.multiplier, float64(b.failures))
	if delay > float64(b.max) {
		return b.max
	}
	return time.Duration(delay)
}

func (b *pollBackoff) failure() { b.failures++ }
func (b *pollBackoff) reset()   { b.failures = 0 }
