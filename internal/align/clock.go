package align

import (
	"math"
	"sync/atomic"
)

// Clock holds the playback position in seconds. The zero value reads 0.
type Clock struct {
	bits atomic.Uint64
}

// Set stores the playback position.
func (c *Clock) Set(seconds float64) {
	c.bits.Store(math.Float64bits(seconds))
}

// Seconds loads the playback position.
func (c *Clock) Seconds() float64 {
	return math.Float64frombits(c.bits.Load())
}
