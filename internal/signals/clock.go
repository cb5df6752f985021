package signals

import (
	"sync"
	"time"
)

// Clock produces strictly increasing uint64 timestamps in monotonic
// nanoseconds. When the wall of the monotonic clock has not advanced between
// calls, the previous value is bumped by one so that two events can never
// carry the same timestamp.
type Clock struct {
	mu    sync.Mutex
	epoch time.Time
	last  uint64
}

// NewClock creates a clock whose timestamps count from now.
func NewClock() *Clock {
	return &Clock{epoch: time.Now()}
}

// Now returns the next timestamp.
func (c *Clock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := uint64(time.Since(c.epoch).Nanoseconds())
	if ts <= c.last {
		ts = c.last + 1
	}
	c.last = ts
	return ts
}
