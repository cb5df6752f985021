package signals

import (
	"sync"
	"testing"
)

// TestClockStrictlyIncreasing tests that consecutive reads never repeat
func TestClockStrictlyIncreasing(t *testing.T) {
	clock := NewClock()

	var last uint64
	for i := 0; i < 10000; i++ {
		now := clock.Now()
		if now <= last {
			t.Fatalf("Now() = %d, not greater than previous %d", now, last)
		}
		last = now
	}
}

// TestClockConcurrent tests uniqueness under concurrent readers
func TestClockConcurrent(t *testing.T) {
	clock := NewClock()

	var mu sync.Mutex
	seen := make(map[uint64]bool)
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]uint64, 0, 1000)
			for i := 0; i < 1000; i++ {
				local = append(local, clock.Now())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, ts := range local {
				if seen[ts] {
					t.Errorf("duplicate timestamp %d", ts)
					return
				}
				seen[ts] = true
			}
		}()
	}
	wg.Wait()
}
