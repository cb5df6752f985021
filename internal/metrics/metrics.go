package metrics

// Counters for the signal-exchange endpoint, served as plaintext over the
// metrics listener.

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Sink collects endpoint counters.
type Sink struct {
	mu       sync.RWMutex
	counters map[string]uint64
}

// NewSink creates an empty Sink.
func NewSink() *Sink {
	return &Sink{counters: map[string]uint64{}}
}

// Counter names recorded by the server.
const (
	RequestsReceived     = "requests_received"
	RequestsDropped      = "requests_dropped"
	RepliesSent          = "replies_sent"
	WritesApplied        = "writes_applied"
	NotificationsSent    = "notifications_sent"
	NotificationsSplit   = "notifications_split"
	NotificationsDropped = "notifications_dropped"
	LockstepRequests     = "lockstep_requests"
	LockstepMalformed    = "lockstep_malformed"
)

// Inc adds one to the named counter.
func (s *Sink) Inc(name string) {
	s.Add(name, 1)
}

// Add adds n to the named counter.
func (s *Sink) Add(name string, n uint64) {
	s.mu.Lock()
	s.counters[name] += n
	s.mu.Unlock()
}

// Get returns the current value of the named counter.
func (s *Sink) Get(name string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[name]
}

// Snapshot returns a copy of all counters.
func (s *Sink) Snapshot() map[string]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]uint64, len(s.counters))
	for name, v := range s.counters {
		out[name] = v
	}
	return out
}

// Render formats the counters in prometheus-style plaintext, sorted by name
// so scrapes are diffable.
func (s *Sink) Render(serverName string) string {
	snap := s.Snapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "plcsim_up{server=%q} 1\n", serverName)
	for _, name := range names {
		fmt.Fprintf(&b, "plcsim_%s{server=%q} %d\n", name, serverName, snap[name])
	}
	return b.String()
}
