package signals

// Signal state shared by all protocol adapters.
//
// A signal is a named JSON-compatible scalar (string, number, boolean or
// null). The store holds the current value of every known signal; writes are
// applied as atomic batches and readers never observe a half-applied batch.

import (
	"reflect"
	"sync"
)

// ChangeEvent records the signals whose values changed in one committed
// write batch. Timestamps are strictly increasing in commit order.
type ChangeEvent struct {
	Changed   map[string]any
	Timestamp uint64
}

// Observer receives change events in commit order. Implementations must not
// block and must not call back into the store; delivery happens inside the
// store's critical section so that commit order and queue order agree.
type Observer interface {
	SignalsChanged(ev ChangeEvent)
}

// Store is the in-memory signal state for one PLC endpoint.
type Store struct {
	mu        sync.RWMutex
	entries   map[string]any
	observers []Observer
	clock     *Clock
}

// NewStore creates an empty signal store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]any),
		clock:   NewClock(),
	}
}

// Get returns the current value of every named signal that exists in the
// store. Unknown names are silently omitted; Get never fails.
func (s *Store) Get(names []string) map[string]any {
	out := make(map[string]any, len(names))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, name := range names {
		if value, ok := s.entries[name]; ok {
			out[name] = value
		}
	}
	return out
}

// Snapshot returns a copy of the full signal state.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.entries))
	for name, value := range s.entries {
		out[name] = value
	}
	return out
}

// Len returns the number of known signals.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Apply atomically merges writes into the store. Keys whose value actually
// changed (or that are new) make up the returned ChangeEvent; a batch that
// changes nothing returns nil and fires no event. Concurrent Apply calls are
// serialized, and observers see events in commit order.
func (s *Store) Apply(writes map[string]any) *ChangeEvent {
	if len(writes) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := make(map[string]any)
	for name, value := range writes {
		if prev, ok := s.entries[name]; ok && valueEqual(prev, value) {
			continue
		}
		s.entries[name] = value
		changed[name] = value
	}

	if len(changed) == 0 {
		return nil
	}

	ev := ChangeEvent{Changed: changed, Timestamp: s.clock.Now()}
	for _, o := range s.observers {
		o.SignalsChanged(ev)
	}
	return &ev
}

// AddObserver registers an observer for future change events. The current
// state, when non-empty, is delivered to the new observer immediately as one
// synthetic event so it starts from a complete picture.
func (s *Store) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observers = append(s.observers, o)
	if len(s.entries) == 0 {
		return
	}
	snapshot := make(map[string]any, len(s.entries))
	for name, value := range s.entries {
		snapshot[name] = value
	}
	o.SignalsChanged(ChangeEvent{Changed: snapshot, Timestamp: s.clock.Now()})
}

// valueEqual compares two signal values. Values are JSON scalars in practice,
// but a controller can send anything; DeepEqual never panics on the
// non-comparable cases.
func valueEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
