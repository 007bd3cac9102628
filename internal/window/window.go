package window

import (
	"sort"
	"sync"

	"github.com/voltwatch/voltwatch/internal/telemetry"
)

// DefaultCapacity is the number of readings kept per battery when the
// configuration does not say otherwise.
const DefaultCapacity = 10

// Store keeps a bounded FIFO of the most recent readings per battery.
// Appends and snapshots for the same battery are serialized by that
// battery's lock; different batteries proceed without contention.
type Store struct {
	capacity int

	mu      sync.RWMutex
	windows map[string]*ring
}

// ring is one battery's fixed-capacity circular buffer.
type ring struct {
	mu    sync.Mutex
	buf   []telemetry.Reading
	head  int
	count int
}

// New creates a Store keeping up to capacity readings per battery.
// Capacity is per-store configuration, not per-battery.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		windows:  make(map[string]*ring),
	}
}

// Capacity returns the configured per-battery window size.
func (s *Store) Capacity() int { return s.capacity }

// Append adds r to batteryID's window, evicting the oldest reading when the
// window is full. O(1) per call.
func (s *Store) Append(batteryID string, r telemetry.Reading) {
	w := s.window(batteryID)
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.count < len(w.buf) {
		w.buf[(w.head+w.count)%len(w.buf)] = r
		w.count++
		return
	}
	// Full: overwrite the oldest slot and advance.
	w.buf[w.head] = r
	w.head = (w.head + 1) % len(w.buf)
}

// Snapshot returns a copy of batteryID's window, oldest first. The copy
// reflects the window at call time — never the live buffer. An unseen
// battery id yields an empty snapshot, not an error.
func (s *Store) Snapshot(batteryID string) []telemetry.Reading {
	s.mu.RLock()
	w, ok := s.windows[batteryID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]telemetry.Reading, 0, w.count)
	for i := 0; i < w.count; i++ {
		out = append(out, w.buf[(w.head+i)%len(w.buf)])
	}
	return out
}

// Len returns how many readings batteryID's window currently holds.
func (s *Store) Len(batteryID string) int {
	s.mu.RLock()
	w, ok := s.windows[batteryID]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Batteries returns the ids of every battery seen so far, sorted.
func (s *Store) Batteries() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.windows))
	for id := range s.windows {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// window returns batteryID's ring, creating it on first sight.
func (s *Store) window(batteryID string) *ring {
	s.mu.RLock()
	w, ok := s.windows[batteryID]
	s.mu.RUnlock()
	if ok {
		return w
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok = s.windows[batteryID]; ok {
		return w
	}
	w = &ring{buf: make([]telemetry.Reading, s.capacity)}
	s.windows[batteryID] = w
	return w
}
