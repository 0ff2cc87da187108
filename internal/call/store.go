// internal/call/store.go
package call

import "github.com/tamzrod/cid-monitor/internal/ring"

// StoreCapacity is the number of records the volatile store holds.
const StoreCapacity = 200

// Store is the volatile call history. It keeps full records including
// duration; overflow evicts the oldest call. Single-actor: no locking.
type Store struct {
	ring *ring.Ring[Record]
}

// NewStore creates an empty store with the standard capacity.
func NewStore() *Store {
	return &Store{ring: ring.New[Record](StoreCapacity)}
}

// Len returns the number of records held.
func (s *Store) Len() int { return s.ring.Len() }

// Add appends a new call. Duration always starts absent; the matching
// end event sets it later via SetDuration.
func (s *Store) Add(rec Record) {
	rec.Seconds = 0
	s.ring.Append(rec)
}

// SetDuration finds the most recent record on line and sets its duration.
// The scan walks newest toward oldest and stops at the oldest held record.
// Returns false when no record on line is held; the store is unchanged
// (the wire protocol carries no call identifier, so an unmatched end
// event is dropped as a documented best-effort policy).
func (s *Store) SetDuration(line, seconds int) bool {
	if s.ring.Len() == 0 {
		return false
	}

	i := s.ring.Newest()
	for {
		rec := s.ring.Get(i)
		if rec.Line == line {
			rec.Seconds = seconds
			s.ring.Set(i, rec)
			return true
		}
		prev, ok := s.ring.Prev(i)
		if !ok {
			return false
		}
		i = prev
	}
}

// Newest returns the most recent record.
// Valid only when Len() > 0.
func (s *Store) Newest() Record {
	return s.ring.Get(s.ring.Newest())
}

// Recent returns up to n records ordered newest first.
func (s *Store) Recent(n int) []Record {
	if s.ring.Len() == 0 || n <= 0 {
		return nil
	}
	if n > s.ring.Len() {
		n = s.ring.Len()
	}

	out := make([]Record, 0, n)
	i := s.ring.Newest()
	for {
		out = append(out, s.ring.Get(i))
		if len(out) == n {
			return out
		}
		prev, ok := s.ring.Prev(i)
		if !ok {
			return out
		}
		i = prev
	}
}
