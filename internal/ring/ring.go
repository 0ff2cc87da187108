// internal/ring/ring.go
package ring

import "fmt"

// Ring is a fixed-capacity FIFO over a contiguous slot array.
// Overflow evicts the oldest slot; Append never fails.
// Index arithmetic only: no semantics, no IO.
type Ring[T any] struct {
	slots  []T
	oldest int
	newest int
	count  int
}

// New creates a ring with capacity fixed for its lifetime.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("ring: capacity must be > 0, got %d", capacity))
	}
	return &Ring[T]{slots: make([]T, capacity)}
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.slots) }

// Len returns the number of slots currently held, in [0, Cap].
func (r *Ring[T]) Len() int { return r.count }

// Append stores item in the next slot and returns its index.
// At capacity the oldest slot is overwritten.
func (r *Ring[T]) Append(item T) int {
	if r.count == 0 {
		r.oldest = 0
		r.newest = 0
		r.count = 1
		r.slots[0] = item
		return 0
	}

	r.newest = (r.newest + 1) % len(r.slots)
	if r.count == len(r.slots) {
		r.oldest = (r.oldest + 1) % len(r.slots)
	} else {
		r.count++
	}
	r.slots[r.newest] = item
	return r.newest
}

// Get returns the item at index i.
// i must be inside the currently-held window.
func (r *Ring[T]) Get(i int) T {
	r.mustHold(i)
	return r.slots[i]
}

// Set replaces the item at index i in place.
// i must be inside the currently-held window.
func (r *Ring[T]) Set(i int, item T) {
	r.mustHold(i)
	r.slots[i] = item
}

// Oldest returns the index of the oldest held item.
// Undefined when empty: panics.
func (r *Ring[T]) Oldest() int {
	if r.count == 0 {
		panic("ring: Oldest on empty ring")
	}
	return r.oldest
}

// Newest returns the index of the most recently appended item.
// Undefined when empty: panics.
func (r *Ring[T]) Newest() int {
	if r.count == 0 {
		panic("ring: Newest on empty ring")
	}
	return r.newest
}

// Prev walks one step from i toward the oldest item.
// Returns false when i is already the oldest.
func (r *Ring[T]) Prev(i int) (int, bool) {
	r.mustHold(i)
	if i == r.oldest {
		return 0, false
	}
	return (i - 1 + len(r.slots)) % len(r.slots), true
}

// Restore force-sets the bookkeeping from externally persisted state.
// Caller is responsible for having loaded the matching slot contents.
func (r *Ring[T]) Restore(oldest, newest, count int) error {
	c := len(r.slots)
	if count < 0 || count > c {
		return fmt.Errorf("ring: restored count %d out of range [0,%d]", count, c)
	}
	if count > 0 {
		if oldest < 0 || oldest >= c || newest < 0 || newest >= c {
			return fmt.Errorf("ring: restored indices oldest=%d newest=%d out of range [0,%d)", oldest, newest, c)
		}
		if (oldest+count-1)%c != newest {
			return fmt.Errorf("ring: restored indices inconsistent: oldest=%d newest=%d count=%d", oldest, newest, count)
		}
	}
	r.oldest = oldest
	r.newest = newest
	r.count = count
	return nil
}

// mustHold fails fast on access outside the held window.
// A bad index here means a corrupted invariant, not bad input.
func (r *Ring[T]) mustHold(i int) {
	if i < 0 || i >= len(r.slots) {
		panic(fmt.Sprintf("ring: index %d outside slot array [0,%d)", i, len(r.slots)))
	}
	if r.count == 0 {
		panic(fmt.Sprintf("ring: index %d accessed on empty ring", i))
	}
	// Distance from oldest, walking forward, must be < count.
	dist := (i - r.oldest + len(r.slots)) % len(r.slots)
	if dist >= r.count {
		panic(fmt.Sprintf("ring: index %d outside held window (oldest=%d count=%d)", i, r.oldest, r.count))
	}
}
