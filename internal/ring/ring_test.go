// internal/ring/ring_test.go
package ring

import "testing"

func TestAppend_FirstItem(t *testing.T) {
	r := New[int](4)

	idx := r.Append(10)
	if idx != 0 {
		t.Fatalf("first append index = %d, want 0", idx)
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	if r.Oldest() != 0 || r.Newest() != 0 {
		t.Fatalf("oldest=%d newest=%d, want 0/0", r.Oldest(), r.Newest())
	}
}

func TestAppend_FillsThenEvicts(t *testing.T) {
	r := New[int](3)

	for i := 0; i < 3; i++ {
		r.Append(i)
	}
	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}

	// Fourth append overwrites item 0.
	r.Append(3)
	if r.Len() != 3 {
		t.Fatalf("Len after eviction = %d, want 3", r.Len())
	}
	if got := r.Get(r.Oldest()); got != 1 {
		t.Fatalf("oldest item = %d, want 1", got)
	}
	if got := r.Get(r.Newest()); got != 3 {
		t.Fatalf("newest item = %d, want 3", got)
	}
}

func TestPrev_WalksToOldestThenStops(t *testing.T) {
	r := New[int](4)
	for i := 0; i < 6; i++ {
		r.Append(i)
	}

	// Held window is 2,3,4,5.
	want := []int{5, 4, 3, 2}
	i := r.Newest()
	for n := 0; ; n++ {
		if got := r.Get(i); got != want[n] {
			t.Fatalf("walk step %d = %d, want %d", n, got, want[n])
		}
		prev, ok := r.Prev(i)
		if !ok {
			if n != len(want)-1 {
				t.Fatalf("walk stopped after %d steps, want %d", n+1, len(want))
			}
			break
		}
		i = prev
	}
}

func TestSet_InPlace(t *testing.T) {
	r := New[string](2)
	r.Append("a")
	idx := r.Append("b")

	r.Set(idx, "B")
	if got := r.Get(idx); got != "B" {
		t.Fatalf("Get after Set = %q, want %q", got, "B")
	}
	if got := r.Get(r.Oldest()); got != "a" {
		t.Fatalf("oldest disturbed by Set: %q", got)
	}
}

func TestGet_OutsideWindowPanics(t *testing.T) {
	r := New[int](4)
	r.Append(1)
	r.Append(2)

	defer func() {
		if recover() == nil {
			t.Fatal("Get outside held window did not panic")
		}
	}()
	r.Get(3)
}

func TestOldest_EmptyPanics(t *testing.T) {
	r := New[int](4)

	defer func() {
		if recover() == nil {
			t.Fatal("Oldest on empty ring did not panic")
		}
	}()
	r.Oldest()
}

func TestRestore_RejectsInconsistentIndices(t *testing.T) {
	r := New[int](8)

	if err := r.Restore(0, 3, 4); err != nil {
		t.Fatalf("consistent restore rejected: %v", err)
	}
	if err := r.Restore(0, 3, 5); err == nil {
		t.Fatal("inconsistent restore accepted")
	}
	if err := r.Restore(0, 0, 9); err == nil {
		t.Fatal("restore with count > capacity accepted")
	}
}
