package ringbuf

import "testing"

func TestRingOrdering(t *testing.T) {
	r := New[int](4)
	for n := 1; n <= 10; n++ {
		r.PushFront(n)

		wantLen := min(n, 4)
		if r.Len() != wantLen {
			t.Fatalf("after %d pushes Len() = %d, want %d", n, r.Len(), wantLen)
		}
		for k := 0; k < wantLen; k++ {
			if got := *r.At(k); got != n-k {
				t.Errorf("after %d pushes At(%d) = %d, want %d", n, k, got, n-k)
			}
		}
	}
}

func TestRingPopBack(t *testing.T) {
	r := New[string](3)
	if _, ok := r.PopBack(); ok {
		t.Fatal("PopBack() on empty ring reported ok")
	}

	r.PushFront("a")
	r.PushFront("b")
	r.PushFront("c")
	r.PushFront("d") // drops "a"

	for _, want := range []string{"b", "c", "d"} {
		got, ok := r.PopBack()
		if !ok || got != want {
			t.Errorf("PopBack() = %q, %v; want %q, true", got, ok, want)
		}
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after draining, want 0", r.Len())
	}
}

func TestRingPushFrontPointer(t *testing.T) {
	r := New[int](2)
	p := r.PushFront(1)
	*p = 5
	if got := *r.Front(); got != 5 {
		t.Errorf("Front() = %d, want 5", got)
	}
	r.PushFront(2)
	if got := *r.At(1); got != 5 {
		t.Errorf("At(1) = %d, want 5 (slot not yet overwritten)", got)
	}
}

func TestRingClear(t *testing.T) {
	r := New[int](3)
	r.PushFront(1)
	r.PushFront(2)
	r.Clear()
	if r.Len() != 0 || r.Front() != nil {
		t.Fatalf("Clear() left Len() = %d", r.Len())
	}
	r.PushFront(9)
	if got := *r.At(0); got != 9 {
		t.Errorf("At(0) = %d, want 9", got)
	}
	if r.Full() {
		t.Error("Full() = true with one element in a 3-ring")
	}
}

func TestRingAtOutOfRange(t *testing.T) {
	r := New[int](2)
	r.PushFront(1)
	defer func() {
		if recover() == nil {
			t.Error("At(1) on a one-element ring did not panic")
		}
	}()
	r.At(1)
}
