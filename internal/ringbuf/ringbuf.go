// Package ringbuf provides a fixed-capacity circular buffer indexed from the
// most recently pushed element.
package ringbuf

// Ring is a circular buffer of at most Cap() elements. Index 0 is the newest
// element; PushFront on a full ring drops the oldest one.
//
// Pointers returned by At and PushFront stay valid until the slot is
// overwritten, i.e. for Cap()-1 further pushes.
//
// Ring is not safe for concurrent use.
type Ring[T any] struct {
	buf   []T
	front int // slot holding index 0
	n     int
}

// New creates an empty ring with the given capacity.
// It panics if capacity is not positive.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("ringbuf: capacity must be positive")
	}
	return &Ring[T]{buf: make([]T, capacity), front: capacity - 1}
}

// Len returns the number of elements in the ring.
func (r *Ring[T]) Len() int { return r.n }

// Cap returns the capacity of the ring.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Full reports whether the next PushFront drops an element.
func (r *Ring[T]) Full() bool { return r.n == len(r.buf) }

// PushFront inserts v as the newest element and returns a pointer to its
// slot. The oldest element is dropped when the ring is full.
func (r *Ring[T]) PushFront(v T) *T {
	r.front++
	if r.front == len(r.buf) {
		r.front = 0
	}
	r.buf[r.front] = v
	if r.n < len(r.buf) {
		r.n++
	}
	return &r.buf[r.front]
}

// PopBack removes the oldest element. It reports false on an empty ring.
func (r *Ring[T]) PopBack() (T, bool) {
	var zero T
	if r.n == 0 {
		return zero, false
	}
	i := r.slot(r.n - 1)
	v := r.buf[i]
	r.buf[i] = zero
	r.n--
	return v, true
}

// At returns a pointer to the element pushed i pushes ago.
// It panics if i is out of range.
func (r *Ring[T]) At(i int) *T {
	if i < 0 || i >= r.n {
		panic("ringbuf: index out of range")
	}
	return &r.buf[r.slot(i)]
}

// Front returns the newest element, or nil on an empty ring.
func (r *Ring[T]) Front() *T {
	if r.n == 0 {
		return nil
	}
	return &r.buf[r.front]
}

// Clear removes all elements.
func (r *Ring[T]) Clear() {
	clear(r.buf)
	r.front = len(r.buf) - 1
	r.n = 0
}

func (r *Ring[T]) slot(i int) int {
	s := r.front - i
	if s < 0 {
		s += len(r.buf)
	}
	return s
}
