package cache

import (
	"iter"
	"slices"
)

// Hashed is a Container backed by a map from key to the values inserted
// under it.
type Hashed[K comparable, V any] struct {
	buckets map[K][]V
	n       int
}

var _ Container[int, int] = (*Hashed[int, int])(nil)

// NewHashed creates an empty hashed container.
func NewHashed[K comparable, V any]() *Hashed[K, V] {
	return &Hashed[K, V]{buckets: make(map[K][]V)}
}

// Len returns the number of entries.
func (h *Hashed[K, V]) Len() int { return h.n }

// Insert adds an entry after the ones already stored under key.
func (h *Hashed[K, V]) Insert(key K, value V) {
	h.buckets[key] = append(h.buckets[key], value)
	h.n++
}

// Find returns the oldest value stored under key.
func (h *Hashed[K, V]) Find(key K) (V, bool) {
	if vs := h.buckets[key]; len(vs) > 0 {
		return vs[0], true
	}
	var zero V
	return zero, false
}

// Remove removes and returns the oldest value stored under key.
func (h *Hashed[K, V]) Remove(key K) (V, bool) {
	vs := h.buckets[key]
	if len(vs) == 0 {
		var zero V
		return zero, false
	}
	v := vs[0]
	h.removeAt(key, vs, 0)
	return v, true
}

// RemoveFunc removes and returns an entry accepted by match. Buckets are
// visited in unspecified order; within a bucket the oldest entry wins.
func (h *Hashed[K, V]) RemoveFunc(match func(K, V) bool) (K, V, bool) {
	for k, vs := range h.buckets {
		for i, v := range vs {
			if match(k, v) {
				h.removeAt(k, vs, i)
				return k, v, true
			}
		}
	}
	var (
		zk K
		zv V
	)
	return zk, zv, false
}

// All iterates over every entry.
func (h *Hashed[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for k, vs := range h.buckets {
			for _, v := range vs {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// Clear removes all entries.
func (h *Hashed[K, V]) Clear() {
	clear(h.buckets)
	h.n = 0
}

func (h *Hashed[K, V]) removeAt(key K, vs []V, i int) {
	vs = slices.Delete(vs, i, i+1)
	if len(vs) == 0 {
		delete(h.buckets, key)
	} else {
		h.buckets[key] = vs
	}
	h.n--
}
