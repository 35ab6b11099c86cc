package cache

import (
	"iter"
	"slices"
)

// entry is one key/value pair of a List.
type entry[K comparable, V any] struct {
	key   K
	value V
}

// List is a Container backed by a slice and matched by linear scan.
type List[K comparable, V any] struct {
	entries []entry[K, V]
}

var _ Container[int, int] = (*List[int, int])(nil)

// NewList creates an empty list.
func NewList[K comparable, V any]() *List[K, V] {
	return &List[K, V]{}
}

// Len returns the number of entries.
func (l *List[K, V]) Len() int { return len(l.entries) }

// Insert appends an entry.
func (l *List[K, V]) Insert(key K, value V) {
	l.entries = append(l.entries, entry[K, V]{key: key, value: value})
}

// Find returns the oldest value stored under key.
func (l *List[K, V]) Find(key K) (V, bool) {
	if i := l.index(key); i >= 0 {
		return l.entries[i].value, true
	}
	var zero V
	return zero, false
}

// Remove removes and returns the oldest value stored under key.
func (l *List[K, V]) Remove(key K) (V, bool) {
	i := l.index(key)
	if i < 0 {
		var zero V
		return zero, false
	}
	v := l.entries[i].value
	l.entries = slices.Delete(l.entries, i, i+1)
	return v, true
}

// RemoveFunc removes and returns the oldest entry accepted by match.
func (l *List[K, V]) RemoveFunc(match func(K, V) bool) (K, V, bool) {
	for i, e := range l.entries {
		if match(e.key, e.value) {
			l.entries = slices.Delete(l.entries, i, i+1)
			return e.key, e.value, true
		}
	}
	var (
		zk K
		zv V
	)
	return zk, zv, false
}

// All iterates over the entries from oldest to newest.
func (l *List[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range l.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Clear removes all entries and keeps the backing storage.
func (l *List[K, V]) Clear() {
	clear(l.entries)
	l.entries = l.entries[:0]
}

func (l *List[K, V]) index(key K) int {
	return slices.IndexFunc(l.entries, func(e entry[K, V]) bool { return e.key == key })
}
