package cache

import "iter"

// Container is a multimap: several values may be stored under equal keys.
// Keys match by ==.
type Container[K comparable, V any] interface {
	// Len returns the number of entries.
	Len() int

	// Insert adds an entry. Existing entries with the same key are kept.
	Insert(key K, value V)

	// Find returns the first value stored under key.
	Find(key K) (V, bool)

	// Remove removes and returns the first value stored under key.
	Remove(key K) (V, bool)

	// RemoveFunc removes and returns the first entry for which match
	// returns true.
	RemoveFunc(match func(K, V) bool) (K, V, bool)

	// All iterates over every entry. The container must not be modified
	// during iteration.
	All() iter.Seq2[K, V]

	// Clear removes all entries.
	Clear()
}
