// Package cache provides small associative containers for per-frame GPU
// resource bookkeeping.
//
// Render graphs keep far fewer live or cached resources than the point
// (around a thousand entries) where a tree or hash map pays for itself, so
// the default container is a flat list matched by linear scan:
//
//	c := cache.NewList[Key, Entry]()
//	c.Insert(k, e)
//	e, ok := c.Remove(k) // first entry inserted under k
//
// # List[K, V]
//
// A slice of key/value pairs kept in insertion order. Find, Remove and
// RemoveFunc scan from the oldest entry, so "first match" means "oldest
// match". Several entries may share a key.
//
// # Hashed[K, V]
//
// A map from key to the values inserted under it, for callers that expect
// many entries. Entries with the same key keep their insertion order;
// iteration order across keys is unspecified.
//
// Both implement [Container] and give identical results for Find and
// Remove. Neither is safe for concurrent use.
package cache
