/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package objectcache holds protocol sessions in memory, keyed by thread id or by legacy numeric handle.
//
// Values stored in a Cache are treated as immutable: Get hands out the stored value itself, so callers
// that want to change a session take a detached copy with GetCloned and commit it back with Insert.
// Each call locks the map for its own duration only. A read-modify-write sequence is therefore
// last-writer-wins when two callers advance the same key concurrently.
package objectcache

import (
	"sync"

	"golang.org/x/exp/maps"

	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
)

// CloneFunc returns a copy of v that shares no mutable state with it.
type CloneFunc[V any] func(v V) V

// Cache is a concurrency-safe key/value store of sessions.
type Cache[K comparable, V any] struct {
	name    string
	clone   CloneFunc[V]
	missing errkind.Kind

	mu      sync.RWMutex
	entries map[K]V
}

// New returns an empty Cache. name is used in error messages.
func New[K comparable, V any](name string, clone CloneFunc[V]) *Cache[K, V] {
	return &Cache[K, V]{
		name:    name,
		clone:   clone,
		missing: errkind.NotFound,
		entries: make(map[K]V),
	}
}

// Insert stores value under key, overwriting any previous value, and returns key.
func (c *Cache[K, V]) Insert(key K, value V) K {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = value

	return key
}

// Get returns the stored value. It must not be mutated.
func (c *Cache[K, V]) Get(key K) (V, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.entries[key]
	if !ok {
		return v, errkind.New(c.missing, "%s: no entry for key [%v]", c.name, key)
	}

	return v, nil
}

// GetCloned returns a detached copy of the stored value for mutate-then-Insert use.
func (c *Cache[K, V]) GetCloned(key K) (V, error) {
	v, err := c.Get(key)
	if err != nil {
		return v, err
	}

	return c.clone(v), nil
}

// Contains reports whether key is present.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.entries[key]

	return ok
}

// Release removes key. It fails if key is not present.
func (c *Cache[K, V]) Release(key K) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return errkind.New(c.missing, "%s: no entry for key [%v]", c.name, key)
	}

	delete(c.entries, key)

	return nil
}

// Drain removes every entry.
func (c *Cache[K, V]) Drain() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]V)
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Keys returns the current keys in no particular order.
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return maps.Keys(c.entries)
}
