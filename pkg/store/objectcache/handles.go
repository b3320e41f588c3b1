/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package objectcache

import (
	"sync/atomic"

	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
)

// Handles is a Cache keyed by small integer handles. Handles start at 1 and are never reused.
type Handles[V any] struct {
	*Cache[uint32, V]
	next atomic.Uint32
}

// NewHandles returns an empty handle space.
func NewHandles[V any](name string, clone CloneFunc[V]) *Handles[V] {
	c := New[uint32, V](name, clone)
	c.missing = errkind.InvalidHandle

	return &Handles[V]{Cache: c}
}

// Add stores value under a fresh handle.
func (h *Handles[V]) Add(value V) uint32 {
	return h.Insert(h.next.Add(1), value)
}

// Keys returns the live handles in ascending order.
func (h *Handles[V]) Keys() []uint32 {
	keys := h.Cache.Keys()
	slices.Sort(keys)

	return keys
}
