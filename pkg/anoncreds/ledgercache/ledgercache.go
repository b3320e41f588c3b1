/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ledgercache memoizes ledger reads. Schemas and definitions never change once written, and a
// revocation delta pinned to an upper timestamp that has already passed is fixed as well, so those results are
// cached. Deltas without an upper bound, or bounded in the future, always go to the ledger.
package ledgercache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bluele/gcache"
	"github.com/hyperledger/aries-framework-go/component/log"
	"golang.org/x/sync/singleflight"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
)

var logger = log.New("aries-framework/anoncreds/ledgercache")

// DefaultSize is the number of entries kept when no size is configured.
const DefaultSize = 1024

type options struct {
	size int
	now  func() uint64
}

// Opt configures a Ledger.
type Opt func(*options)

// WithSize sets the LRU capacity.
func WithSize(size int) Opt {
	return func(o *options) {
		o.size = size
	}
}

// WithClock sets the source of the current ledger time, in the unit of registry timestamps.
func WithClock(now func() uint64) Opt {
	return func(o *options) {
		o.now = now
	}
}

// Ledger is a caching anoncreds.LedgerRead.
type Ledger struct {
	next    anoncreds.LedgerRead
	now     func() uint64
	entries gcache.Cache
	group   singleflight.Group
}

// New wraps next with an LRU cache.
func New(next anoncreds.LedgerRead, opts ...Opt) *Ledger {
	o := &options{
		size: DefaultSize,
		now:  func() uint64 { return uint64(time.Now().Unix()) },
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.size <= 0 {
		o.size = DefaultSize
	}

	return &Ledger{
		next:    next,
		now:     o.now,
		entries: gcache.New(o.size).LRU().Build(),
	}
}

// GetSchema implements anoncreds.LedgerRead.
func (l *Ledger) GetSchema(ctx context.Context, id string) (*anoncreds.Schema, error) {
	return load(l, "schema|"+id, func() (*anoncreds.Schema, error) {
		return l.next.GetSchema(ctx, id)
	})
}

// GetCredDef implements anoncreds.LedgerRead.
func (l *Ledger) GetCredDef(ctx context.Context, id string) (*anoncreds.CredentialDefinition, error) {
	return load(l, "creddef|"+id, func() (*anoncreds.CredentialDefinition, error) {
		return l.next.GetCredDef(ctx, id)
	})
}

// GetRevRegDef implements anoncreds.LedgerRead.
func (l *Ledger) GetRevRegDef(ctx context.Context, id string) (*anoncreds.RevocationRegistryDefinition, error) {
	return load(l, "revregdef|"+id, func() (*anoncreds.RevocationRegistryDefinition, error) {
		return l.next.GetRevRegDef(ctx, id)
	})
}

// GetRevRegDelta implements anoncreds.LedgerRead. Only deltas whose upper bound is not after the current time
// are cached: entries published later may still fall inside a window that ends in the future.
func (l *Ledger) GetRevRegDelta(ctx context.Context, id string, from, to *uint64) (*anoncreds.RevocationDelta,
	error) {
	if to == nil || *to > l.now() {
		return l.next.GetRevRegDelta(ctx, id, from, to)
	}

	key := fmt.Sprintf("delta|%s|%s|%d", id, bound(from), *to)

	return load(l, key, func() (*anoncreds.RevocationDelta, error) {
		return l.next.GetRevRegDelta(ctx, id, from, to)
	})
}

// Purge drops every cached entry.
func (l *Ledger) Purge() {
	l.entries.Purge()
}

// Len returns the number of cached entries.
func (l *Ledger) Len() int {
	return l.entries.Len(false)
}

func bound(v *uint64) string {
	if v == nil {
		return "-"
	}

	return strconv.FormatUint(*v, 10)
}

func load[T any](l *Ledger, key string, fetch func() (T, error)) (T, error) {
	var zero T

	if v, err := l.entries.Get(key); err == nil {
		return v.(T), nil
	} else if !errors.Is(err, gcache.KeyNotFoundError) {
		return zero, fmt.Errorf("ledger cache get %s: %w", key, err)
	}

	v, err, shared := l.group.Do(key, func() (interface{}, error) {
		res, err := fetch()
		if err != nil {
			return nil, err
		}

		if err := l.entries.Set(key, res); err != nil {
			logger.Warnf("failed to cache ledger entry %s: %s", key, err)
		}

		return res, nil
	})
	if err != nil {
		return zero, err
	}

	if shared {
		logger.Debugf("ledger read %s shared with a concurrent caller", key)
	}

	return v.(T), nil
}
