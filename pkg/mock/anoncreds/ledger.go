/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	api "github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
)

// Ledger is an in-memory ledger for development agents and unit tests. Revocations are staged with
// Revoke and become visible once Publish writes a new registry entry.
type Ledger struct {
	mu         sync.RWMutex
	now        func() uint64
	schemas    map[string]*api.Schema
	credDefs   map[string]*api.CredentialDefinition
	revRegDefs map[string]*api.RevocationRegistryDefinition
	registries map[string]*registry
}

type registry struct {
	pending map[string]struct{}
	// entries are in ascending timestamp order; revoked is cumulative and sorted.
	entries []registryEntry
}

type registryEntry struct {
	timestamp uint64
	revoked   []string
}

type deltaValue struct {
	Accum     string   `json:"accum"`
	PrevAccum string   `json:"prevAccum,omitempty"`
	Issued    []string `json:"issued"`
	Revoked   []string `json:"revoked"`
}

// LedgerOpt configures a Ledger.
type LedgerOpt func(*Ledger)

// WithClock sets the source of registry entry timestamps.
func WithClock(now func() uint64) LedgerOpt {
	return func(l *Ledger) {
		l.now = now
	}
}

// NewLedger returns an empty ledger.
func NewLedger(opts ...LedgerOpt) *Ledger {
	l := &Ledger{
		now:        func() uint64 { return uint64(time.Now().Unix()) },
		schemas:    map[string]*api.Schema{},
		credDefs:   map[string]*api.CredentialDefinition{},
		revRegDefs: map[string]*api.RevocationRegistryDefinition{},
		registries: map[string]*registry{},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// AddSchema publishes a schema.
func (l *Ledger) AddSchema(s *api.Schema) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.schemas[s.ID] = s
}

// AddCredDef publishes a credential definition.
func (l *Ledger) AddCredDef(c *api.CredentialDefinition) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.credDefs[c.ID] = c
}

// AddRevRegDef publishes a revocation registry definition with an initial empty entry and returns the
// entry's timestamp.
func (l *Ledger) AddRevRegDef(d *api.RevocationRegistryDefinition) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now()

	l.revRegDefs[d.ID] = d
	l.registries[d.ID] = &registry{
		pending: map[string]struct{}{},
		entries: []registryEntry{{timestamp: ts, revoked: []string{}}},
	}

	return ts
}

// Revoke stages the revocation of credRevID in registry regID.
func (l *Ledger) Revoke(regID, credRevID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	reg, ok := l.registries[regID]
	if !ok {
		return errkind.New(errkind.NotFound, "revocation registry %s not found", regID)
	}

	reg.pending[credRevID] = struct{}{}

	return nil
}

// Publish writes staged revocations as a new registry entry and returns its timestamp. Entry timestamps
// strictly increase even when the clock does not.
func (l *Ledger) Publish(regID string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reg, ok := l.registries[regID]
	if !ok {
		return 0, errkind.New(errkind.NotFound, "revocation registry %s not found", regID)
	}

	last := reg.entries[len(reg.entries)-1]

	ts := l.now()
	if ts <= last.timestamp {
		ts = last.timestamp + 1
	}

	revoked := append([]string{}, last.revoked...)
	for id := range reg.pending {
		if !contains(last.revoked, id) {
			revoked = append(revoked, id)
		}
	}

	sort.Strings(revoked)

	reg.entries = append(reg.entries, registryEntry{timestamp: ts, revoked: revoked})
	reg.pending = map[string]struct{}{}

	return ts, nil
}

// GetSchema implements anoncreds.LedgerRead.
func (l *Ledger) GetSchema(ctx context.Context, id string) (*api.Schema, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.schemas[id]
	if !ok {
		return nil, errkind.New(errkind.NotFound, "schema %s not found", id)
	}

	return s, nil
}

// GetCredDef implements anoncreds.LedgerRead.
func (l *Ledger) GetCredDef(ctx context.Context, id string) (*api.CredentialDefinition, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	c, ok := l.credDefs[id]
	if !ok {
		return nil, errkind.New(errkind.NotFound, "credential definition %s not found", id)
	}

	return c, nil
}

// GetRevRegDef implements anoncreds.LedgerRead.
func (l *Ledger) GetRevRegDef(ctx context.Context, id string) (*api.RevocationRegistryDefinition, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	d, ok := l.revRegDefs[id]
	if !ok {
		return nil, errkind.New(errkind.NotFound, "revocation registry definition %s not found", id)
	}

	return d, nil
}

// GetRevRegDelta implements anoncreds.LedgerRead. The delta lists credentials revoked after from and up to
// the latest entry at or before to. Identical arguments always yield identical values.
func (l *Ledger) GetRevRegDelta(ctx context.Context, id string, from, to *uint64) (*api.RevocationDelta, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	reg, ok := l.registries[id]
	if !ok {
		return nil, errkind.New(errkind.NotFound, "revocation registry %s not found", id)
	}

	end, ok := reg.at(to)
	if !ok {
		return nil, errkind.New(errkind.NotFound, "registry %s has no entry at or before %d", id, *to)
	}

	v := deltaValue{
		Accum:   accumulator(end.revoked),
		Issued:  []string{},
		Revoked: end.revoked,
	}

	if from != nil {
		start, ok := reg.at(from)
		if ok {
			v.PrevAccum = accumulator(start.revoked)
			v.Revoked = difference(end.revoked, start.revoked)
		}
	}

	raw, err := json.Marshal(&v)
	if err != nil {
		return nil, fmt.Errorf("marshal revocation delta: %w", err)
	}

	return &api.RevocationDelta{RegistryID: id, Value: raw, Timestamp: end.timestamp}, nil
}

// at returns the latest entry at or before ts, or the latest entry when ts is nil.
func (r *registry) at(ts *uint64) (registryEntry, bool) {
	if ts == nil {
		return r.entries[len(r.entries)-1], true
	}

	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].timestamp <= *ts {
			return r.entries[i], true
		}
	}

	return registryEntry{}, false
}

func accumulator(revoked []string) string {
	sum := blake2b.Sum256([]byte(strings.Join(revoked, ",")))

	return hex.EncodeToString(sum[:])
}

func contains(list []string, v string) bool {
	i := sort.SearchStrings(list, v)

	return i < len(list) && list[i] == v
}

func difference(a, b []string) []string {
	out := []string{}

	for _, v := range a {
		if !contains(b, v) {
			out = append(out, v)
		}
	}

	return out
}

// revokedIn reports whether credRevID is listed as revoked in a delta produced by Ledger.
func revokedIn(delta *api.RevocationDelta, credRevID string) (bool, error) {
	var v deltaValue

	if err := json.Unmarshal(delta.Value, &v); err != nil {
		return false, fmt.Errorf("decode revocation delta %s: %w", delta.RegistryID, err)
	}

	for _, id := range v.Revoked {
		if id == credRevID {
			return true, nil
		}
	}

	return false, nil
}
