/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proofsession

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
)

// Namespace is the store name of mirrored sessions.
const Namespace = "proofsession"

const (
	roleTag   = "role"
	keyFormat = "%s_%s"
)

var logger = log.New("aries-framework/store/proofsession")

// Role tells which side of the exchange a session plays.
type Role string

const (
	// RoleVerifier marks verifier sessions.
	RoleVerifier Role = "verifier"
	// RoleProver marks prover sessions.
	RoleProver Role = "prover"
)

// Record is the durable copy of one committed session.
type Record struct {
	ThreadID     string `json:"thread_id"`
	Role         Role   `json:"role"`
	ConnectionID string `json:"connection_id"`
	State        string `json:"state"`
	// Data is the session's versioned serialized form.
	Data string `json:"data"`
}

// Store mirrors sessions into a storage provider.
type Store struct {
	store storage.Store
}

// New opens the session store in p.
func New(p storage.Provider) (*Store, error) {
	store, err := p.OpenStore(Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to open proof session store: %w", err)
	}

	if err = p.SetStoreConfig(Namespace, storage.StoreConfiguration{TagNames: []string{roleTag}}); err != nil {
		return nil, fmt.Errorf("failed to set proof session store config: %w", err)
	}

	return &Store{store: store}, nil
}

func key(role Role, threadID string) string {
	return fmt.Sprintf(keyFormat, role, threadID)
}

// Save writes rec, replacing an earlier copy of the same session.
func (s *Store) Save(rec *Record) error {
	if rec.ThreadID == "" || (rec.Role != RoleVerifier && rec.Role != RoleProver) {
		return errkind.New(errkind.InvalidOption, "session record needs a thread id and a known role")
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}

	tag := storage.Tag{Name: roleTag, Value: string(rec.Role)}

	if err = s.store.Put(key(rec.Role, rec.ThreadID), raw, tag); err != nil {
		return fmt.Errorf("save session %s: %w", rec.ThreadID, err)
	}

	return nil
}

// Get returns the stored copy of a session.
func (s *Store) Get(role Role, threadID string) (*Record, error) {
	raw, err := s.store.Get(key(role, threadID))
	if errors.Is(err, storage.ErrDataNotFound) {
		return nil, errkind.Wrap(err, errkind.NotFound, "%s session %s", role, threadID)
	}

	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", threadID, err)
	}

	rec := &Record{}

	if err = json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", threadID, err)
	}

	return rec, nil
}

// List returns every stored session of role.
func (s *Store) List(role Role) ([]*Record, error) {
	itr, err := s.store.Query(roleTag + ":" + string(role))
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}

	defer storage.Close(itr, logger)

	var records []*Record

	for {
		more, err := itr.Next()
		if err != nil {
			return nil, fmt.Errorf("next session: %w", err)
		}

		if !more {
			return records, nil
		}

		raw, err := itr.Value()
		if err != nil {
			return nil, fmt.Errorf("read session: %w", err)
		}

		rec := &Record{}

		if err = json.Unmarshal(raw, rec); err != nil {
			return nil, fmt.Errorf("unmarshal session: %w", err)
		}

		records = append(records, rec)
	}
}

// Delete removes the stored copy of a session. Absence is not an error.
func (s *Store) Delete(role Role, threadID string) error {
	if err := s.store.Delete(key(role, threadID)); err != nil && !errors.Is(err, storage.ErrDataNotFound) {
		return fmt.Errorf("delete session %s: %w", threadID, err)
	}

	return nil
}
