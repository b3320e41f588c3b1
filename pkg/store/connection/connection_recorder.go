/*
 *
 * Copyright SecureKey Technologies Inc. All Rights Reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 * /
 *
 */

package connection

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
)

// StateCompleted is the state of a connection ready for protocol traffic.
const StateCompleted = "completed"

// NewRecorder returns new connection recorder.
// Recorder is read-write connection store which provides
// write features on top query features from Lookup.
func NewRecorder(p provider) (*Recorder, error) {
	lookup, err := NewLookup(p)
	if err != nil {
		return nil, fmt.Errorf("failed to create new connection recorder : %w", err)
	}

	return &Recorder{lookup}, nil
}

// Recorder is read-write connection store.
type Recorder struct {
	*Lookup
}

// SaveConnectionRecord saves given connection records in underlying store.
func (c *Recorder) SaveConnectionRecord(record *Record) error {
	if err := isValidConnection(record); err != nil {
		return err
	}

	if record.State == "" {
		record.State = StateCompleted
	}

	bytes, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("save connection record: %w", err)
	}

	err = c.store.Put(getConnectionKeyPrefix()(record.ConnectionID), bytes, storage.Tag{Name: connIDKeyPrefix})
	if err != nil {
		return fmt.Errorf("save connection record in permanent store: %w", err)
	}

	return nil
}

// RemoveConnection removes the connection record of connectionID.
func (c *Recorder) RemoveConnection(connectionID string) error {
	key := getConnectionKeyPrefix()(connectionID)

	if _, err := c.store.Get(key); errors.Is(err, storage.ErrDataNotFound) {
		return errkind.Wrap(err, errkind.NotFound, "connection %s", connectionID)
	}

	return c.store.Delete(key)
}

// isValidConnection validates connection record.
func isValidConnection(r *Record) error {
	if r == nil || r.ConnectionID == "" || r.ServiceEndPoint == "" {
		return errkind.New(errkind.InvalidOption, "connection id and service endpoint are required")
	}

	return nil
}
