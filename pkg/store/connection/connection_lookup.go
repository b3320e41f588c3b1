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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/transport"
)

const (
	// Namespace is namespace of connection store name.
	Namespace       = "connection"
	keyPattern      = "%s_%s"
	connIDKeyPrefix = "conn"
	keySeparator    = "_"
)

var logger = log.New("aries-framework/store/connection")

// KeyPrefix is prefix builder for storage keys.
type KeyPrefix func(...string) string

type provider interface {
	StorageProvider() storage.Provider
	OutboundTransports() []transport.OutboundTransport
}

// Record contain info about a connection to a peer agent.
type Record struct {
	ConnectionID    string `json:"connection_id"`
	State           string `json:"state,omitempty"`
	TheirLabel      string `json:"their_label,omitempty"`
	TheirDID        string `json:"their_did,omitempty"`
	MyDID           string `json:"my_did,omitempty"`
	ServiceEndPoint string `json:"service_endpoint"`
}

// NewLookup returns new connection lookup instance.
// Lookup is read only connection store. It provides connection record related query features.
func NewLookup(p provider) (*Lookup, error) {
	store, err := p.StorageProvider().OpenStore(Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to open permanent store to create new connection recorder: %w", err)
	}

	err = p.StorageProvider().SetStoreConfig(Namespace, storage.StoreConfiguration{TagNames: []string{connIDKeyPrefix}})
	if err != nil {
		return nil, fmt.Errorf("failed to set store config in permanent store: %w", err)
	}

	return &Lookup{store: store, transports: p.OutboundTransports()}, nil
}

// Lookup takes care of connection related persistence features.
type Lookup struct {
	store      storage.Store
	transports []transport.OutboundTransport
}

// GetConnectionRecord return connection record based on the connection ID.
func (c *Lookup) GetConnectionRecord(connectionID string) (*Record, error) {
	var rec Record

	err := getAndUnmarshal(getConnectionKeyPrefix()(connectionID), &rec, c.store)
	if errors.Is(err, storage.ErrDataNotFound) {
		return nil, errkind.Wrap(err, errkind.NotFound, "connection %s", connectionID)
	}

	if err != nil {
		return nil, fmt.Errorf("get connection record %s: %w", connectionID, err)
	}

	return &rec, nil
}

// QueryConnectionRecords returns every stored connection record.
func (c *Lookup) QueryConnectionRecords() ([]*Record, error) {
	itr, err := c.store.Query(connIDKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query permanent store: %w", err)
	}

	defer storage.Close(itr, logger)

	var records []*Record

	more, err := itr.Next()
	if err != nil {
		return nil, fmt.Errorf("failed to get next set of data from permanent storage iterator: %w", err)
	}

	for more {
		value, err := itr.Value()
		if err != nil {
			return nil, fmt.Errorf("failed to get value from iterator: %w", err)
		}

		var record Record

		if err = json.Unmarshal(value, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal connection record: %w", err)
		}

		records = append(records, &record)

		more, err = itr.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to get next set of data from permanent storage iterator: %w", err)
		}
	}

	return records, nil
}

// Sender returns a callback delivering present-proof messages to the service endpoint of connectionID.
// The transport is chosen by the endpoint's URL scheme.
func (c *Lookup) Sender(ctx context.Context, connectionID string) (presentproof.SendFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec, err := c.GetConnectionRecord(connectionID)
	if err != nil {
		return nil, err
	}

	var out transport.OutboundTransport

	for _, t := range c.transports {
		if t.Accept(rec.ServiceEndPoint) {
			out = t

			break
		}
	}

	if out == nil {
		return nil, errkind.New(errkind.InvalidOption, "no outbound transport for endpoint [%s] of connection %s",
			rec.ServiceEndPoint, connectionID)
	}

	endpoint := rec.ServiceEndPoint

	return func(ctx context.Context, msg presentproof.Message) error {
		raw, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal %s message: %w", msg.Kind(), err)
		}

		logger.Debugf("sending %s [%s] to connection %s", msg.Kind(), msg.MessageID(), connectionID)

		return out.Send(ctx, raw, endpoint)
	}, nil
}

func getAndUnmarshal(key string, target interface{}, store storage.Store) error {
	bytes, err := store.Get(key)
	if err != nil {
		return err
	}

	return json.Unmarshal(bytes, target)
}

// getConnectionKeyPrefix key prefix for connection record persisted.
func getConnectionKeyPrefix() KeyPrefix {
	return func(key ...string) string {
		return fmt.Sprintf(keyPattern, connIDKeyPrefix, strings.Join(key, keySeparator))
	}
}
