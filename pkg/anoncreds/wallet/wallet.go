/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
)

// Namespace is the store name used for wallet records.
const Namespace = "anoncredswallet"

const (
	recordTypeTag = "record_type"
	keySeparator  = "|"
)

var logger = log.New("aries-framework/anoncreds/wallet")

// StoreWallet is an anoncreds.Wallet kept in a storage provider. Records are keyed by type and id and
// tagged with their type so they can be listed per type.
type StoreWallet struct {
	store storage.Store
}

type record struct {
	Type  string            `json:"type"`
	ID    string            `json:"id"`
	Value []byte            `json:"value"`
	Tags  map[string]string `json:"tags,omitempty"`
}

// New opens the wallet store in p.
func New(p storage.Provider) (*StoreWallet, error) {
	store, err := p.OpenStore(Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet store: %w", err)
	}

	err = p.SetStoreConfig(Namespace, storage.StoreConfiguration{TagNames: []string{recordTypeTag}})
	if err != nil {
		return nil, fmt.Errorf("failed to set wallet store config: %w", err)
	}

	return &StoreWallet{store: store}, nil
}

func recordKey(recordType, id string) string {
	return recordType + keySeparator + id
}

// typeTag encodes recordType as a tag value. Store tags cannot hold ':' and anoncreds record types do.
func typeTag(recordType string) string {
	return base58.Encode([]byte(recordType))
}

// AddRecord stores value under (recordType, id), replacing any previous value.
func (w *StoreWallet) AddRecord(ctx context.Context, recordType, id string, value []byte,
	tags map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if recordType == "" || id == "" {
		return errkind.New(errkind.InvalidOption, "wallet record type and id are required")
	}

	raw, err := json.Marshal(&record{Type: recordType, ID: id, Value: value, Tags: tags})
	if err != nil {
		return fmt.Errorf("marshal wallet record: %w", err)
	}

	err = w.store.Put(recordKey(recordType, id), raw, storage.Tag{Name: recordTypeTag, Value: typeTag(recordType)})
	if err != nil {
		return fmt.Errorf("store wallet record %s: %w", id, err)
	}

	return nil
}

// GetRecord returns the value stored under (recordType, id).
func (w *StoreWallet) GetRecord(ctx context.Context, recordType, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := w.store.Get(recordKey(recordType, id))
	if errors.Is(err, storage.ErrDataNotFound) {
		return nil, errkind.Wrap(anoncreds.ErrRecordNotFound, errkind.NotFound, "%s record %s", recordType, id)
	}

	if err != nil {
		return nil, fmt.Errorf("get wallet record %s: %w", id, err)
	}

	var r record

	if err = json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("unmarshal wallet record %s: %w", id, err)
	}

	return r.Value, nil
}

// SearchRecords returns every record of recordType keyed by id.
func (w *StoreWallet) SearchRecords(ctx context.Context, recordType string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	iter, err := w.store.Query(recordTypeTag + ":" + typeTag(recordType))
	if err != nil {
		return nil, fmt.Errorf("query wallet records: %w", err)
	}

	defer storage.Close(iter, logger)

	records := map[string][]byte{}

	more, err := iter.Next()
	if err != nil {
		return nil, fmt.Errorf("next wallet record: %w", err)
	}

	for more {
		raw, err := iter.Value()
		if err != nil {
			return nil, fmt.Errorf("read wallet record: %w", err)
		}

		var r record

		if err = json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("unmarshal wallet record: %w", err)
		}

		records[r.ID] = r.Value

		more, err = iter.Next()
		if err != nil {
			return nil, fmt.Errorf("next wallet record: %w", err)
		}
	}

	return records, nil
}

// DeleteRecord removes (recordType, id).
func (w *StoreWallet) DeleteRecord(ctx context.Context, recordType, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := recordKey(recordType, id)

	if _, err := w.store.Get(key); errors.Is(err, storage.ErrDataNotFound) {
		return errkind.Wrap(anoncreds.ErrRecordNotFound, errkind.NotFound, "%s record %s", recordType, id)
	}

	if err := w.store.Delete(key); err != nil {
		return fmt.Errorf("delete wallet record %s: %w", id, err)
	}

	return nil
}
