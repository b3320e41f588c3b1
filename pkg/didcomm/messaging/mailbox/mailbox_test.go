/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mailbox

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/presentproof"
)

const (
	connID = "conn-1"
	ackMsg = `{"@type":"https://didcomm.org/present-proof/1.0/ack","@id":"a1","status":"OK","~thread":{"thid":"t1"}}`
)

type failingProvider struct {
	storage.Provider
}

func (p *failingProvider) OpenStore(string) (storage.Store, error) {
	return nil, errors.New("db down")
}

func TestNew(t *testing.T) {
	_, err := New(&failingProvider{})
	require.EqualError(t, err, "open mailbox store: db down")
}

func TestMailbox_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("ids follow arrival order", func(t *testing.T) {
		fixed := time.Unix(1700000000, 0)

		m, err := New(mem.NewProvider(), WithClock(func() time.Time { return fixed }))
		require.NoError(t, err)

		var ids []string

		for i := 0; i < 50; i++ {
			id, err := m.Add(ctx, connID, []byte(ackMsg))
			require.NoError(t, err)
			require.Len(t, id, idWidth)

			ids = append(ids, id)
		}

		require.True(t, sort.StringsAreSorted(ids))

		pending, err := m.Pending(ctx, connID)
		require.NoError(t, err)
		require.Len(t, pending, 50)
		require.Equal(t, ids[0], pending[0].ID)
	})

	t.Run("invalid json", func(t *testing.T) {
		m, err := New(mem.NewProvider())
		require.NoError(t, err)

		_, err = m.Add(ctx, connID, []byte("{"))
		require.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		m, err := New(mem.NewProvider())
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err = m.Add(cctx, connID, []byte(ackMsg))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestMailbox_Messages(t *testing.T) {
	ctx := context.Background()

	m, err := New(mem.NewProvider())
	require.NoError(t, err)

	ackID, err := m.Add(ctx, connID, []byte(ackMsg))
	require.NoError(t, err)

	_, err = m.Add(ctx, connID, []byte(`{"@type":"https://didcomm.org/trust_ping/1.0/ping","@id":"p1"}`))
	require.NoError(t, err)

	_, err = m.Add(ctx, "conn-2", []byte(ackMsg))
	require.NoError(t, err)

	pool, err := m.Messages(ctx, connID)
	require.NoError(t, err)
	require.Len(t, pool, 1)
	require.Equal(t, presentproof.KindAck, pool[ackID].Kind())
	require.Equal(t, "t1", pool[ackID].ThreadID())

	t.Run("reviewed messages are no longer pending", func(t *testing.T) {
		require.NoError(t, m.MarkReviewed(ctx, connID, ackID))

		pool, err := m.Messages(ctx, connID)
		require.NoError(t, err)
		require.Empty(t, pool)

		pending, err := m.Pending(ctx, connID)
		require.NoError(t, err)
		require.Len(t, pending, 1)

		removed, err := m.Purge(ctx, connID)
		require.NoError(t, err)
		require.Equal(t, 1, removed)

		pending, err = m.Pending(ctx, connID)
		require.NoError(t, err)
		require.Len(t, pending, 1)
	})

	t.Run("unknown message", func(t *testing.T) {
		err := m.MarkReviewed(ctx, connID, "nope")
		require.True(t, errors.Is(err, ErrMessageNotFound))
	})

	t.Run("empty inbox", func(t *testing.T) {
		pool, err := m.Messages(ctx, "conn-unknown")
		require.NoError(t, err)
		require.Empty(t, pool)
	})
}
