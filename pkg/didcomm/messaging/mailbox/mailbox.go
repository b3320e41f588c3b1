/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mailbox

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/pkg/errors"

	"github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/presentproof"
)

// Namespace is namespace of mailbox store name.
const Namespace = "mailbox"

// idWidth is the base58 length of a 16 byte id; shorter encodings are left padded with the zero digit.
const idWidth = 22

var (
	// ErrMessageNotFound is returned for an id that is not in the connection's inbox.
	ErrMessageNotFound = errors.New("message not found")
	logger             = log.New("aries-framework/mailbox")
)

// Message is one received message.
type Message struct {
	ID        string          `json:"id"`
	AddedTime time.Time       `json:"added_time"`
	Reviewed  bool            `json:"reviewed,omitempty"`
	Message   json.RawMessage `json:"message"`
}

type inbox struct {
	ConnectionID     string     `json:"connection_id"`
	MessageCount     int        `json:"message_count"`
	LastAddedTime    time.Time  `json:"last_added_time,omitempty"`
	LastReviewedTime time.Time  `json:"last_reviewed_time,omitempty"`
	Messages         []*Message `json:"messages"`
}

// Mailbox keeps received messages per connection until the owning session has consumed them. Message ids
// sort in arrival order.
type Mailbox struct {
	lock  sync.Mutex
	store storage.Store
	now   func() time.Time
	last  uint64
}

// Opt configures a Mailbox.
type Opt func(*Mailbox)

// WithClock sets the time source used for arrival times and ids.
func WithClock(now func() time.Time) Opt {
	return func(m *Mailbox) {
		m.now = now
	}
}

// New opens the mailbox store in p.
func New(p storage.Provider, opts ...Opt) (*Mailbox, error) {
	store, err := p.OpenStore(Namespace)
	if err != nil {
		return nil, errors.Wrap(err, "open mailbox store")
	}

	m := &Mailbox{store: store, now: time.Now}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// nextID returns a base58 id whose lexical order follows arrival order. Caller holds the lock.
func (m *Mailbox) nextID() string {
	tick := uint64(m.now().UnixNano())
	if tick <= m.last {
		tick = m.last + 1
	}

	m.last = tick

	raw := make([]byte, 16)
	binary.BigEndian.PutUint64(raw, tick)

	r := uuid.New()
	copy(raw[8:], r[:8])

	id := base58.Encode(raw)

	return strings.Repeat("1", idWidth-len(id)) + id
}

// Add stores raw for connID and returns its message id.
func (m *Mailbox) Add(ctx context.Context, connID string, raw []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !json.Valid(raw) {
		return "", errors.New("message is not valid JSON")
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	box, err := m.getInbox(connID)
	if err != nil {
		return "", errors.Wrapf(err, "get inbox for %s", connID)
	}

	msg := &Message{ID: m.nextID(), AddedTime: m.now(), Message: raw}

	box.Messages = append(box.Messages, msg)
	box.LastAddedTime = msg.AddedTime

	if err = m.putInbox(box); err != nil {
		return "", errors.Wrapf(err, "put inbox for %s", connID)
	}

	logger.Debugf("mailbox: added message %s for connection %s", msg.ID, connID)

	return msg.ID, nil
}

// Pending returns the stored messages of connID that were not reviewed yet, oldest first.
func (m *Mailbox) Pending(ctx context.Context, connID string) ([]*Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	box, err := m.getInbox(connID)
	if err != nil {
		return nil, errors.Wrapf(err, "get inbox for %s", connID)
	}

	var pending []*Message

	for _, msg := range box.Messages {
		if !msg.Reviewed {
			pending = append(pending, msg)
		}
	}

	return pending, nil
}

// Messages returns the pending present-proof messages of connID keyed by message id. Messages of other
// protocols, or that fail to decode, are left out.
func (m *Mailbox) Messages(ctx context.Context, connID string) (map[string]presentproof.Message, error) {
	pending, err := m.Pending(ctx, connID)
	if err != nil {
		return nil, err
	}

	pool := make(map[string]presentproof.Message, len(pending))

	for _, msg := range pending {
		parsed, err := presentproof.ParseMessage(msg.Message)
		if err != nil {
			logger.Debugf("mailbox: skipping message %s: %s", msg.ID, err)

			continue
		}

		pool[msg.ID] = parsed
	}

	return pool, nil
}

// MarkReviewed flags msgID as consumed so it is no longer pending.
func (m *Mailbox) MarkReviewed(ctx context.Context, connID, msgID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	box, err := m.getInbox(connID)
	if err != nil {
		return errors.Wrapf(err, "get inbox for %s", connID)
	}

	for _, msg := range box.Messages {
		if msg.ID != msgID {
			continue
		}

		msg.Reviewed = true
		box.LastReviewedTime = m.now()

		return errors.Wrapf(m.putInbox(box), "put inbox for %s", connID)
	}

	return errors.Wrapf(ErrMessageNotFound, "connection %s message %s", connID, msgID)
}

// Purge drops the reviewed messages of connID and returns how many were removed.
func (m *Mailbox) Purge(ctx context.Context, connID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	box, err := m.getInbox(connID)
	if err != nil {
		return 0, errors.Wrapf(err, "get inbox for %s", connID)
	}

	kept := box.Messages[:0]

	for _, msg := range box.Messages {
		if !msg.Reviewed {
			kept = append(kept, msg)
		}
	}

	removed := len(box.Messages) - len(kept)
	box.Messages = kept

	return removed, errors.Wrapf(m.putInbox(box), "put inbox for %s", connID)
}

func (m *Mailbox) getInbox(connID string) (*inbox, error) {
	box := &inbox{ConnectionID: connID}

	b, err := m.store.Get(connID)
	if errors.Is(err, storage.ErrDataNotFound) {
		return box, nil
	}

	if err != nil {
		return nil, err
	}

	if err = json.Unmarshal(b, box); err != nil {
		return nil, err
	}

	return box, nil
}

func (m *Mailbox) putInbox(box *inbox) error {
	box.MessageCount = len(box.Messages)

	b, err := json.Marshal(box)
	if err != nil {
		return err
	}

	return m.store.Put(box.ConnectionID, b)
}
