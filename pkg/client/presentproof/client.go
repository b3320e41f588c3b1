/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/store/objectcache"
	"github.com/hyperledger/aries-proof-go/pkg/store/proofsession"
)

var logger = log.New("aries-framework/client/presentproof")

const (
	tracerName = "aries-framework/client/presentproof"

	roleVerifier = string(proofsession.RoleVerifier)
	roleProver   = string(proofsession.RoleProver)
)

// ConnectionLookup resolves the outbound channel of a connection.
type ConnectionLookup interface {
	Sender(ctx context.Context, connectionID string) (presentproof.SendFunc, error)
}

// MessagePool holds the inbound messages of each connection that no session consumed yet.
type MessagePool interface {
	Messages(ctx context.Context, connectionID string) (map[string]presentproof.Message, error)
	MarkReviewed(ctx context.Context, connectionID, messageID string) error
}

// Provider contains dependencies for the client.
type Provider interface {
	Connections() ConnectionLookup
	Messages() MessagePool
	Ledger() anoncreds.LedgerRead
	Gateway() anoncreds.Gateway
	Wallet() anoncreds.Wallet
}

// VerifierSession is a verifier state machine bound to its connection.
type VerifierSession struct {
	ConnectionID string
	Verifier     *presentproof.Verifier
}

// ProverSession is a prover state machine bound to its connection.
type ProverSession struct {
	ConnectionID string
	Prover       *presentproof.Prover
}

// Session describes one held session.
type Session struct {
	ThreadID     string `json:"thread_id"`
	Role         string `json:"role"`
	ConnectionID string `json:"connection_id"`
	SourceID     string `json:"source_id,omitempty"`
	State        string `json:"state"`
	Status       string `json:"presentation_status"`
}

// StateTopic is the notification topic of committed session states.
const StateTopic = "present-proof_states"

// Notifier receives a JSON encoded StateMsg each time a session is committed.
type Notifier interface {
	Notify(topic string, message []byte) error
}

// StateMsg describes a committed session state.
type StateMsg struct {
	ThreadID     string `json:"thread_id"`
	Role         string `json:"role"`
	ConnectionID string `json:"connection_id"`
	State        string `json:"state"`
}

type options struct {
	store      storage.Provider
	registerer prometheus.Registerer
	tracer     trace.TracerProvider
	notifier   Notifier
	serialize  bool
}

// Opt configures a Client.
type Opt func(o *options)

// WithSessionStore mirrors every committed session into p. New restores the sessions found there.
func WithSessionStore(p storage.Provider) Opt {
	return func(o *options) {
		o.store = p
	}
}

// WithMetrics registers the client collectors with reg.
func WithMetrics(reg prometheus.Registerer) Opt {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithTracerProvider sets the provider of operation spans. The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Opt {
	return func(o *options) {
		o.tracer = tp
	}
}

// WithNotifier publishes every committed session state to n under StateTopic.
func WithNotifier(n Notifier) Opt {
	return func(o *options) {
		o.notifier = n
	}
}

// WithSerializedThreads makes operations on the same thread wait for each other. Without it, two
// concurrent advances of one thread are last-writer-wins.
func WithSerializedThreads() Opt {
	return func(o *options) {
		o.serialize = true
	}
}

// Client drives verifier and prover sessions.
type Client struct {
	connections ConnectionLookup
	messages    MessagePool
	ledger      anoncreds.LedgerRead
	gateway     anoncreds.Gateway
	wallet      anoncreds.Wallet

	verifiers *objectcache.Cache[string, *VerifierSession]
	provers   *objectcache.Cache[string, *ProverSession]

	store    *proofsession.Store
	metrics  *metrics
	tracer   trace.Tracer
	notifier Notifier
	locks    *threadLocks
}

// New returns a client with empty registries, or with the sessions of the session store when one is set.
func New(ctx Provider, opts ...Opt) (*Client, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.tracer == nil {
		o.tracer = otel.GetTracerProvider()
	}

	c := &Client{
		connections: ctx.Connections(),
		messages:    ctx.Messages(),
		ledger:      ctx.Ledger(),
		gateway:     ctx.Gateway(),
		wallet:      ctx.Wallet(),
		verifiers:   objectcache.New[string, *VerifierSession]("verifier sessions", cloneVerifierSession),
		provers:     objectcache.New[string, *ProverSession]("prover sessions", cloneProverSession),
		metrics:     newMetrics(o.registerer),
		tracer:      o.tracer.Tracer(tracerName),
		notifier:    o.notifier,
		locks:       newThreadLocks(o.serialize),
	}

	if o.store != nil {
		store, err := proofsession.New(o.store)
		if err != nil {
			return nil, err
		}

		c.store = store

		if err = c.restore(); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func cloneVerifierSession(s *VerifierSession) *VerifierSession {
	return &VerifierSession{ConnectionID: s.ConnectionID, Verifier: s.Verifier.Clone()}
}

func cloneProverSession(s *ProverSession) *ProverSession {
	return &ProverSession{ConnectionID: s.ConnectionID, Prover: s.Prover.Clone()}
}

func (c *Client) restore() error {
	verifiers, err := c.store.List(proofsession.RoleVerifier)
	if err != nil {
		return fmt.Errorf("restore verifier sessions: %w", err)
	}

	for _, rec := range verifiers {
		v, err := presentproof.VerifierFromString(rec.Data)
		if err != nil {
			return fmt.Errorf("restore verifier session %s: %w", rec.ThreadID, err)
		}

		c.verifiers.Insert(rec.ThreadID, &VerifierSession{ConnectionID: rec.ConnectionID, Verifier: v})
	}

	provers, err := c.store.List(proofsession.RoleProver)
	if err != nil {
		return fmt.Errorf("restore prover sessions: %w", err)
	}

	for _, rec := range provers {
		p, err := presentproof.ProverFromString(rec.Data)
		if err != nil {
			return fmt.Errorf("restore prover session %s: %w", rec.ThreadID, err)
		}

		c.provers.Insert(rec.ThreadID, &ProverSession{ConnectionID: rec.ConnectionID, Prover: p})
	}

	logger.Infof("restored %d verifier and %d prover sessions", len(verifiers), len(provers))
	c.updateGauges()

	return nil
}

// commitVerifier stores s as the current state of its thread and mirrors it.
func (c *Client) commitVerifier(s *VerifierSession) error {
	threadID := c.verifiers.Insert(s.Verifier.ThreadID(), s)
	c.updateGauges()
	c.notify(&StateMsg{
		ThreadID: threadID, Role: roleVerifier, ConnectionID: s.ConnectionID, State: string(s.Verifier.State()),
	})

	if c.store == nil {
		return nil
	}

	data, err := s.Verifier.ToString()
	if err != nil {
		return err
	}

	return c.store.Save(&proofsession.Record{
		ThreadID:     threadID,
		Role:         proofsession.RoleVerifier,
		ConnectionID: s.ConnectionID,
		State:        string(s.Verifier.State()),
		Data:         data,
	})
}

// commitProver stores s as the current state of its thread and mirrors it.
func (c *Client) commitProver(s *ProverSession) error {
	threadID := c.provers.Insert(s.Prover.ThreadID(), s)
	c.updateGauges()
	c.notify(&StateMsg{
		ThreadID: threadID, Role: roleProver, ConnectionID: s.ConnectionID, State: string(s.Prover.State()),
	})

	if c.store == nil {
		return nil
	}

	data, err := s.Prover.ToString()
	if err != nil {
		return err
	}

	return c.store.Save(&proofsession.Record{
		ThreadID:     threadID,
		Role:         proofsession.RoleProver,
		ConnectionID: s.ConnectionID,
		State:        string(s.Prover.State()),
		Data:         data,
	})
}

// notify publishes msg. Delivery failures never fail the operation.
func (c *Client) notify(msg *StateMsg) {
	if c.notifier == nil {
		return
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		logger.Warnf("failed to encode state of %s session %s: %s", msg.Role, msg.ThreadID, err)

		return
	}

	if err = c.notifier.Notify(StateTopic, raw); err != nil {
		logger.Warnf("failed to notify state of %s session %s: %s", msg.Role, msg.ThreadID, err)
	}
}

func (c *Client) updateGauges() {
	c.metrics.sessions.WithLabelValues(roleVerifier).Set(float64(c.verifiers.Len()))
	c.metrics.sessions.WithLabelValues(roleProver).Set(float64(c.provers.Len()))
}

// send delivers msg over the connection's channel. Any failure is a transport error.
func (c *Client) send(ctx context.Context, sender presentproof.SendFunc, msg presentproof.Message) error {
	start := time.Now()
	err := sender(ctx, msg)

	c.metrics.sends.WithLabelValues(msg.Kind().String()).Observe(time.Since(start).Seconds())

	if err != nil {
		return errkind.Wrap(err, errkind.TransportError, "send %s", msg.Kind())
	}

	return nil
}

func (c *Client) sender(ctx context.Context, connectionID string) (presentproof.SendFunc, error) {
	if connectionID == "" {
		return nil, errkind.New(errkind.InvalidOption, "connection id is required")
	}

	return c.connections.Sender(ctx, connectionID)
}

// begin opens the span of one operation. The returned func ends it and records the outcome.
func (c *Client) begin(ctx context.Context, role, op, threadID string) (context.Context, func(*error)) {
	ctx, span := c.tracer.Start(ctx, role+"."+op, trace.WithAttributes(
		attribute.String("presentproof.role", role),
		attribute.String("presentproof.thread_id", threadID),
	))

	return ctx, func(errp *error) {
		err := *errp

		c.metrics.observe(role, op, err)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}
}

// ReleaseAll drops every session of both roles. Mirrored copies are removed too.
func (c *Client) ReleaseAll() {
	if c.store != nil {
		for _, id := range c.verifiers.Keys() {
			if err := c.store.Delete(proofsession.RoleVerifier, id); err != nil {
				logger.Warnf("failed to delete mirrored verifier session %s: %s", id, err)
			}
		}

		for _, id := range c.provers.Keys() {
			if err := c.store.Delete(proofsession.RoleProver, id); err != nil {
				logger.Warnf("failed to delete mirrored prover session %s: %s", id, err)
			}
		}
	}

	c.verifiers.Drain()
	c.provers.Drain()
	c.updateGauges()
}

// Sessions lists every held session, verifiers first, each group ordered by thread id.
func (c *Client) Sessions() []Session {
	verifierIDs := c.verifiers.Keys()
	sort.Strings(verifierIDs)

	proverIDs := c.provers.Keys()
	sort.Strings(proverIDs)

	sessions := make([]Session, 0, len(verifierIDs)+len(proverIDs))

	for _, id := range verifierIDs {
		s, err := c.verifiers.Get(id)
		if err != nil {
			continue
		}

		sessions = append(sessions, Session{
			ThreadID:     id,
			Role:         roleVerifier,
			ConnectionID: s.ConnectionID,
			SourceID:     s.Verifier.SourceID(),
			State:        string(s.Verifier.State()),
			Status:       string(s.Verifier.VerificationStatus()),
		})
	}

	for _, id := range proverIDs {
		s, err := c.provers.Get(id)
		if err != nil {
			continue
		}

		sessions = append(sessions, Session{
			ThreadID:     id,
			Role:         roleProver,
			ConnectionID: s.ConnectionID,
			SourceID:     s.Prover.SourceID(),
			State:        string(s.Prover.State()),
			Status:       string(s.Prover.PresentationStatus()),
		})
	}

	return sessions
}

// threadLocks serializes operations per role and thread when enabled.
type threadLocks struct {
	enabled bool

	mu    sync.Mutex
	locks map[string]*threadLock
}

type threadLock struct {
	mu   sync.Mutex
	refs int
}

func newThreadLocks(enabled bool) *threadLocks {
	return &threadLocks{enabled: enabled, locks: map[string]*threadLock{}}
}

// lock blocks until the thread is free and returns the unlock func.
func (l *threadLocks) lock(role, threadID string) func() {
	if !l.enabled {
		return func() {}
	}

	key := role + "/" + threadID

	l.mu.Lock()

	tl, ok := l.locks[key]
	if !ok {
		tl = &threadLock{}
		l.locks[key] = tl
	}

	tl.refs++
	l.mu.Unlock()

	tl.mu.Lock()

	return func() {
		tl.mu.Unlock()

		l.mu.Lock()
		defer l.mu.Unlock()

		tl.refs--
		if tl.refs == 0 {
			delete(l.locks, key)
		}
	}
}
