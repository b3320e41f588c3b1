/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package disclosedproof exposes prover sessions through numeric handles. The connection a message
// travels on is named on every call that sends or polls.
package disclosedproof

import (
	"context"
	"encoding/json"

	"github.com/hyperledger/aries-framework-go/component/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	ppclient "github.com/hyperledger/aries-proof-go/pkg/client/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/store/objectcache"
)

// RejectReason is the problem report text sent by RejectProof.
const RejectReason = "Presentation Request was rejected"

var logger = log.New("aries-framework/legacy/disclosedproof")

// DisclosedProofs holds prover sessions by handle.
type DisclosedProofs struct {
	connections ppclient.ConnectionLookup
	messages    ppclient.MessagePool
	ledger      anoncreds.LedgerRead
	gateway     anoncreds.Gateway
	wallet      anoncreds.Wallet
	handles     *objectcache.Handles[*presentproof.Prover]
}

// New returns an empty handle space.
func New(ctx ppclient.Provider) *DisclosedProofs {
	return &DisclosedProofs{
		connections: ctx.Connections(),
		messages:    ctx.Messages(),
		ledger:      ctx.Ledger(),
		gateway:     ctx.Gateway(),
		wallet:      ctx.Wallet(),
		handles:     objectcache.NewHandles[*presentproof.Prover]("disclosed-proofs-cache", (*presentproof.Prover).Clone),
	}
}

// CreateWithRequest opens a session for a raw request-presentation message.
func (d *DisclosedProofs) CreateWithRequest(sourceID string, rawRequest []byte) (uint32, error) {
	req := &presentproof.RequestPresentation{}

	if err := json.Unmarshal(rawRequest, req); err != nil {
		return 0, errkind.Wrap(err, errkind.InvalidJSON, "cannot parse presentation request")
	}

	p, err := presentproof.NewProverFromRequest(sourceID, req)
	if err != nil {
		return 0, err
	}

	return d.handles.Add(p), nil
}

// CreateWithMessageID opens a session for the request held under msgID in the connection's pool.
func (d *DisclosedProofs) CreateWithMessageID(ctx context.Context, sourceID, connectionID,
	msgID string) (uint32, *presentproof.RequestPresentation, error) {
	pool, err := d.messages.Messages(ctx, connectionID)
	if err != nil {
		return 0, nil, err
	}

	msg, ok := pool[msgID]
	if !ok {
		return 0, nil, errkind.New(errkind.NotFound, "message %s of connection %s", msgID, connectionID)
	}

	req, ok := msg.(*presentproof.RequestPresentation)
	if !ok {
		return 0, nil, errkind.New(errkind.InvalidMessages, "message %s is a %s, not a request", msgID, msg.Kind())
	}

	p, err := presentproof.NewProverFromRequest(sourceID, req)
	if err != nil {
		return 0, nil, err
	}

	handle := d.handles.Add(p)

	logger.Debugf("disclosed proof %s created with handle %d from message %s", sourceID, handle, msgID)

	return handle, req, nil
}

// ProofRequestMessages lists the requests waiting in the connection's pool in ascending message-id order.
func (d *DisclosedProofs) ProofRequestMessages(ctx context.Context,
	connectionID string) ([]*presentproof.RequestPresentation, error) {
	pool, err := d.messages.Messages(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	ids := maps.Keys(pool)
	slices.Sort(ids)

	var requests []*presentproof.RequestPresentation

	for _, id := range ids {
		if req, ok := pool[id].(*presentproof.RequestPresentation); ok {
			requests = append(requests, req)
		}
	}

	return requests, nil
}

// State returns the state of the session.
func (d *DisclosedProofs) State(handle uint32) (presentproof.ProverState, error) {
	p, err := d.handles.Get(handle)
	if err != nil {
		return "", err
	}

	return p.State(), nil
}

// UpdateState advances the session with rawMsg, or with the next matching message of the connection's
// pool when rawMsg is empty.
func (d *DisclosedProofs) UpdateState(ctx context.Context, handle uint32, connectionID string,
	rawMsg []byte) (presentproof.ProverState, error) {
	p, err := d.handles.GetCloned(handle)
	if err != nil {
		return "", err
	}

	if !p.Progressable() {
		return p.State(), nil
	}

	var msgID string

	var msg presentproof.Message

	if len(rawMsg) > 0 {
		msg, err = presentproof.ParseMessage(rawMsg)
		if err != nil {
			return "", errkind.Wrap(err, errkind.InvalidOption, "cannot update state with message")
		}
	} else {
		pool, err := d.messages.Messages(ctx, connectionID)
		if err != nil {
			return "", err
		}

		id, found, ok := presentproof.FindProverMessage(p, pool)
		if !ok {
			return p.State(), nil
		}

		msgID, msg = id, found
	}

	if _, err = p.ProcessMessage(msg); err != nil {
		return "", err
	}

	d.handles.Insert(handle, p)

	if msgID != "" {
		if err = d.messages.MarkReviewed(ctx, connectionID, msgID); err != nil {
			return "", err
		}
	}

	return p.State(), nil
}

// ToString returns the persisted form of the session.
func (d *DisclosedProofs) ToString(handle uint32) (string, error) {
	p, err := d.handles.Get(handle)
	if err != nil {
		return "", err
	}

	return p.ToString()
}

// FromString restores a persisted session under a new handle.
func (d *DisclosedProofs) FromString(data string) (uint32, error) {
	p, err := presentproof.ProverFromString(data)
	if err != nil {
		return 0, err
	}

	return d.handles.Add(p), nil
}

// Release drops the session.
func (d *DisclosedProofs) Release(handle uint32) error {
	return d.handles.Release(handle)
}

// ReleaseAll drops every session.
func (d *DisclosedProofs) ReleaseAll() {
	d.handles.Drain()
}

// IsValidHandle reports whether handle names a live session.
func (d *DisclosedProofs) IsValidHandle(handle uint32) bool {
	return d.handles.Contains(handle)
}

// ThreadID returns the thread id of the session.
func (d *DisclosedProofs) ThreadID(handle uint32) (string, error) {
	p, err := d.handles.Get(handle)
	if err != nil {
		return "", err
	}

	return p.ThreadID(), nil
}

// SourceID returns the source id of the session.
func (d *DisclosedProofs) SourceID(handle uint32) (string, error) {
	p, err := d.handles.Get(handle)
	if err != nil {
		return "", err
	}

	return p.SourceID(), nil
}

// PresentationStatus returns whether the verifier accepted the presentation.
func (d *DisclosedProofs) PresentationStatus(handle uint32) (presentproof.VerificationStatus, error) {
	p, err := d.handles.Get(handle)
	if err != nil {
		return "", err
	}

	return p.PresentationStatus(), nil
}

// PresentationMessage returns the generated presentation.
func (d *DisclosedProofs) PresentationMessage(handle uint32) (*presentproof.Presentation, error) {
	p, err := d.handles.Get(handle)
	if err != nil {
		return nil, err
	}

	if p.Presentation() == nil {
		return nil, errkind.New(errkind.InvalidState, "no presentation generated in state %s", p.State())
	}

	return p.Presentation(), nil
}

// GenerateProof builds the presentation from the selected credentials.
func (d *DisclosedProofs) GenerateProof(ctx context.Context, handle uint32, selected anoncreds.SelectedCredentials,
	selfAttested map[string]string) error {
	p, err := d.handles.GetCloned(handle)
	if err != nil {
		return err
	}

	if err = p.GeneratePresentation(ctx, d.wallet, d.ledger, d.gateway, selected, selfAttested); err != nil {
		return err
	}

	d.handles.Insert(handle, p)

	return nil
}

// RetrieveCredentials lists the wallet credentials able to answer the request.
func (d *DisclosedProofs) RetrieveCredentials(ctx context.Context, handle uint32) (*anoncreds.CandidateSet, error) {
	p, err := d.handles.Get(handle)
	if err != nil {
		return nil, err
	}

	return p.RetrieveCredentials(ctx, d.wallet, d.gateway)
}

// SendProof sends the generated presentation over the connection.
func (d *DisclosedProofs) SendProof(ctx context.Context, handle uint32, connectionID string) error {
	p, err := d.handles.GetCloned(handle)
	if err != nil {
		return err
	}

	msg, err := p.MarkPresentationSent()
	if err != nil {
		return err
	}

	return d.sendAndCommit(ctx, handle, connectionID, p, msg)
}

// RejectProof declines the request with the standard rejection reason.
func (d *DisclosedProofs) RejectProof(ctx context.Context, handle uint32, connectionID string) error {
	return d.DeclinePresentationRequest(ctx, handle, connectionID, RejectReason, nil)
}

// DeclinePresentationRequest declines the request, optionally proposing counter instead.
func (d *DisclosedProofs) DeclinePresentationRequest(ctx context.Context, handle uint32, connectionID, reason string,
	counter *presentproof.PresentationPreview) error {
	p, err := d.handles.GetCloned(handle)
	if err != nil {
		return err
	}

	msg, err := p.DeclinePresentationRequest(reason, counter)
	if err != nil {
		return err
	}

	return d.sendAndCommit(ctx, handle, connectionID, p, msg)
}

func (d *DisclosedProofs) sendAndCommit(ctx context.Context, handle uint32, connectionID string,
	p *presentproof.Prover, msg presentproof.Message) error {
	send, err := d.connections.Sender(ctx, connectionID)
	if err != nil {
		return err
	}

	if err = send(ctx, msg); err != nil {
		return errkind.Wrap(err, errkind.TransportError, "send %s", msg.Kind())
	}

	d.handles.Insert(handle, p)

	return nil
}

// ProofRequestData returns the decoded request as JSON.
func (d *DisclosedProofs) ProofRequestData(handle uint32) (string, error) {
	p, err := d.handles.Get(handle)
	if err != nil {
		return "", err
	}

	req, err := p.ProofRequest()
	if err != nil {
		return "", err
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return "", errkind.Wrap(err, errkind.InvalidJSON, "encode presentation request")
	}

	return string(raw), nil
}

// ProofRequestAttachment returns the request attachment content as received.
func (d *DisclosedProofs) ProofRequestAttachment(handle uint32) (string, error) {
	p, err := d.handles.Get(handle)
	if err != nil {
		return "", err
	}

	if p.Request() == nil {
		return "", errkind.New(errkind.InvalidState, "no presentation request in state %s", p.State())
	}

	raw, err := p.Request().RequestData()
	if err != nil {
		return "", err
	}

	return string(raw), nil
}
