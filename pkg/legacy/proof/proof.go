/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package proof exposes verifier sessions through numeric handles. The connection a message travels on
// is named on every call that sends or polls.
package proof

import (
	"context"
	"encoding/json"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	ppclient "github.com/hyperledger/aries-proof-go/pkg/client/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/store/objectcache"
)

// Proofs holds verifier sessions by handle.
type Proofs struct {
	connections ppclient.ConnectionLookup
	messages    ppclient.MessagePool
	ledger      anoncreds.LedgerRead
	gateway     anoncreds.Gateway
	handles     *objectcache.Handles[*presentproof.Verifier]
}

// New returns an empty handle space.
func New(ctx ppclient.Provider) *Proofs {
	return &Proofs{
		connections: ctx.Connections(),
		messages:    ctx.Messages(),
		ledger:      ctx.Ledger(),
		gateway:     ctx.Gateway(),
		handles:     objectcache.NewHandles[*presentproof.Verifier]("proofs-cache", (*presentproof.Verifier).Clone),
	}
}

// Create opens a session from the JSON encoded requested attributes, requested predicates and
// non-revocation interval. Empty predicates and interval are allowed.
func (p *Proofs) Create(sourceID, name string, attrs, predicates, nonRevoked []byte) (uint32, error) {
	req := anoncreds.ProofRequest{Name: name}

	if err := json.Unmarshal(attrs, &req.RequestedAttributes); err != nil {
		return 0, errkind.Wrap(err, errkind.InvalidAttributesStructure, "cannot parse requested attributes")
	}

	if len(predicates) > 0 {
		if err := json.Unmarshal(predicates, &req.RequestedPredicates); err != nil {
			return 0, errkind.Wrap(err, errkind.InvalidAttributesStructure, "cannot parse requested predicates")
		}
	}

	if len(nonRevoked) > 0 {
		if err := json.Unmarshal(nonRevoked, &req.NonRevoked); err != nil {
			return 0, errkind.Wrap(err, errkind.InvalidJSON, "cannot parse revocation interval")
		}
	}

	v, err := presentproof.NewVerifierFromRequest(sourceID, req)
	if err != nil {
		return 0, err
	}

	return p.handles.Add(v), nil
}

// SendRequest sends the request over the connection.
func (p *Proofs) SendRequest(ctx context.Context, handle uint32, connectionID string) error {
	v, err := p.handles.GetCloned(handle)
	if err != nil {
		return err
	}

	send, err := p.connections.Sender(ctx, connectionID)
	if err != nil {
		return err
	}

	msg, err := v.MarkPresentationRequestSent()
	if err != nil {
		return err
	}

	if err = send(ctx, msg); err != nil {
		return errkind.Wrap(err, errkind.TransportError, "send request")
	}

	p.handles.Insert(handle, v)

	return nil
}

// State returns the state of the session.
func (p *Proofs) State(handle uint32) (presentproof.VerifierState, error) {
	v, err := p.handles.Get(handle)
	if err != nil {
		return "", err
	}

	return v.State(), nil
}

// UpdateState advances the session with rawMsg, or with the next matching message of the connection's
// pool when rawMsg is empty. A received presentation is verified and answered straight away.
func (p *Proofs) UpdateState(ctx context.Context, handle uint32, connectionID string,
	rawMsg []byte) (presentproof.VerifierState, error) {
	v, err := p.handles.GetCloned(handle)
	if err != nil {
		return "", err
	}

	if !v.Progressable() {
		return v.State(), nil
	}

	var msgID string

	var msg presentproof.Message

	if len(rawMsg) > 0 {
		msg, err = presentproof.ParseMessage(rawMsg)
		if err != nil {
			return "", errkind.Wrap(err, errkind.InvalidOption, "cannot update state with message")
		}
	} else {
		pool, err := p.messages.Messages(ctx, connectionID)
		if err != nil {
			return "", err
		}

		id, found, ok := presentproof.FindVerifierMessage(v, pool)
		if !ok {
			return v.State(), nil
		}

		msgID, msg = id, found
	}

	if _, err = v.ProcessMessage(msg); err != nil {
		return "", err
	}

	if v.State() == presentproof.VerifierPresentationReceived {
		if err = p.verifyAndReply(ctx, v, connectionID); err != nil {
			return "", err
		}
	}

	p.handles.Insert(handle, v)

	if msgID != "" {
		if err = p.messages.MarkReviewed(ctx, connectionID, msgID); err != nil {
			return "", err
		}
	}

	return v.State(), nil
}

func (p *Proofs) verifyAndReply(ctx context.Context, v *presentproof.Verifier, connectionID string) error {
	send, err := p.connections.Sender(ctx, connectionID)
	if err != nil {
		return err
	}

	reply, err := v.VerifyPresentation(ctx, p.ledger, p.gateway, nil)
	if err != nil {
		return err
	}

	if err = send(ctx, reply); err != nil {
		return errkind.Wrap(err, errkind.TransportError, "send %s", reply.Kind())
	}

	return nil
}

// Presentation returns the presentation received on the session.
func (p *Proofs) Presentation(handle uint32) (*presentproof.Presentation, error) {
	v, err := p.handles.Get(handle)
	if err != nil {
		return nil, err
	}

	if v.Presentation() == nil {
		return nil, errkind.New(errkind.InvalidState, "no presentation received in state %s", v.State())
	}

	return v.Presentation(), nil
}

// PresentationStatus returns the verification status of the session.
func (p *Proofs) PresentationStatus(handle uint32) (presentproof.VerificationStatus, error) {
	v, err := p.handles.Get(handle)
	if err != nil {
		return "", err
	}

	return v.VerificationStatus(), nil
}

// ThreadID returns the thread id of the session, empty before the request is sent.
func (p *Proofs) ThreadID(handle uint32) (string, error) {
	v, err := p.handles.Get(handle)
	if err != nil {
		return "", err
	}

	return v.ThreadID(), nil
}

// SourceID returns the source id of the session.
func (p *Proofs) SourceID(handle uint32) (string, error) {
	v, err := p.handles.Get(handle)
	if err != nil {
		return "", err
	}

	return v.SourceID(), nil
}

// ToString returns the persisted form of the session.
func (p *Proofs) ToString(handle uint32) (string, error) {
	v, err := p.handles.Get(handle)
	if err != nil {
		return "", err
	}

	return v.ToString()
}

// FromString restores a persisted session under a new handle.
func (p *Proofs) FromString(data string) (uint32, error) {
	v, err := presentproof.VerifierFromString(data)
	if err != nil {
		return 0, err
	}

	return p.handles.Add(v), nil
}

// Release drops the session.
func (p *Proofs) Release(handle uint32) error {
	return p.handles.Release(handle)
}

// ReleaseAll drops every session.
func (p *Proofs) ReleaseAll() {
	p.handles.Drain()
}

// IsValidHandle reports whether handle names a live session.
func (p *Proofs) IsValidHandle(handle uint32) bool {
	return p.handles.Contains(handle)
}
