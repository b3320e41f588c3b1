/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"context"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/store/proofsession"
)

// SendProofRequest sends request over the connection and returns the thread id of the new verifier
// session. With a proposal the request answers it on the proposal's thread, replacing any session
// already held for that thread.
func (c *Client) SendProofRequest(ctx context.Context, connectionID string, request anoncreds.ProofRequest,
	proposal *presentproof.ProposePresentation) (threadID string, err error) {
	ctx, end := c.begin(ctx, roleVerifier, "send-request", "")
	defer end(&err)

	sender, err := c.sender(ctx, connectionID)
	if err != nil {
		return "", err
	}

	var v *presentproof.Verifier

	if proposal != nil {
		v, err = presentproof.NewVerifierFromProposal(request.Name, proposal, request)
	} else {
		v, err = presentproof.NewVerifierFromRequest(request.Name, request)
	}

	if err != nil {
		return "", err
	}

	if proposal != nil {
		unlock := c.locks.lock(roleVerifier, v.ThreadID())
		defer unlock()
	}

	msg, err := v.MarkPresentationRequestSent()
	if err != nil {
		return "", err
	}

	if err = c.send(ctx, sender, msg); err != nil {
		return "", err
	}

	if err = c.commitVerifier(&VerifierSession{ConnectionID: connectionID, Verifier: v}); err != nil {
		return "", err
	}

	logger.Debugf("verifier thread [%s]: request sent on connection %s", v.ThreadID(), connectionID)

	return v.ThreadID(), nil
}

// VerifyPresentation verifies p on the session's thread, answers the prover with an ack or a problem
// report and returns the verification status. A nil p verifies the presentation already received.
func (c *Client) VerifyPresentation(ctx context.Context, threadID string,
	p *presentproof.Presentation) (status presentproof.VerificationStatus, err error) {
	ctx, end := c.begin(ctx, roleVerifier, "verify-presentation", threadID)
	defer end(&err)

	unlock := c.locks.lock(roleVerifier, threadID)
	defer unlock()

	s, err := c.verifiers.GetCloned(threadID)
	if err != nil {
		return "", err
	}

	sender, err := c.sender(ctx, s.ConnectionID)
	if err != nil {
		return "", err
	}

	reply, err := s.Verifier.VerifyPresentation(ctx, c.ledger, c.gateway, p)
	if err != nil {
		return "", err
	}

	if err = c.send(ctx, sender, reply); err != nil {
		return "", err
	}

	if err = c.commitVerifier(s); err != nil {
		return "", err
	}

	return s.Verifier.VerificationStatus(), nil
}

// UpdateVerifierState advances the session with msg. A nil msg takes the next matching message from the
// connection's pool instead and marks it reviewed once consumed. A received presentation is verified
// straight away. The returned state is unchanged when nothing applies.
func (c *Client) UpdateVerifierState(ctx context.Context, threadID string,
	msg presentproof.Message) (state presentproof.VerifierState, err error) {
	ctx, end := c.begin(ctx, roleVerifier, "update-state", threadID)
	defer end(&err)

	unlock := c.locks.lock(roleVerifier, threadID)
	defer unlock()

	s, err := c.verifiers.GetCloned(threadID)
	if err != nil {
		return "", err
	}

	current := s.Verifier.State()

	var msgID string

	if msg == nil {
		if !s.Verifier.Progressable() {
			return current, nil
		}

		pool, err := c.messages.Messages(ctx, s.ConnectionID)
		if err != nil {
			return "", err
		}

		id, found, ok := presentproof.FindVerifierMessage(s.Verifier, pool)
		if !ok {
			return current, nil
		}

		msgID, msg = id, found
	}

	consumed, err := s.Verifier.ProcessMessage(msg)
	if err != nil {
		return current, c.dropMalformed(ctx, s.ConnectionID, msgID, err)
	}

	if !consumed {
		return current, nil
	}

	if s.Verifier.State() == presentproof.VerifierPresentationReceived {
		sender, err := c.sender(ctx, s.ConnectionID)
		if err != nil {
			return "", err
		}

		reply, err := s.Verifier.VerifyPresentation(ctx, c.ledger, c.gateway, nil)
		if err != nil {
			return current, c.dropMalformed(ctx, s.ConnectionID, msgID, err)
		}

		if err = c.send(ctx, sender, reply); err != nil {
			return "", err
		}
	}

	if err = c.commitVerifier(s); err != nil {
		return "", err
	}

	c.markReviewed(ctx, s.ConnectionID, msgID)

	return s.Verifier.State(), nil
}

func (c *Client) markReviewed(ctx context.Context, connectionID, msgID string) {
	if msgID == "" {
		return
	}

	if err := c.messages.MarkReviewed(ctx, connectionID, msgID); err != nil {
		logger.Warnf("failed to mark message %s of connection %s reviewed: %s", msgID, connectionID, err)
	}
}

// dropMalformed marks a pooled message reviewed when it can never be consumed, so that it no longer
// shadows later messages of the thread. The session is left as it was.
func (c *Client) dropMalformed(ctx context.Context, connectionID, msgID string, err error) error {
	if msgID != "" && (errkind.Is(err, errkind.InvalidJSON) || errkind.Is(err, errkind.InvalidMessages)) {
		logger.Warnf("dropping malformed message %s of connection %s: %s", msgID, connectionID, err)
		c.markReviewed(ctx, connectionID, msgID)
	}

	return err
}

// VerifierSession returns the held verifier session. It must not be modified.
func (c *Client) VerifierSession(threadID string) (*VerifierSession, error) {
	return c.verifiers.Get(threadID)
}

// VerifierState returns the state of a verifier session.
func (c *Client) VerifierState(threadID string) (presentproof.VerifierState, error) {
	s, err := c.verifiers.Get(threadID)
	if err != nil {
		return "", err
	}

	return s.Verifier.State(), nil
}

// PresentationStatus returns the verification status of a verifier session.
func (c *Client) PresentationStatus(threadID string) (presentproof.VerificationStatus, error) {
	s, err := c.verifiers.Get(threadID)
	if err != nil {
		return "", err
	}

	return s.Verifier.VerificationStatus(), nil
}

// VerifierExists reports whether a verifier session is held for threadID.
func (c *Client) VerifierExists(threadID string) bool {
	return c.verifiers.Contains(threadID)
}

// VerifierPresentation returns the presentation received on a verifier session.
func (c *Client) VerifierPresentation(threadID string) (*presentproof.Presentation, error) {
	s, err := c.verifiers.Get(threadID)
	if err != nil {
		return nil, err
	}

	if s.Verifier.Presentation() == nil {
		return nil, errkind.New(errkind.InvalidState, "no presentation received in state %s", s.Verifier.State())
	}

	return s.Verifier.Presentation(), nil
}

// ReleaseVerifier drops a verifier session.
func (c *Client) ReleaseVerifier(threadID string) error {
	if err := c.verifiers.Release(threadID); err != nil {
		return err
	}

	c.updateGauges()

	if c.store != nil {
		return c.store.Delete(proofsession.RoleVerifier, threadID)
	}

	return nil
}

// VerifierToString returns the persisted form of a verifier session.
func (c *Client) VerifierToString(threadID string) (string, error) {
	s, err := c.verifiers.Get(threadID)
	if err != nil {
		return "", err
	}

	return s.Verifier.ToString()
}

// VerifierFromString holds the verifier of a persisted form as a session of connectionID and returns its
// thread id.
func (c *Client) VerifierFromString(connectionID, data string) (string, error) {
	v, err := presentproof.VerifierFromString(data)
	if err != nil {
		return "", err
	}

	if connectionID == "" {
		return "", errkind.New(errkind.InvalidOption, "connection id is required")
	}

	if v.ThreadID() == "" {
		return "", errkind.New(errkind.InvalidState, "verifier has no thread before its request is sent")
	}

	if err = c.commitVerifier(&VerifierSession{ConnectionID: connectionID, Verifier: v}); err != nil {
		return "", err
	}

	return v.ThreadID(), nil
}
