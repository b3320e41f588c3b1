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

// ReceiveProofRequest opens a prover session for a request received on the connection and returns its
// thread id.
func (c *Client) ReceiveProofRequest(ctx context.Context, connectionID, sourceID string,
	req *presentproof.RequestPresentation) (threadID string, err error) {
	ctx, end := c.begin(ctx, roleProver, "receive-request", "")
	defer end(&err)

	if _, err = c.sender(ctx, connectionID); err != nil {
		return "", err
	}

	p, err := presentproof.NewProverFromRequest(sourceID, req)
	if err != nil {
		return "", err
	}

	unlock := c.locks.lock(roleProver, p.ThreadID())
	defer unlock()

	if err = c.commitProver(&ProverSession{ConnectionID: connectionID, Prover: p}); err != nil {
		return "", err
	}

	return p.ThreadID(), nil
}

// SendProposal opens a prover session by proposing preview to the verifier and returns its thread id.
func (c *Client) SendProposal(ctx context.Context, connectionID, sourceID string,
	preview presentproof.PresentationPreview, comment string) (threadID string, err error) {
	ctx, end := c.begin(ctx, roleProver, "send-proposal", "")
	defer end(&err)

	sender, err := c.sender(ctx, connectionID)
	if err != nil {
		return "", err
	}

	p, msg := presentproof.NewProverFromProposal(sourceID, preview, comment)

	if err = c.send(ctx, sender, msg); err != nil {
		return "", err
	}

	if err = c.commitProver(&ProverSession{ConnectionID: connectionID, Prover: p}); err != nil {
		return "", err
	}

	return p.ThreadID(), nil
}

// RetrieveCredentials lists the wallet credentials able to answer the session's request.
func (c *Client) RetrieveCredentials(ctx context.Context, threadID string) (set *anoncreds.CandidateSet, err error) {
	ctx, end := c.begin(ctx, roleProver, "retrieve-credentials", threadID)
	defer end(&err)

	s, err := c.provers.Get(threadID)
	if err != nil {
		return nil, err
	}

	return s.Prover.RetrieveCredentials(ctx, c.wallet, c.gateway)
}

// GeneratePresentation builds the presentation from the selected credentials. Nothing is sent.
func (c *Client) GeneratePresentation(ctx context.Context, threadID string, selected anoncreds.SelectedCredentials,
	selfAttested map[string]string) (err error) {
	ctx, end := c.begin(ctx, roleProver, "generate-presentation", threadID)
	defer end(&err)

	unlock := c.locks.lock(roleProver, threadID)
	defer unlock()

	s, err := c.provers.GetCloned(threadID)
	if err != nil {
		return err
	}

	err = s.Prover.GeneratePresentation(ctx, c.wallet, c.ledger, c.gateway, selected, selfAttested)
	if err != nil {
		return err
	}

	return c.commitProver(s)
}

// SendPresentation sends the generated presentation to the verifier.
func (c *Client) SendPresentation(ctx context.Context, threadID string) (err error) {
	ctx, end := c.begin(ctx, roleProver, "send-presentation", threadID)
	defer end(&err)

	unlock := c.locks.lock(roleProver, threadID)
	defer unlock()

	s, err := c.provers.GetCloned(threadID)
	if err != nil {
		return err
	}

	sender, err := c.sender(ctx, s.ConnectionID)
	if err != nil {
		return err
	}

	msg, err := s.Prover.MarkPresentationSent()
	if err != nil {
		return err
	}

	if err = c.send(ctx, sender, msg); err != nil {
		return err
	}

	return c.commitProver(s)
}

// DeclinePresentationRequest refuses the session's request. With a counter preview the verifier receives
// a new proposal on the same thread, otherwise a problem report carrying reason.
func (c *Client) DeclinePresentationRequest(ctx context.Context, threadID, reason string,
	counter *presentproof.PresentationPreview) (err error) {
	ctx, end := c.begin(ctx, roleProver, "decline-request", threadID)
	defer end(&err)

	unlock := c.locks.lock(roleProver, threadID)
	defer unlock()

	s, err := c.provers.GetCloned(threadID)
	if err != nil {
		return err
	}

	sender, err := c.sender(ctx, s.ConnectionID)
	if err != nil {
		return err
	}

	msg, err := s.Prover.DeclinePresentationRequest(reason, counter)
	if err != nil {
		return err
	}

	if err = c.send(ctx, sender, msg); err != nil {
		return err
	}

	return c.commitProver(s)
}

// UpdateProverState advances the session with msg. A nil msg takes the next matching message from the
// connection's pool instead and marks it reviewed once consumed. The returned state is unchanged when
// nothing applies.
func (c *Client) UpdateProverState(ctx context.Context, threadID string,
	msg presentproof.Message) (state presentproof.ProverState, err error) {
	ctx, end := c.begin(ctx, roleProver, "update-state", threadID)
	defer end(&err)

	unlock := c.locks.lock(roleProver, threadID)
	defer unlock()

	s, err := c.provers.GetCloned(threadID)
	if err != nil {
		return "", err
	}

	current := s.Prover.State()

	var msgID string

	if msg == nil {
		if !s.Prover.Progressable() {
			return current, nil
		}

		pool, err := c.messages.Messages(ctx, s.ConnectionID)
		if err != nil {
			return "", err
		}

		id, found, ok := presentproof.FindProverMessage(s.Prover, pool)
		if !ok {
			return current, nil
		}

		msgID, msg = id, found
	}

	consumed, err := s.Prover.ProcessMessage(msg)
	if err != nil {
		return current, c.dropMalformed(ctx, s.ConnectionID, msgID, err)
	}

	if !consumed {
		return current, nil
	}

	if err = c.commitProver(s); err != nil {
		return "", err
	}

	c.markReviewed(ctx, s.ConnectionID, msgID)

	return s.Prover.State(), nil
}

// ProverSession returns the held prover session. It must not be modified.
func (c *Client) ProverSession(threadID string) (*ProverSession, error) {
	return c.provers.Get(threadID)
}

// ProverState returns the state of a prover session.
func (c *Client) ProverState(threadID string) (presentproof.ProverState, error) {
	s, err := c.provers.Get(threadID)
	if err != nil {
		return "", err
	}

	return s.Prover.State(), nil
}

// ProverPresentationStatus returns whether the verifier accepted the prover's presentation.
func (c *Client) ProverPresentationStatus(threadID string) (presentproof.VerificationStatus, error) {
	s, err := c.provers.Get(threadID)
	if err != nil {
		return "", err
	}

	return s.Prover.PresentationStatus(), nil
}

// ProverRequest returns the decoded request held by a prover session.
func (c *Client) ProverRequest(threadID string) (*anoncreds.ProofRequest, error) {
	s, err := c.provers.Get(threadID)
	if err != nil {
		return nil, err
	}

	return s.Prover.ProofRequest()
}

// ProverExists reports whether a prover session is held for threadID.
func (c *Client) ProverExists(threadID string) bool {
	return c.provers.Contains(threadID)
}

// ReleaseProver drops a prover session.
func (c *Client) ReleaseProver(threadID string) error {
	if err := c.provers.Release(threadID); err != nil {
		return err
	}

	c.updateGauges()

	if c.store != nil {
		return c.store.Delete(proofsession.RoleProver, threadID)
	}

	return nil
}

// ProverToString returns the persisted form of a prover session.
func (c *Client) ProverToString(threadID string) (string, error) {
	s, err := c.provers.Get(threadID)
	if err != nil {
		return "", err
	}

	return s.Prover.ToString()
}

// ProverFromString holds the prover of a persisted form as a session of connectionID and returns its
// thread id.
func (c *Client) ProverFromString(connectionID, data string) (string, error) {
	p, err := presentproof.ProverFromString(data)
	if err != nil {
		return "", err
	}

	if connectionID == "" {
		return "", errkind.New(errkind.InvalidOption, "connection id is required")
	}

	if err = c.commitProver(&ProverSession{ConnectionID: connectionID, Prover: p}); err != nil {
		return "", err
	}

	return p.ThreadID(), nil
}
