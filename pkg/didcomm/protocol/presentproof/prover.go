/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/common/model"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/decorator"
)

// Prover is the holder side of a presentation exchange.
// Messages held by a Prover are never modified after they are stored, so Clone may share them.
type Prover struct {
	sourceID     string
	threadID     string
	state        ProverState
	request      *RequestPresentation
	proposal     *ProposePresentation
	presentation *Presentation
	selected     anoncreds.SelectedCredentials
	status       VerificationStatus
	problem      *ProblemReport
}

// NewProverFromRequest creates a prover holding req, in the request-received state.
func NewProverFromRequest(sourceID string, req *RequestPresentation) (*Prover, error) {
	if req == nil {
		return nil, errkind.New(errkind.InvalidOption, "request presentation is required")
	}

	if _, err := req.RequestData(); err != nil {
		return nil, err
	}

	threadID := req.ThreadID()
	if threadID == "" {
		threadID = req.ID
	}

	if threadID == "" {
		return nil, errkind.New(errkind.InvalidMessages, "request carries neither @id nor thread id")
	}

	return &Prover{
		sourceID: sourceID,
		threadID: threadID,
		state:    ProverRequestReceived,
		request:  req,
		status:   StatusUnverified,
	}, nil
}

// NewProverFromProposal opens a conversation with a proposal. The returned message must be sent to the
// verifier; the prover then waits for a request in the proposal-sent state.
func NewProverFromProposal(sourceID string, preview PresentationPreview, comment string) (*Prover,
	*ProposePresentation) {
	if preview.Type == "" {
		preview.Type = PresentationPreviewMsgType
	}

	msg := &ProposePresentation{
		Type:                 ProposePresentationMsgType,
		ID:                   uuid.New().String(),
		Comment:              comment,
		PresentationProposal: preview,
	}

	return &Prover{
		sourceID: sourceID,
		threadID: msg.ID,
		state:    ProverProposalSent,
		proposal: msg,
		status:   StatusUnverified,
	}, msg
}

// SourceID returns the caller-chosen label of the session.
func (p *Prover) SourceID() string { return p.sourceID }

// ThreadID returns the conversation thread id.
func (p *Prover) ThreadID() string { return p.threadID }

// State returns the current state.
func (p *Prover) State() ProverState { return p.state }

// Request returns the request message, if one was received.
func (p *Prover) Request() *RequestPresentation { return p.request }

// Proposal returns the last proposal sent, if any.
func (p *Prover) Proposal() *ProposePresentation { return p.proposal }

// Presentation returns the constructed presentation, if any.
func (p *Prover) Presentation() *Presentation { return p.presentation }

// SelectedCredentials returns the credentials the presentation was built from.
func (p *Prover) SelectedCredentials() anoncreds.SelectedCredentials { return p.selected }

// PresentationStatus is valid once the verifier acknowledged the presentation and invalid once it
// reported a problem with it.
func (p *Prover) PresentationStatus() VerificationStatus { return p.status }

// ProblemReport returns the last problem report sent or received, if any.
func (p *Prover) ProblemReport() *ProblemReport { return p.problem }

// Progressable reports whether an inbound message can advance the session.
func (p *Prover) Progressable() bool { return len(proverRules[p.state]) > 0 }

// Clone returns a copy that can be advanced without affecting p.
func (p *Prover) Clone() *Prover {
	c := *p

	if p.selected != nil {
		c.selected = make(anoncreds.SelectedCredentials, len(p.selected))
		for k, v := range p.selected {
			c.selected[k] = v
		}
	}

	return &c
}

func (p *Prover) canMoveTo(next ProverState) error {
	if !p.state.CanTransitionTo(next) {
		return errkind.New(errkind.InvalidState, "prover cannot move from %s to %s", p.state, next)
	}

	return nil
}

// ProofRequest validates and decodes the held request.
func (p *Prover) ProofRequest() (*anoncreds.ProofRequest, error) {
	if p.request == nil {
		return nil, errkind.New(errkind.InvalidState, "no presentation request in state %s", p.state)
	}

	raw, err := p.request.RequestData()
	if err != nil {
		return nil, err
	}

	return anoncreds.ParseProofRequest(raw)
}

// RetrieveCredentials lists the wallet credentials able to answer the request. It does not change state.
func (p *Prover) RetrieveCredentials(ctx context.Context, w anoncreds.Wallet,
	gateway anoncreds.Gateway) (*anoncreds.CandidateSet, error) {
	if p.state != ProverRequestReceived && p.state != ProverPresentationPrepared {
		return nil, errkind.New(errkind.InvalidState, "cannot retrieve credentials in state %s", p.state)
	}

	req, err := p.ProofRequest()
	if err != nil {
		return nil, err
	}

	candidates, err := gateway.RetrieveCandidateCredentials(ctx, w, req)
	if err != nil {
		return nil, errkind.Wrap(err, errkind.CredentialGatewayError, "retrieve candidate credentials")
	}

	return candidates, nil
}

// GeneratePresentation builds the presentation from the selected credentials and moves to
// presentation-prepared. Nothing changes if any step fails.
func (p *Prover) GeneratePresentation(ctx context.Context, w anoncreds.Wallet, ledger anoncreds.LedgerRead,
	gateway anoncreds.Gateway, selected anoncreds.SelectedCredentials, selfAttested map[string]string) error {
	if p.state != ProverRequestReceived {
		return errkind.New(errkind.InvalidState, "cannot generate a presentation in state %s", p.state)
	}

	req, err := p.ProofRequest()
	if err != nil {
		return err
	}

	in, err := resolvePresentationInputs(ctx, ledger, gateway, req, selected, selfAttested)
	if err != nil {
		return err
	}

	proof, err := gateway.ConstructPresentation(ctx, w, in)
	if err != nil {
		return errkind.Wrap(err, errkind.CredentialGatewayError, "construct presentation")
	}

	raw, err := json.Marshal(proof)
	if err != nil {
		return errkind.Wrap(err, errkind.CredentialGatewayError, "encode presentation")
	}

	p.presentation = &Presentation{
		Type: PresentationMsgType,
		ID:   uuid.New().String(),
		Presentations: []decorator.Attachment{
			decorator.NewBase64Attachment(presentationAttachID, attachMimeType, raw),
		},
		Thread: &decorator.Thread{ID: p.threadID},
	}
	p.selected = selected
	p.state = ProverPresentationPrepared

	return nil
}

func resolvePresentationInputs(ctx context.Context, ledger anoncreds.LedgerRead, gateway anoncreds.Gateway,
	req *anoncreds.ProofRequest, selected anoncreds.SelectedCredentials,
	selfAttested map[string]string) (*anoncreds.PresentationInputs, error) {
	in := &anoncreds.PresentationInputs{
		Request:      req,
		Selected:     selected,
		SelfAttested: selfAttested,
		Schemas:      map[string]*anoncreds.Schema{},
		CredDefs:     map[string]*anoncreds.CredentialDefinition{},
		RevStates:    map[string]*anoncreds.RevocationDelta{},
	}

	for referent, sel := range selected {
		interval, known := referentInterval(req, referent)
		if !known {
			return nil, errkind.New(errkind.InvalidOption, "referent [%s] is not part of the request", referent)
		}

		info := sel.Credential.CredInfo

		if _, ok := in.Schemas[info.SchemaID]; !ok {
			schema, err := ledger.GetSchema(ctx, info.SchemaID)
			if err != nil {
				return nil, errkind.Wrap(err, errkind.CredentialGatewayError, "resolve schema %s", info.SchemaID)
			}

			in.Schemas[info.SchemaID] = schema
		}

		if _, ok := in.CredDefs[info.CredDefID]; !ok {
			credDef, err := ledger.GetCredDef(ctx, info.CredDefID)
			if err != nil {
				return nil, errkind.Wrap(err, errkind.CredentialGatewayError, "resolve cred def %s", info.CredDefID)
			}

			in.CredDefs[info.CredDefID] = credDef
		}

		if info.RevRegID == "" || interval == nil {
			continue
		}

		if _, ok := in.RevStates[info.RevRegID]; ok {
			continue
		}

		delta, err := gateway.ComputeRevocationDelta(ctx, info.RevRegID, interval.From, interval.To)
		if err != nil {
			return nil, errkind.Wrap(err, errkind.CredentialGatewayError, "compute revocation delta %s", info.RevRegID)
		}

		in.RevStates[info.RevRegID] = delta
	}

	return in, nil
}

// referentInterval returns the non-revocation window that applies to referent.
func referentInterval(req *anoncreds.ProofRequest, referent string) (*anoncreds.NonRevokedInterval, bool) {
	if a, ok := req.RequestedAttributes[referent]; ok {
		if a.NonRevoked != nil {
			return a.NonRevoked, true
		}

		return req.NonRevoked, true
	}

	if pr, ok := req.RequestedPredicates[referent]; ok {
		if pr.NonRevoked != nil {
			return pr.NonRevoked, true
		}

		return req.NonRevoked, true
	}

	return nil, false
}

// MarkPresentationSent returns the prepared presentation and moves to presentation-sent.
func (p *Prover) MarkPresentationSent() (*Presentation, error) {
	if p.state != ProverPresentationPrepared {
		return nil, errkind.New(errkind.InvalidState, "presentation can only be sent from %s, current state %s",
			ProverPresentationPrepared, p.state)
	}

	p.state = ProverPresentationSent

	return p.presentation, nil
}

// DeclinePresentationRequest refuses the request and moves to declined. With a counter proposal the
// outbound message is a propose-presentation on the same thread, otherwise a problem report carrying
// reason.
func (p *Prover) DeclinePresentationRequest(reason string, counter *PresentationPreview) (Message, error) {
	if err := p.canMoveTo(ProverDeclined); err != nil {
		return nil, err
	}

	thread := &decorator.Thread{ID: p.threadID}

	var out Message

	if counter != nil {
		preview := *counter
		if preview.Type == "" {
			preview.Type = PresentationPreviewMsgType
		}

		proposal := &ProposePresentation{
			Type:                 ProposePresentationMsgType,
			ID:                   uuid.New().String(),
			Comment:              reason,
			PresentationProposal: preview,
			Thread:               thread,
		}
		p.proposal = proposal
		out = proposal
	} else {
		report := &ProblemReport{
			Type:        ProblemReportMsgType,
			ID:          uuid.New().String(),
			Description: model.Code{Code: codeRejected, En: reason},
			Thread:      thread,
		}
		p.problem = report
		out = report
	}

	p.state = ProverDeclined

	return out, nil
}

// ProcessMessage advances the session with an inbound message. It returns false, without error, when
// the message kind is not expected in the current state.
func (p *Prover) ProcessMessage(msg Message) (bool, error) {
	if msg == nil {
		return false, nil
	}

	r, ok := ruleFor(proverRules[p.state], msg.Kind())
	if !ok {
		return false, nil
	}

	if !r.threadMatches(msg, p.threadID) {
		return false, errkind.New(errkind.InvalidMessages, "%s thread [%s] does not match session thread [%s]",
			msg.Kind(), msg.ThreadID(), p.threadID)
	}

	switch m := msg.(type) {
	case *RequestPresentation:
		if _, err := m.RequestData(); err != nil {
			return false, err
		}

		p.request = m
		p.state = ProverRequestReceived
	case *Ack:
		p.status = StatusValid
		p.state = ProverFinished
	case *ProblemReport:
		if p.state == ProverPresentationSent {
			p.status = StatusInvalid
		}

		p.problem = m
		p.state = ProverFailed
	default:
		return false, nil
	}

	return true, nil
}
