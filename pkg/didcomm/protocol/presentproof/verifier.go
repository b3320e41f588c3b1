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

const defaultRequestVersion = "1.0"

// Verifier is the verifier side of a presentation exchange.
// Messages held by a Verifier are never modified after they are stored, so Clone may share them.
type Verifier struct {
	sourceID     string
	threadID     string
	state        VerifierState
	request      *anoncreds.ProofRequest
	requestMsg   *RequestPresentation
	proposal     *ProposePresentation
	presentation *Presentation
	status       VerificationStatus
	problem      *ProblemReport
}

// NewVerifierFromRequest creates a verifier in the request-set state. The thread id is assigned when the
// request is sent.
func NewVerifierFromRequest(sourceID string, req anoncreds.ProofRequest) (*Verifier, error) {
	prepared, err := prepareRequest(req)
	if err != nil {
		return nil, err
	}

	return &Verifier{
		sourceID: sourceID,
		state:    VerifierRequestSet,
		request:  prepared,
		status:   StatusUnverified,
	}, nil
}

// NewVerifierFromProposal creates a verifier answering a prover's proposal with req.
func NewVerifierFromProposal(sourceID string, proposal *ProposePresentation,
	req anoncreds.ProofRequest) (*Verifier, error) {
	if proposal == nil {
		return nil, errkind.New(errkind.InvalidOption, "proposal is required")
	}

	threadID := proposal.ThreadID()
	if threadID == "" {
		threadID = proposal.ID
	}

	if threadID == "" {
		return nil, errkind.New(errkind.InvalidMessages, "proposal carries neither @id nor thread id")
	}

	prepared, err := prepareRequest(req)
	if err != nil {
		return nil, err
	}

	return &Verifier{
		sourceID: sourceID,
		threadID: threadID,
		state:    VerifierRequestSet,
		request:  prepared,
		proposal: proposal,
		status:   StatusUnverified,
	}, nil
}

func prepareRequest(req anoncreds.ProofRequest) (*anoncreds.ProofRequest, error) {
	if req.Nonce == "" {
		nonce, err := anoncreds.GenerateNonce()
		if err != nil {
			return nil, err
		}

		req.Nonce = nonce
	}

	if req.Version == "" {
		req.Version = defaultRequestVersion
	}

	if req.RequestedPredicates == nil {
		req.RequestedPredicates = map[string]anoncreds.PredicateInfo{}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return &req, nil
}

// SourceID returns the caller-chosen label of the session.
func (v *Verifier) SourceID() string { return v.sourceID }

// ThreadID returns the conversation thread id, or "" before the request is sent.
func (v *Verifier) ThreadID() string { return v.threadID }

// State returns the current state.
func (v *Verifier) State() VerifierState { return v.state }

// VerificationStatus returns the outcome of verification.
func (v *Verifier) VerificationStatus() VerificationStatus { return v.status }

// Request returns the presentation request.
func (v *Verifier) Request() *anoncreds.ProofRequest { return v.request }

// RequestMessage returns the last request message sent, if any.
func (v *Verifier) RequestMessage() *RequestPresentation { return v.requestMsg }

// Proposal returns the prover's proposal, if any.
func (v *Verifier) Proposal() *ProposePresentation { return v.proposal }

// Presentation returns the received presentation, if any.
func (v *Verifier) Presentation() *Presentation { return v.presentation }

// ProblemReport returns the last problem report sent or received, if any.
func (v *Verifier) ProblemReport() *ProblemReport { return v.problem }

// Progressable reports whether an inbound message can advance the session.
func (v *Verifier) Progressable() bool { return len(verifierRules[v.state]) > 0 }

// Clone returns a copy that can be advanced without affecting v.
func (v *Verifier) Clone() *Verifier {
	c := *v

	return &c
}

func (v *Verifier) canMoveTo(next VerifierState) error {
	if !v.state.CanTransitionTo(next) {
		return errkind.New(errkind.InvalidState, "verifier cannot move from %s to %s", v.state, next)
	}

	return nil
}

// MarkPresentationRequestSent builds the request message to send and moves to request-sent.
func (v *Verifier) MarkPresentationRequestSent() (*RequestPresentation, error) {
	if v.state != VerifierRequestSet {
		return nil, errkind.New(errkind.InvalidState, "request can only be sent from %s, current state %s",
			VerifierRequestSet, v.state)
	}

	raw, err := json.Marshal(v.request)
	if err != nil {
		return nil, errkind.Wrap(err, errkind.InvalidProofRequest, "encode presentation request")
	}

	msg := &RequestPresentation{
		Type: RequestPresentationMsgType,
		ID:   uuid.New().String(),
		RequestPresentations: []decorator.Attachment{
			decorator.NewBase64Attachment(requestAttachID, attachMimeType, raw),
		},
	}

	threadID := v.threadID
	if threadID == "" {
		threadID = msg.ID
	} else {
		msg.Thread = &decorator.Thread{ID: threadID}
	}

	v.threadID = threadID
	v.requestMsg = msg
	v.state = VerifierRequestSent

	return msg, nil
}

// ReceivePresentation stores an inbound presentation for later verification.
func (v *Verifier) ReceivePresentation(p *Presentation) error {
	if err := v.canMoveTo(VerifierPresentationReceived); err != nil {
		return err
	}

	if err := v.checkThread(p); err != nil {
		return err
	}

	v.presentation = p
	v.state = VerifierPresentationReceived

	return nil
}

func (v *Verifier) checkThread(p *Presentation) error {
	if p == nil {
		return errkind.New(errkind.InvalidOption, "presentation is required")
	}

	if p.ThreadID() != v.threadID {
		return errkind.New(errkind.InvalidMessages, "presentation thread [%s] does not match session thread [%s]",
			p.ThreadID(), v.threadID)
	}

	return nil
}

// VerifyPresentation checks p against the request and the ledger state it claims, sets the verification
// status and moves to finished. A proof that does not verify is not an error: the status becomes invalid
// and the returned message is a problem report instead of an ack.
// From presentation-received, p may be nil to verify the stored presentation.
func (v *Verifier) VerifyPresentation(ctx context.Context, ledger anoncreds.LedgerRead, gateway anoncreds.Gateway,
	p *Presentation) (Message, error) {
	switch {
	case v.state == VerifierPresentationReceived && p == nil:
		p = v.presentation
	case v.state == VerifierRequestSent || v.state == VerifierPresentationReceived:
		if err := v.checkThread(p); err != nil {
			return nil, err
		}
	default:
		return nil, errkind.New(errkind.InvalidState, "cannot verify a presentation in state %s", v.state)
	}

	proof, err := p.Proof()
	if err != nil {
		return nil, err
	}

	in, err := resolveVerificationInputs(ctx, ledger, v.request, proof)
	if err != nil {
		return nil, err
	}

	valid, err := gateway.VerifyPresentation(ctx, in)
	if err != nil {
		return nil, errkind.Wrap(err, errkind.CredentialGatewayError, "verify presentation")
	}

	thread := &decorator.Thread{ID: v.threadID}

	var reply Message

	if valid {
		v.status = StatusValid
		reply = &Ack{Type: AckMsgType, ID: uuid.New().String(), Status: model.AckStatusOK, Thread: thread}
	} else {
		v.status = StatusInvalid
		report := &ProblemReport{
			Type:        ProblemReportMsgType,
			ID:          uuid.New().String(),
			Description: model.Code{Code: codeInvalidPresentation, En: "presentation failed verification"},
			Thread:      thread,
		}
		v.problem = report
		reply = report
	}

	logger.Debugf("verifier thread [%s]: presentation verified, status %s", v.threadID, v.status)

	v.presentation = p
	v.state = VerifierFinished

	return reply, nil
}

func resolveVerificationInputs(ctx context.Context, ledger anoncreds.LedgerRead, req *anoncreds.ProofRequest,
	proof *anoncreds.Proof) (*anoncreds.VerificationInputs, error) {
	in := &anoncreds.VerificationInputs{
		Request:    req,
		Proof:      proof,
		Schemas:    map[string]*anoncreds.Schema{},
		CredDefs:   map[string]*anoncreds.CredentialDefinition{},
		RevRegDefs: map[string]*anoncreds.RevocationRegistryDefinition{},
		RevRegs:    map[string]map[uint64]*anoncreds.RevocationDelta{},
	}

	for _, id := range proof.Identifiers {
		if _, ok := in.Schemas[id.SchemaID]; !ok {
			schema, err := ledger.GetSchema(ctx, id.SchemaID)
			if err != nil {
				return nil, errkind.Wrap(err, errkind.CredentialGatewayError, "resolve schema %s", id.SchemaID)
			}

			in.Schemas[id.SchemaID] = schema
		}

		if _, ok := in.CredDefs[id.CredDefID]; !ok {
			credDef, err := ledger.GetCredDef(ctx, id.CredDefID)
			if err != nil {
				return nil, errkind.Wrap(err, errkind.CredentialGatewayError, "resolve cred def %s", id.CredDefID)
			}

			in.CredDefs[id.CredDefID] = credDef
		}

		if id.RevRegID == "" || id.Timestamp == nil {
			continue
		}

		if err := resolveRevocation(ctx, ledger, in, id.RevRegID, *id.Timestamp); err != nil {
			return nil, err
		}
	}

	return in, nil
}

// resolveRevocation pins the registry state to the timestamp the proof claims.
func resolveRevocation(ctx context.Context, ledger anoncreds.LedgerRead, in *anoncreds.VerificationInputs,
	revRegID string, ts uint64) error {
	if _, ok := in.RevRegDefs[revRegID]; !ok {
		def, err := ledger.GetRevRegDef(ctx, revRegID)
		if err != nil {
			return errkind.Wrap(err, errkind.CredentialGatewayError, "resolve rev reg def %s", revRegID)
		}

		in.RevRegDefs[revRegID] = def
		in.RevRegs[revRegID] = map[uint64]*anoncreds.RevocationDelta{}
	}

	if _, ok := in.RevRegs[revRegID][ts]; ok {
		return nil
	}

	to := ts

	delta, err := ledger.GetRevRegDelta(ctx, revRegID, nil, &to)
	if err != nil {
		return errkind.Wrap(err, errkind.CredentialGatewayError, "resolve rev reg %s at %d", revRegID, ts)
	}

	in.RevRegs[revRegID][ts] = delta

	return nil
}

// ProcessMessage advances the session with an inbound message. It returns false, without error, when
// the message kind is not expected in the current state.
func (v *Verifier) ProcessMessage(msg Message) (bool, error) {
	if msg == nil {
		return false, nil
	}

	r, ok := ruleFor(verifierRules[v.state], msg.Kind())
	if !ok {
		return false, nil
	}

	if !r.threadMatches(msg, v.threadID) {
		return false, errkind.New(errkind.InvalidMessages, "%s thread [%s] does not match session thread [%s]",
			msg.Kind(), msg.ThreadID(), v.threadID)
	}

	switch m := msg.(type) {
	case *Presentation:
		if err := v.ReceivePresentation(m); err != nil {
			return false, err
		}
	case *ProposePresentation:
		v.proposal = m
		v.state = VerifierRequestSet
	case *ProblemReport:
		v.problem = m
		v.state = VerifierFailed
	default:
		return false, nil
	}

	return true, nil
}
