/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"encoding/json"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	client "github.com/hyperledger/aries-proof-go/pkg/client/presentproof"
	protocol "github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/presentproof"
)

// ThreadArgs model
//
// Identifies a verifier or prover session.
type ThreadArgs struct {
	// ThreadID of the session
	ThreadID string `json:"thread_id"`
}

// SendRequestArgs model
//
// This is used for sending a presentation request to the prover.
type SendRequestArgs struct {
	// ConnectionID of the prover
	ConnectionID string `json:"connection_id"`
	// ProofRequest is the presentation request to send
	ProofRequest *anoncreds.ProofRequest `json:"proof_request"`
	// Proposal being answered (optional)
	Proposal *protocol.ProposePresentation `json:"proposal,omitempty"`
}

// SendRequestResponse model
//
// Represents a SendRequest response message.
type SendRequestResponse struct {
	// ThreadID of the verifier session
	ThreadID string `json:"thread_id"`
}

// VerifyPresentationArgs model
//
// This is used for verifying a presentation. Without a presentation the one already received is verified.
type VerifyPresentationArgs struct {
	// ThreadID of the verifier session
	ThreadID string `json:"thread_id"`
	// Presentation to verify (optional)
	Presentation *protocol.Presentation `json:"presentation,omitempty"`
}

// VerifyPresentationResponse model
//
// Represents a VerifyPresentation response message.
type VerifyPresentationResponse struct {
	// Status of the verification
	Status protocol.VerificationStatus `json:"presentation_status"`
}

// UpdateStateArgs model
//
// This is used for advancing a session. Without a message the next pending message of the connection is used.
type UpdateStateArgs struct {
	// ThreadID of the session
	ThreadID string `json:"thread_id"`
	// Message is a raw present-proof message (optional)
	Message json.RawMessage `json:"message,omitempty"`
}

// UpdateStateResponse model
//
// Represents an update state response message.
type UpdateStateResponse struct {
	// State of the session after the update
	State string `json:"state"`
}

// VerifierResponse model
//
// Represents a verifier session.
type VerifierResponse struct {
	ThreadID     string                      `json:"thread_id"`
	ConnectionID string                      `json:"connection_id"`
	SourceID     string                      `json:"source_id"`
	State        protocol.VerifierState      `json:"state"`
	Status       protocol.VerificationStatus `json:"presentation_status"`
	Presentation *protocol.Presentation      `json:"presentation,omitempty"`
}

// ReceiveRequestArgs model
//
// This is used for opening a prover session from a received presentation request.
type ReceiveRequestArgs struct {
	// ConnectionID of the verifier
	ConnectionID string `json:"connection_id"`
	// SourceID labels the session
	SourceID string `json:"source_id"`
	// RequestPresentation is the received request
	RequestPresentation *protocol.RequestPresentation `json:"request_presentation"`
}

// SendProposalArgs model
//
// This is used for opening a prover session by proposing a presentation.
type SendProposalArgs struct {
	// ConnectionID of the verifier
	ConnectionID string `json:"connection_id"`
	// SourceID labels the session
	SourceID string `json:"source_id"`
	// PresentationPreview is the proposed content
	PresentationPreview protocol.PresentationPreview `json:"presentation_preview"`
	// Comment sent along with the proposal
	Comment string `json:"comment,omitempty"`
}

// ThreadResponse model
//
// Carries the thread id of a newly opened session.
type ThreadResponse struct {
	// ThreadID of the session
	ThreadID string `json:"thread_id"`
}

// RetrieveCredentialsResponse model
//
// Represents the credentials able to answer a presentation request.
type RetrieveCredentialsResponse struct {
	Credentials *anoncreds.CandidateSet `json:"credentials"`
}

// GeneratePresentationArgs model
//
// This is used for building the presentation of a prover session.
type GeneratePresentationArgs struct {
	// ThreadID of the prover session
	ThreadID string `json:"thread_id"`
	// SelectedCredentials per requested referent
	SelectedCredentials anoncreds.SelectedCredentials `json:"selected_credentials"`
	// SelfAttestedAttrs per requested referent
	SelfAttestedAttrs map[string]string `json:"self_attested_attrs,omitempty"`
}

// DeclineRequestArgs model
//
// This is used when the presentation request needs to be rejected.
type DeclineRequestArgs struct {
	// ThreadID of the prover session
	ThreadID string `json:"thread_id"`
	// Reason why the request is declined
	Reason string `json:"reason,omitempty"`
	// Proposal sent instead of the problem report (optional)
	Proposal *protocol.PresentationPreview `json:"proposal,omitempty"`
}

// ProverResponse model
//
// Represents a prover session.
type ProverResponse struct {
	ThreadID     string                      `json:"thread_id"`
	ConnectionID string                      `json:"connection_id"`
	SourceID     string                      `json:"source_id"`
	State        protocol.ProverState        `json:"state"`
	Status       protocol.VerificationStatus `json:"presentation_status"`
	ProofRequest *anoncreds.ProofRequest     `json:"proof_request,omitempty"`
}

// SessionsResponse model
//
// Lists every session held.
type SessionsResponse struct {
	Sessions []client.Session `json:"sessions"`
}

// ExportResponse model
//
// Carries the serialized form of a session.
type ExportResponse struct {
	Data string `json:"data"`
}

// ImportArgs model
//
// This is used for restoring a serialized session bound to a connection.
type ImportArgs struct {
	ConnectionID string `json:"connection_id"`
	Data         string `json:"data"`
}

// EmptyResponse model
//
// Returned by commands without a result.
type EmptyResponse struct{}
