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

// presentProofThreadParams model
//
// Identifies a session by its thread.
//
// swagger:parameters presentProofGetVerifier presentProofReleaseVerifier presentProofExportVerifier
// swagger:parameters presentProofGetProver presentProofReleaseProver presentProofExportProver
// swagger:parameters presentProofRetrieveCredentials presentProofSendPresentation
type presentProofThreadParams struct { // nolint: unused,deadcode
	// Thread ID of the session
	//
	// in: path
	// required: true
	ThreadID string `json:"thread_id"`
}

// presentProofSessionsResponse model
//
// Represents a Sessions response message.
//
// swagger:response presentProofSessionsResponse
type presentProofSessionsResponse struct { // nolint: unused,deadcode
	// in: body
	Body struct {
		Sessions []client.Session `json:"sessions"`
	}
}

// presentProofSendRequestRequest model
//
// This is used for operation to send a presentation request.
//
// swagger:parameters presentProofSendRequest
type presentProofSendRequestRequest struct { // nolint: unused,deadcode
	// in: body
	Body struct {
		// ConnectionID of the prover
		// required: true
		ConnectionID string `json:"connection_id"`
		// ProofRequest lists the requested attributes and predicates
		// required: true
		ProofRequest *anoncreds.ProofRequest `json:"proof_request"`
		// Proposal being answered
		Proposal *protocol.ProposePresentation `json:"proposal,omitempty"`
	}
}

// presentProofSendRequestResponse model
//
// Represents a SendRequest response message.
//
// swagger:response presentProofSendRequestResponse
type presentProofSendRequestResponse struct { // nolint: unused,deadcode
	// in: body
	Body struct {
		ThreadID string `json:"thread_id"`
	}
}

// presentProofImportRequest model
//
// This is used for operation to restore a serialized session.
//
// swagger:parameters presentProofImportVerifier presentProofImportProver
type presentProofImportRequest struct { // nolint: unused,deadcode
	// in: body
	Body struct {
		// required: true
		ConnectionID string `json:"connection_id"`
		// required: true
		Data string `json:"data"`
	}
}

// presentProofThreadResponse model
//
// Carries the thread id of a session.
//
// swagger:response presentProofThreadResponse
type presentProofThreadResponse struct { // nolint: unused,deadcode
	// in: body
	Body struct {
		ThreadID string `json:"thread_id"`
	}
}

// presentProofVerifierResponse model
//
// Represents a verifier session.
//
// swagger:response presentProofVerifierResponse
type presentProofVerifierResponse struct { // nolint: unused,deadcode
	// in: body
	Body struct {
		ThreadID     string                      `json:"thread_id"`
		ConnectionID string                      `json:"connection_id"`
		SourceID     string                      `json:"source_id"`
		State        protocol.VerifierState      `json:"state"`
		Status       protocol.VerificationStatus `json:"presentation_status"`
		Presentation *protocol.Presentation      `json:"presentation,omitempty"`
	}
}

// presentProofVerifyPresentationRequest model
//
// This is used for operation to verify a presentation.
//
// swagger:parameters presentProofVerifyPresentation
type presentProofVerifyPresentationRequest struct { // nolint: unused,deadcode
	// Thread ID of the verifier session
	//
	// in: path
	// required: true
	ThreadID string `json:"thread_id"`

	// in: body
	Body struct {
		// Presentation to verify, the received one when omitted
		Presentation *protocol.Presentation `json:"presentation,omitempty"`
	}
}

// presentProofVerifyPresentationResponse model
//
// Represents a VerifyPresentation response message.
//
// swagger:response presentProofVerifyPresentationResponse
type presentProofVerifyPresentationResponse struct { // nolint: unused,deadcode
	// in: body
	Body struct {
		Status protocol.VerificationStatus `json:"presentation_status"`
	}
}

// presentProofUpdateStateRequest model
//
// This is used for operation to advance a session.
//
// swagger:parameters presentProofUpdateVerifierState presentProofUpdateProverState
type presentProofUpdateStateRequest struct { // nolint: unused,deadcode
	// Thread ID of the session
	//
	// in: path
	// required: true
	ThreadID string `json:"thread_id"`

	// in: body
	Body struct {
		// Message is a raw present-proof message, the next pending one is used when omitted
		Message json.RawMessage `json:"message,omitempty"`
	}
}

// presentProofUpdateStateResponse model
//
// Represents an update state response message.
//
// swagger:response presentProofUpdateStateResponse
type presentProofUpdateStateResponse struct { // nolint: unused,deadcode
	// in: body
	Body struct {
		State string `json:"state"`
	}
}

// presentProofExportResponse model
//
// Carries the serialized form of a session.
//
// swagger:response presentProofExportResponse
type presentProofExportResponse struct { // nolint: unused,deadcode
	// in: body
	Body struct {
		Data string `json:"data"`
	}
}

// presentProofReceiveRequestRequest model
//
// This is used for operation to open a prover session from a received request.
//
// swagger:parameters presentProofReceiveRequest
type presentProofReceiveRequestRequest struct { // nolint: unused,deadcode
	// in: body
	Body struct {
		// required: true
		ConnectionID string `json:"connection_id"`
		SourceID     string `json:"source_id"`
		// required: true
		RequestPresentation *protocol.RequestPresentation `json:"request_presentation"`
	}
}

// presentProofSendProposalRequest model
//
// This is used for operation to propose a presentation.
//
// swagger:parameters presentProofSendProposal
type presentProofSendProposalRequest struct { // nolint: unused,deadcode
	// in: body
	Body struct {
		// required: true
		ConnectionID        string                       `json:"connection_id"`
		SourceID            string                       `json:"source_id"`
		PresentationPreview protocol.PresentationPreview `json:"presentation_preview"`
		Comment             string                       `json:"comment,omitempty"`
	}
}

// presentProofProverResponse model
//
// Represents a prover session.
//
// swagger:response presentProofProverResponse
type presentProofProverResponse struct { // nolint: unused,deadcode
	// in: body
	Body struct {
		ThreadID     string                      `json:"thread_id"`
		ConnectionID string                      `json:"connection_id"`
		SourceID     string                      `json:"source_id"`
		State        protocol.ProverState        `json:"state"`
		Status       protocol.VerificationStatus `json:"presentation_status"`
		ProofRequest *anoncreds.ProofRequest     `json:"proof_request,omitempty"`
	}
}

// presentProofRetrieveCredentialsResponse model
//
// Represents the credentials able to answer a presentation request.
//
// swagger:response presentProofRetrieveCredentialsResponse
type presentProofRetrieveCredentialsResponse struct { // nolint: unused,deadcode
	// in: body
	Body struct {
		Credentials *anoncreds.CandidateSet `json:"credentials"`
	}
}

// presentProofGeneratePresentationRequest model
//
// This is used for operation to build a presentation.
//
// swagger:parameters presentProofGeneratePresentation
type presentProofGeneratePresentationRequest struct { // nolint: unused,deadcode
	// Thread ID of the prover session
	//
	// in: path
	// required: true
	ThreadID string `json:"thread_id"`

	// in: body
	Body struct {
		SelectedCredentials anoncreds.SelectedCredentials `json:"selected_credentials"`
		SelfAttestedAttrs   map[string]string             `json:"self_attested_attrs,omitempty"`
	}
}

// presentProofDeclineRequestRequest model
//
// This is used for operation to decline a presentation request.
//
// swagger:parameters presentProofDeclineRequest
type presentProofDeclineRequestRequest struct { // nolint: unused,deadcode
	// Thread ID of the prover session
	//
	// in: path
	// required: true
	ThreadID string `json:"thread_id"`

	// in: body
	Body struct {
		Reason   string                        `json:"reason,omitempty"`
		Proposal *protocol.PresentationPreview `json:"proposal,omitempty"`
	}
}

// presentProofEmptyResponse model
//
// Returned by operations without a result.
//
// swagger:response presentProofEmptyResponse
type presentProofEmptyResponse struct { // nolint: unused,deadcode
	// in: body
	Body struct{}
}
