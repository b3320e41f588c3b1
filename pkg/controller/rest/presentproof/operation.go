/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	client "github.com/hyperledger/aries-proof-go/pkg/client/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/controller/command"
	presentproof "github.com/hyperledger/aries-proof-go/pkg/controller/command/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-proof-go/pkg/controller/rest"
)

const (
	operationID  = "/presentproof"
	verifierPath = operationID + "/verifier"
	proverPath   = operationID + "/prover"
	threadParam  = "thread_id"

	sessions = operationID + "/sessions"

	sendRequest        = verifierPath + "/send-request"
	importVerifier     = verifierPath + "/import"
	verifierSession    = verifierPath + "/{thread_id}"
	verifyPresentation = verifierSession + "/verify"
	updateVerifier     = verifierSession + "/update-state"
	exportVerifier     = verifierSession + "/export"

	receiveRequest       = proverPath + "/receive-request"
	sendProposal         = proverPath + "/send-proposal"
	importProver         = proverPath + "/import"
	proverSession        = proverPath + "/{thread_id}"
	retrieveCredentials  = proverSession + "/credentials"
	generatePresentation = proverSession + "/generate-presentation"
	sendPresentation     = proverSession + "/send-presentation"
	declineRequest       = proverSession + "/decline-request"
	updateProver         = proverSession + "/update-state"
	exportProver         = proverSession + "/export"
)

// Operation is controller REST service controller for present proof.
type Operation struct {
	command  *presentproof.Command
	handlers []rest.Handler
}

// New returns new present proof rest client protocol instance.
func New(ctx client.Provider, opts ...client.Opt) (*Operation, error) {
	cmd, err := presentproof.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("present proof command : %w", err)
	}

	o := &Operation{command: cmd}
	o.registerHandler()

	return o, nil
}

// GetRESTHandlers get all controller API handler available for this protocol service.
func (c *Operation) GetRESTHandlers() []rest.Handler {
	return c.handlers
}

// Client exposes the client behind the operation.
func (c *Operation) Client() *client.Client {
	return c.command.Client()
}

// registerHandler register handlers to be exposed from this protocol service as REST API endpoints.
func (c *Operation) registerHandler() {
	c.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(sessions, http.MethodGet, c.Sessions),
		cmdutil.NewHTTPHandler(sendRequest, http.MethodPost, c.SendRequest),
		cmdutil.NewHTTPHandler(importVerifier, http.MethodPost, c.ImportVerifier),
		cmdutil.NewHTTPHandler(verifierSession, http.MethodGet, c.GetVerifier),
		cmdutil.NewHTTPHandler(verifierSession, http.MethodDelete, c.ReleaseVerifier),
		cmdutil.NewHTTPHandler(verifyPresentation, http.MethodPost, c.VerifyPresentation),
		cmdutil.NewHTTPHandler(updateVerifier, http.MethodPost, c.UpdateVerifierState),
		cmdutil.NewHTTPHandler(exportVerifier, http.MethodGet, c.ExportVerifier),
		cmdutil.NewHTTPHandler(receiveRequest, http.MethodPost, c.ReceiveRequest),
		cmdutil.NewHTTPHandler(sendProposal, http.MethodPost, c.SendProposal),
		cmdutil.NewHTTPHandler(importProver, http.MethodPost, c.ImportProver),
		cmdutil.NewHTTPHandler(proverSession, http.MethodGet, c.GetProver),
		cmdutil.NewHTTPHandler(proverSession, http.MethodDelete, c.ReleaseProver),
		cmdutil.NewHTTPHandler(retrieveCredentials, http.MethodGet, c.RetrieveCredentials),
		cmdutil.NewHTTPHandler(generatePresentation, http.MethodPost, c.GeneratePresentation),
		cmdutil.NewHTTPHandler(sendPresentation, http.MethodPost, c.SendPresentation),
		cmdutil.NewHTTPHandler(declineRequest, http.MethodPost, c.DeclineRequest),
		cmdutil.NewHTTPHandler(updateProver, http.MethodPost, c.UpdateProverState),
		cmdutil.NewHTTPHandler(exportProver, http.MethodGet, c.ExportProver),
	}
}

// Sessions swagger:route GET /presentproof/sessions present-proof presentProofSessions
//
// Lists every verifier and prover session.
//
// Responses:
//    default: genericError
//        200: presentProofSessionsResponse
func (c *Operation) Sessions(rw http.ResponseWriter, _ *http.Request) {
	rest.Execute(c.command.Sessions, rw, nil)
}

// SendRequest swagger:route POST /presentproof/verifier/send-request present-proof presentProofSendRequest
//
// Sends a presentation request and opens a verifier session.
//
// Responses:
//    default: genericError
//        200: presentProofSendRequestResponse
func (c *Operation) SendRequest(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(c.command.SendRequest, rw, req.Body)
}

// ImportVerifier swagger:route POST /presentproof/verifier/import present-proof presentProofImportVerifier
//
// Restores a serialized verifier session.
//
// Responses:
//    default: genericError
//        200: presentProofThreadResponse
func (c *Operation) ImportVerifier(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(c.command.ImportVerifier, rw, req.Body)
}

// GetVerifier swagger:route GET /presentproof/verifier/{thread_id} present-proof presentProofGetVerifier
//
// Returns a verifier session.
//
// Responses:
//    default: genericError
//        200: presentProofVerifierResponse
func (c *Operation) GetVerifier(rw http.ResponseWriter, req *http.Request) {
	c.executeOnThread(c.command.GetVerifier, rw, req)
}

// ReleaseVerifier swagger:route DELETE /presentproof/verifier/{thread_id} present-proof presentProofReleaseVerifier
//
// Drops a verifier session.
//
// Responses:
//    default: genericError
//        200: presentProofEmptyResponse
func (c *Operation) ReleaseVerifier(rw http.ResponseWriter, req *http.Request) {
	c.executeOnThread(c.command.ReleaseVerifier, rw, req)
}

// VerifyPresentation swagger:route POST /presentproof/verifier/{thread_id}/verify present-proof presentProofVerifyPresentation
//
// Verifies a presentation and answers the prover.
//
// Responses:
//    default: genericError
//        200: presentProofVerifyPresentationResponse
func (c *Operation) VerifyPresentation(rw http.ResponseWriter, req *http.Request) {
	c.executeOnThread(c.command.VerifyPresentation, rw, req)
}

// UpdateVerifierState swagger:route POST /presentproof/verifier/{thread_id}/update-state present-proof presentProofUpdateVerifierState
//
// Advances a verifier session with a message, or with the next pending message of its connection.
//
// Responses:
//    default: genericError
//        200: presentProofUpdateStateResponse
func (c *Operation) UpdateVerifierState(rw http.ResponseWriter, req *http.Request) {
	c.executeOnThread(c.command.UpdateVerifierState, rw, req)
}

// ExportVerifier swagger:route GET /presentproof/verifier/{thread_id}/export present-proof presentProofExportVerifier
//
// Returns the serialized form of a verifier session.
//
// Responses:
//    default: genericError
//        200: presentProofExportResponse
func (c *Operation) ExportVerifier(rw http.ResponseWriter, req *http.Request) {
	c.executeOnThread(c.command.ExportVerifier, rw, req)
}

// ReceiveRequest swagger:route POST /presentproof/prover/receive-request present-proof presentProofReceiveRequest
//
// Opens a prover session from a received presentation request.
//
// Responses:
//    default: genericError
//        200: presentProofThreadResponse
func (c *Operation) ReceiveRequest(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(c.command.ReceiveRequest, rw, req.Body)
}

// SendProposal swagger:route POST /presentproof/prover/send-proposal present-proof presentProofSendProposal
//
// Proposes a presentation and opens a prover session.
//
// Responses:
//    default: genericError
//        200: presentProofThreadResponse
func (c *Operation) SendProposal(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(c.command.SendProposal, rw, req.Body)
}

// ImportProver swagger:route POST /presentproof/prover/import present-proof presentProofImportProver
//
// Restores a serialized prover session.
//
// Responses:
//    default: genericError
//        200: presentProofThreadResponse
func (c *Operation) ImportProver(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(c.command.ImportProver, rw, req.Body)
}

// GetProver swagger:route GET /presentproof/prover/{thread_id} present-proof presentProofGetProver
//
// Returns a prover session.
//
// Responses:
//    default: genericError
//        200: presentProofProverResponse
func (c *Operation) GetProver(rw http.ResponseWriter, req *http.Request) {
	c.executeOnThread(c.command.GetProver, rw, req)
}

// ReleaseProver swagger:route DELETE /presentproof/prover/{thread_id} present-proof presentProofReleaseProver
//
// Drops a prover session.
//
// Responses:
//    default: genericError
//        200: presentProofEmptyResponse
func (c *Operation) ReleaseProver(rw http.ResponseWriter, req *http.Request) {
	c.executeOnThread(c.command.ReleaseProver, rw, req)
}

// RetrieveCredentials swagger:route GET /presentproof/prover/{thread_id}/credentials present-proof presentProofRetrieveCredentials
//
// Lists the credentials able to answer the session's presentation request.
//
// Responses:
//    default: genericError
//        200: presentProofRetrieveCredentialsResponse
func (c *Operation) RetrieveCredentials(rw http.ResponseWriter, req *http.Request) {
	c.executeOnThread(c.command.RetrieveCredentials, rw, req)
}

// GeneratePresentation swagger:route POST /presentproof/prover/{thread_id}/generate-presentation present-proof presentProofGeneratePresentation
//
// Builds the presentation from the selected credentials.
//
// Responses:
//    default: genericError
//        200: presentProofEmptyResponse
func (c *Operation) GeneratePresentation(rw http.ResponseWriter, req *http.Request) {
	c.executeOnThread(c.command.GeneratePresentation, rw, req)
}

// SendPresentation swagger:route POST /presentproof/prover/{thread_id}/send-presentation present-proof presentProofSendPresentation
//
// Sends the generated presentation to the verifier.
//
// Responses:
//    default: genericError
//        200: presentProofEmptyResponse
func (c *Operation) SendPresentation(rw http.ResponseWriter, req *http.Request) {
	c.executeOnThread(c.command.SendPresentation, rw, req)
}

// DeclineRequest swagger:route POST /presentproof/prover/{thread_id}/decline-request present-proof presentProofDeclineRequest
//
// Declines the presentation request, optionally proposing another presentation.
//
// Responses:
//    default: genericError
//        200: presentProofEmptyResponse
func (c *Operation) DeclineRequest(rw http.ResponseWriter, req *http.Request) {
	c.executeOnThread(c.command.DeclineRequest, rw, req)
}

// UpdateProverState swagger:route POST /presentproof/prover/{thread_id}/update-state present-proof presentProofUpdateProverState
//
// Advances a prover session with a message, or with the next pending message of its connection.
//
// Responses:
//    default: genericError
//        200: presentProofUpdateStateResponse
func (c *Operation) UpdateProverState(rw http.ResponseWriter, req *http.Request) {
	c.executeOnThread(c.command.UpdateProverState, rw, req)
}

// ExportProver swagger:route GET /presentproof/prover/{thread_id}/export present-proof presentProofExportProver
//
// Returns the serialized form of a prover session.
//
// Responses:
//    default: genericError
//        200: presentProofExportResponse
func (c *Operation) ExportProver(rw http.ResponseWriter, req *http.Request) {
	c.executeOnThread(c.command.ExportProver, rw, req)
}

// executeOnThread runs exec with the request body extended by the thread id from the path.
func (c *Operation) executeOnThread(exec command.Exec, rw http.ResponseWriter, req *http.Request) {
	body, err := withThreadID(req)
	if err != nil {
		rest.SendHTTPStatusError(rw, http.StatusBadRequest, presentproof.InvalidRequestErrorCode, err)

		return
	}

	rest.Execute(exec, rw, body)
}

func withThreadID(req *http.Request) (io.Reader, error) {
	fields := map[string]json.RawMessage{}

	if req.Body != nil {
		var buf bytes.Buffer

		if _, err := io.Copy(&buf, req.Body); err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}

		if len(bytes.TrimSpace(buf.Bytes())) > 0 {
			if err := json.Unmarshal(buf.Bytes(), &fields); err != nil {
				return nil, fmt.Errorf("request body is not a JSON object: %w", err)
			}
		}
	}

	threadID, err := json.Marshal(mux.Vars(req)[threadParam])
	if err != nil {
		return nil, err
	}

	fields[threadParam] = threadID

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(raw), nil
}
