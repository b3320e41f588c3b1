/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package messaging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hyperledger/aries-proof-go/pkg/controller/command/messaging"
	"github.com/hyperledger/aries-proof-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-proof-go/pkg/controller/rest"
)

// constants for mailbox endpoints.
const (
	OperationID      = "/messages"
	SendPath         = OperationID + "/send"
	PendingPath      = OperationID + "/{connection_id}"
	PurgePath        = OperationID + "/{connection_id}"
	MarkReviewedPath = OperationID + "/{connection_id}/{message_id}/reviewed"
)

// Operation contains basic common operations provided by controller REST API.
type Operation struct {
	command  *messaging.Command
	handlers []rest.Handler
}

// New returns new mailbox rest client protocol instance.
func New(ctx messaging.Provider) (*Operation, error) {
	cmd, err := messaging.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging controller command: %w", err)
	}

	o := &Operation{command: cmd}
	o.registerHandler()

	return o, nil
}

// GetRESTHandlers get all controller API handlers available for this service.
func (o *Operation) GetRESTHandlers() []rest.Handler {
	return o.handlers
}

// registerHandler register handlers to be exposed from this service as REST API endpoints.
func (o *Operation) registerHandler() {
	o.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(SendPath, http.MethodPost, o.Send),
		cmdutil.NewHTTPHandler(PendingPath, http.MethodGet, o.Pending),
		cmdutil.NewHTTPHandler(PurgePath, http.MethodDelete, o.Purge),
		cmdutil.NewHTTPHandler(MarkReviewedPath, http.MethodPost, o.MarkReviewed),
	}
}

// Send swagger:route POST /messages/send messaging sendMessage
//
// Sends a present-proof message over an existing connection.
//
// Responses:
//    default: genericError
//        200: sendMessageResponse
func (o *Operation) Send(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.Send, rw, req.Body)
}

// Pending swagger:route GET /messages/{connection_id} messaging pendingMessages
//
// Lists the inbound messages of a connection that no session consumed yet.
//
// Responses:
//    default: genericError
//        200: pendingMessagesResponse
func (o *Operation) Pending(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.Pending, rw, pathArgs(req))
}

// Purge swagger:route DELETE /messages/{connection_id} messaging purgeMessages
//
// Drops the reviewed messages of a connection.
//
// Responses:
//    default: genericError
//        200: purgeMessagesResponse
func (o *Operation) Purge(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.Purge, rw, pathArgs(req))
}

// MarkReviewed swagger:route POST /messages/{connection_id}/{message_id}/reviewed messaging markReviewed
//
// Flags a stored message as consumed.
//
// Responses:
//    default: genericError
//        200: markReviewedResponse
func (o *Operation) MarkReviewed(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.MarkReviewed, rw, pathArgs(req))
}

// pathArgs turns the route variables into the command request body.
func pathArgs(req *http.Request) *bytes.Buffer {
	raw, err := json.Marshal(mux.Vars(req))
	if err != nil {
		return bytes.NewBufferString("{}")
	}

	return bytes.NewBuffer(raw)
}
