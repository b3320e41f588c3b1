/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package http

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/pkg/errors"

	"github.com/hyperledger/aries-proof-go/pkg/didcomm/transport"
)

// maxPayloadSize bounds inbound message bodies.
const maxPayloadSize = 1 << 20

// ConnectionIDFunc extracts the connection a request was sent on.
type ConnectionIDFunc func(r *http.Request) string

// NewInboundHandler will create a new handler to enforce Did-Comm HTTP transport specs
// then routes processing to the mandatory 'msgHandler' argument.
//
// Arguments:
// * 'msgHandler' is the handler function that will be executed with the inbound request payload.
// * 'connID' resolves the connection the payload belongs to.
func NewInboundHandler(msgHandler transport.InboundMessageHandler, connID ConnectionIDFunc) (http.Handler, error) {
	if msgHandler == nil || connID == nil {
		return nil, errors.New("failed to create NewInboundHandler: message handler and connection resolver " +
			"are required")
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		processPOSTRequest(w, r, msgHandler, connID)
	}), nil
}

func processPOSTRequest(w http.ResponseWriter, r *http.Request, messageHandler transport.InboundMessageHandler,
	connID ConnectionIDFunc) {
	if valid := validateHTTPMethod(w, r); !valid {
		return
	}

	if valid := validatePayload(r, w); !valid {
		return
	}

	id := connID(r)
	if id == "" {
		http.Error(w, "Missing connection", http.StatusBadRequest)

		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize))
	if err != nil {
		logger.Errorf("Error reading request body: %s - returning Code: %d", err, http.StatusInternalServerError)
		http.Error(w, "Failed to read payload", http.StatusInternalServerError)

		return
	}

	if err = messageHandler(r.Context(), id, body); err != nil {
		logger.Warnf("inbound message for connection %s rejected: %s", id, err)
		http.Error(w, "Failed to process payload", http.StatusBadRequest)

		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// validatePayload validate and get the payload from the request.
func validatePayload(r *http.Request, w http.ResponseWriter) bool {
	if r.ContentLength == 0 { // empty payload should not be accepted
		http.Error(w, "Empty payload", http.StatusBadRequest)

		return false
	}

	return true
}

// validateHTTPMethod validate HTTP method and content-type.
func validateHTTPMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "HTTP Method not allowed", http.StatusMethodNotAllowed)

		return false
	}

	ct := r.Header.Get("Content-type")

	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil || mediaType != "application/json" {
		http.Error(w, fmt.Sprintf("Unsupported Content-type \"%s\"", ct), http.StatusUnsupportedMediaType)

		return false
	}

	return true
}
