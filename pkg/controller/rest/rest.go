/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rest

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
	"github.com/hyperledger/aries-proof-go/pkg/controller/command"
)

var logger = log.New("aries-framework/controller/rest")

// Handler http handler for each controller API endpoint.
type Handler interface {
	Path() string
	Method() string
	Handle() http.HandlerFunc
}

// genericError model
//
// swagger:response genericError
type genericError struct { // nolint: unused,deadcode
	// in: body
	Body genericErrorBody
}

type genericErrorBody struct {
	Code    command.Code `json:"code"`
	Message string       `json:"message"`
}

// Execute executes given command with args provided and writes command error to the response.
func Execute(exec command.Exec, rw http.ResponseWriter, req io.Reader) {
	rw.Header().Set("Content-Type", "application/json")

	if err := exec(rw, req); err != nil {
		SendError(rw, err)
	}
}

// SendError sends the command error to the response writer with a status matching its type and kind.
func SendError(rw http.ResponseWriter, err command.Error) {
	SendHTTPStatusError(rw, StatusOf(err), err.Code(), err)
}

// StatusOf maps a command error to an HTTP status code.
// Lookups of unknown sessions or handles answer 404, a session in the wrong state 409, malformed input 400.
func StatusOf(err command.Error) int {
	switch errkind.KindOf(err) {
	case errkind.NotFound, errkind.InvalidHandle:
		return http.StatusNotFound
	case errkind.InvalidState:
		return http.StatusConflict
	case errkind.InvalidJSON, errkind.InvalidMessages, errkind.InvalidProofRequest,
		errkind.InvalidAttributesStructure, errkind.InvalidOption:
		return http.StatusBadRequest
	}

	if err.Type() == command.ValidationError {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// SendHTTPStatusError sends given http status code to response with error body.
func SendHTTPStatusError(rw http.ResponseWriter, httpStatus int, code command.Code, err error) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(httpStatus)

	e := json.NewEncoder(rw).Encode(genericErrorBody{
		Code:    code,
		Message: err.Error(),
	})
	if e != nil {
		logger.Errorf("Unable to send error response, %s", e)
	}
}
