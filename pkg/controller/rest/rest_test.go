/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
	"github.com/hyperledger/aries-proof-go/pkg/controller/command"
)

const (
	sampleErr1 = iota + command.UnknownStatus
	sampleErr2
	sampleErr3
	sampleErr4
)

func TestSendError(t *testing.T) {
	t.Run("Test sending HTTP status codes", func(t *testing.T) {
		const errMsg = "here is the sample which I want to write to response"
		errors := []struct {
			err        error
			errCode    command.Code
			statusCode int
			response   genericErrorBody
		}{
			{
				fmt.Errorf(errMsg), sampleErr1, http.StatusOK,
				genericErrorBody{Code: sampleErr1, Message: errMsg},
			},
			{
				fmt.Errorf(errMsg), sampleErr2, http.StatusForbidden,
				genericErrorBody{Code: sampleErr2, Message: errMsg},
			},
			{
				fmt.Errorf(errMsg), sampleErr3, http.StatusNotAcceptable,
				genericErrorBody{Code: sampleErr3, Message: errMsg},
			},
			{
				fmt.Errorf(errMsg), sampleErr4, http.StatusNoContent,
				genericErrorBody{Code: sampleErr4, Message: errMsg},
			},
		}

		for _, data := range errors {
			rr := httptest.NewRecorder()

			SendHTTPStatusError(rr, data.statusCode, data.errCode, data.err)
			require.NotEmpty(t, rr.Body.Bytes())

			response := genericErrorBody{}
			err := json.Unmarshal(rr.Body.Bytes(), &response)
			require.NoError(t, err)

			require.Equal(t, data.statusCode, rr.Code)
			require.Equal(t, data.response, response)
		}
	})

	t.Run("Test sending command errors", func(t *testing.T) {
		const errMsg = "here is the sample which I want to write to response"
		errors := []struct {
			err        command.Error
			statusCode int
			response   genericErrorBody
		}{
			{
				command.NewValidationError(sampleErr1, fmt.Errorf(errMsg)), http.StatusBadRequest,
				genericErrorBody{Code: sampleErr1, Message: errMsg},
			},
			{
				command.NewExecuteError(sampleErr2, fmt.Errorf(errMsg)), http.StatusInternalServerError,
				genericErrorBody{Code: sampleErr2, Message: errMsg},
			},
			{
				command.NewValidationError(sampleErr3, fmt.Errorf(errMsg)), http.StatusBadRequest,
				genericErrorBody{Code: sampleErr3, Message: errMsg},
			},
			{
				command.NewExecuteError(sampleErr4, fmt.Errorf(errMsg)), http.StatusInternalServerError,
				genericErrorBody{Code: sampleErr4, Message: errMsg},
			},
		}

		for _, data := range errors {
			rr := httptest.NewRecorder()

			SendError(rr, data.err)
			require.NotEmpty(t, rr.Body.Bytes())

			response := genericErrorBody{}
			err := json.Unmarshal(rr.Body.Bytes(), &response)
			require.NoError(t, err)

			require.Equal(t, data.statusCode, rr.Code)
			require.Equal(t, data.response, response)
		}
	})
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		err    command.Error
		status int
	}{
		{"unknown session", command.NewExecuteError(sampleErr1, errkind.New(errkind.NotFound, "thread t")),
			http.StatusNotFound},
		{"released handle", command.NewExecuteError(sampleErr1, errkind.New(errkind.InvalidHandle, "handle 3")),
			http.StatusNotFound},
		{"wrong state", command.NewExecuteError(sampleErr2, errkind.New(errkind.InvalidState, "finished")),
			http.StatusConflict},
		{"bad request", command.NewExecuteError(sampleErr3, errkind.New(errkind.InvalidProofRequest, "nonce")),
			http.StatusBadRequest},
		{"bad message", command.NewValidationError(sampleErr3, errkind.New(errkind.InvalidMessages, "@type")),
			http.StatusBadRequest},
		{"transport", command.NewExecuteError(sampleErr4, errkind.New(errkind.TransportError, "down")),
			http.StatusInternalServerError},
		{"wrapped", command.NewExecuteError(sampleErr4,
			fmt.Errorf("send: %w", errkind.New(errkind.NotFound, "connection c"))), http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.status, StatusOf(tc.err))

			rr := httptest.NewRecorder()
			SendError(rr, tc.err)
			require.Equal(t, tc.status, rr.Code)
			require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}
}

func TestSendErrorFailures(t *testing.T) {
	rw := &mockRWriter{}
	SendHTTPStatusError(rw, http.StatusBadRequest, command.UnknownStatus, fmt.Errorf("sample error"))
}

func TestExecute(t *testing.T) {
	cmd := func(rw io.Writer, req io.Reader) command.Error {
		return command.NewValidationError(1, fmt.Errorf("sample"))
	}

	rw := httptest.NewRecorder()
	Execute(cmd, rw, nil)
	require.Contains(t, rw.Body.String(), `{"code":1,"message":"sample"}`)
}

// mockRWriter to recreate response writer error scenario.
type mockRWriter struct{}

func (m *mockRWriter) Header() http.Header {
	return make(map[string][]string)
}

func (m *mockRWriter) Write([]byte) (int, error) {
	return 0, fmt.Errorf("failed to write body")
}

func (m *mockRWriter) WriteHeader(statusCode int) {}
