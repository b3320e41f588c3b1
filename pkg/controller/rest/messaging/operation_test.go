/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	client "github.com/hyperledger/aries-proof-go/pkg/client/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/controller/command/messaging"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/messaging/mailbox"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/presentproof"
	mocks "github.com/hyperledger/aries-proof-go/pkg/internal/gomocks/client/presentproof"
)

const connID = "conn-1"

type mockProvider struct {
	mailbox     *mailbox.Mailbox
	connections client.ConnectionLookup
}

func (p *mockProvider) Mailbox() *mailbox.Mailbox {
	return p.mailbox
}

func (p *mockProvider) Connections() client.ConnectionLookup {
	return p.connections
}

func serve(router *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	return rr
}

func TestOperation_Mailbox(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	box, err := mailbox.New(mem.NewProvider())
	require.NoError(t, err)

	ack := `{"@type":"` + presentproof.AckMsgType + `","@id":"ack-1","status":"OK","~thread":{"thid":"thread-1"}}`

	msgID, err := box.Add(context.Background(), connID, []byte(ack))
	require.NoError(t, err)

	lookup := mocks.NewMockConnectionLookup(ctrl)

	op, err := New(&mockProvider{mailbox: box, connections: lookup})
	require.NoError(t, err)
	require.Len(t, op.GetRESTHandlers(), 4)

	router := mux.NewRouter()
	for _, h := range op.GetRESTHandlers() {
		router.HandleFunc(h.Path(), h.Handle()).Methods(h.Method())
	}

	t.Run("pending", func(t *testing.T) {
		rr := serve(router, http.MethodGet, OperationID+"/"+connID, "")
		require.Equal(t, http.StatusOK, rr.Code)

		var res messaging.PendingResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
		require.Len(t, res.Messages, 1)
	})

	t.Run("mark reviewed unknown message", func(t *testing.T) {
		rr := serve(router, http.MethodPost, OperationID+"/"+connID+"/unknown/reviewed", "")
		require.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("mark reviewed and purge", func(t *testing.T) {
		rr := serve(router, http.MethodPost, OperationID+"/"+connID+"/"+msgID+"/reviewed", "")
		require.Equal(t, http.StatusOK, rr.Code)

		rr = serve(router, http.MethodDelete, OperationID+"/"+connID, "")
		require.Equal(t, http.StatusOK, rr.Code)

		var res messaging.PurgeResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
		require.Equal(t, 1, res.Removed)
	})

	t.Run("send", func(t *testing.T) {
		lookup.EXPECT().Sender(gomock.Any(), connID).Return(func(context.Context, presentproof.Message) error {
			return nil
		}, nil)

		body, err := json.Marshal(&messaging.SendMessageArgs{ConnectionID: connID, MessageBody: json.RawMessage(ack)})
		require.NoError(t, err)

		rr := serve(router, http.MethodPost, SendPath, string(body))
		require.Equal(t, http.StatusOK, rr.Code)

		rr = serve(router, http.MethodPost, SendPath, `{"connection_id":"conn-1"}`)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
