/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func startEchoSink(t *testing.T) (string, <-chan []byte) {
	t.Helper()

	received := make(chan []byte, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}

		defer c.Close(websocket.StatusNormalClosure, "") //nolint:errcheck

		_, msg, err := c.Read(r.Context())
		if err != nil {
			return
		}

		received <- msg
	}))

	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), received
}

func TestOutboundClient_Send(t *testing.T) {
	t.Run("delivers the message", func(t *testing.T) {
		url, received := startEchoSink(t)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		require.NoError(t, NewOutbound().Send(ctx, []byte(`{"@id":"1"}`), url))

		select {
		case msg := <-received:
			require.Equal(t, `{"@id":"1"}`, string(msg))
		case <-ctx.Done():
			require.Fail(t, "message was not received")
		}
	})

	t.Run("empty url", func(t *testing.T) {
		err := NewOutbound().Send(context.Background(), []byte("{}"), "")
		require.EqualError(t, err, "url is mandatory")
	})

	t.Run("dial failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		err := NewOutbound(WithHTTPClient(srv.Client())).Send(context.Background(), []byte("{}"),
			"ws"+strings.TrimPrefix(srv.URL, "http"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "websocket client")
	})
}

func TestOutboundClient_Accept(t *testing.T) {
	c := NewOutbound()
	require.True(t, c.Accept("ws://localhost:8080"))
	require.True(t, c.Accept("wss://agent.example.com"))
	require.False(t, c.Accept("http://localhost:8080"))
	require.False(t, c.Accept("wsx://localhost"))
}
