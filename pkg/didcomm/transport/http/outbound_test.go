/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-proof-go/pkg/didcomm/transport"
)

func TestWithOutboundOpts(t *testing.T) {
	opt := WithOutboundHTTPClient(nil)
	require.NotNil(t, opt)

	clOpts := &outboundCommHTTPOpts{}
	opt(clOpts)

	opt = WithOutboundTimeout(time.Second)
	require.NotNil(t, opt)

	clOpts = &outboundCommHTTPOpts{}
	// opt.client is nil, so setting timeout should panic
	require.Panics(t, func() { opt(clOpts) })

	opt = WithOutboundTLSConfig(nil)
	require.NotNil(t, opt)

	clOpts = &outboundCommHTTPOpts{}
	opt(clOpts)
	require.NotNil(t, clOpts.client)
}

func TestNewOutbound(t *testing.T) {
	_, err := NewOutbound()
	require.EqualError(t, err, "creation of outbound transport requires an HTTP client")

	ot, err := NewOutbound(WithOutboundHTTPClient(&http.Client{}), WithOutboundTimeout(time.Second))
	require.NoError(t, err)
	require.True(t, ot.Accept("https://agent.example.com"))
	require.True(t, ot.Accept("http://localhost:8080"))
	require.False(t, ot.Accept("ws://localhost:8080"))
}

func TestOutboundHTTPClient_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		var body []byte

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, transport.MediaTypeV1PlaintextPayload, r.Header.Get("Content-Type"))

			body, _ = io.ReadAll(r.Body) //nolint:errcheck
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		ot, err := NewOutbound(WithOutboundHTTPClient(srv.Client()))
		require.NoError(t, err)

		require.NoError(t, ot.Send(ctx, []byte(`{"@id":"1"}`), srv.URL))
		require.Equal(t, `{"@id":"1"}`, string(body))
	})

	t.Run("server errors are retried", func(t *testing.T) {
		var calls int32

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)

				return
			}

			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		ot, err := NewOutbound(WithOutboundHTTPClient(srv.Client()), WithRetry(3, time.Millisecond))
		require.NoError(t, err)

		require.NoError(t, ot.Send(ctx, []byte("{}"), srv.URL))
		require.EqualValues(t, 3, atomic.LoadInt32(&calls))
	})

	t.Run("retries are bounded", func(t *testing.T) {
		var calls int32

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		ot, err := NewOutbound(WithOutboundHTTPClient(srv.Client()), WithRetry(2, time.Millisecond))
		require.NoError(t, err)

		err = ot.Send(ctx, []byte("{}"), srv.URL)
		require.Error(t, err)
		require.Contains(t, err.Error(), "500")
		require.EqualValues(t, 3, atomic.LoadInt32(&calls))
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls int32

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		ot, err := NewOutbound(WithOutboundHTTPClient(srv.Client()), WithRetry(5, time.Millisecond))
		require.NoError(t, err)

		err = ot.Send(ctx, []byte("{}"), srv.URL)
		require.Error(t, err)
		require.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		ot, err := NewOutbound(WithOutboundHTTPClient(srv.Client()))
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		require.Error(t, ot.Send(cctx, []byte("{}"), srv.URL))
	})

	t.Run("empty url", func(t *testing.T) {
		ot, err := NewOutbound(WithOutboundHTTPClient(&http.Client{}))
		require.NoError(t, err)

		require.EqualError(t, ot.Send(ctx, []byte("{}"), ""), "url is mandatory")
	})
}
