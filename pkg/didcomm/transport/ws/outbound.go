/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ws

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/pkg/errors"
	"nhooyr.io/websocket"
)

const webSocketScheme = "ws"

var logger = log.New("aries-framework/transport/ws")

// OutboundClient websocket outbound.
type OutboundClient struct {
	client *http.Client
}

// OutboundOpt configures an OutboundClient.
type OutboundOpt func(*OutboundClient)

// WithHTTPClient sets the client used for the websocket handshake.
func WithHTTPClient(c *http.Client) OutboundOpt {
	return func(o *OutboundClient) {
		o.client = c
	}
}

// NewOutbound creates a client for Outbound WS transport.
func NewOutbound(opts ...OutboundOpt) *OutboundClient {
	c := &OutboundClient{}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Send writes data as one text message on a fresh connection to url.
func (cs *OutboundClient) Send(ctx context.Context, data []byte, url string) error {
	if url == "" {
		return errors.New("url is mandatory")
	}

	client, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPClient: cs.client})
	if err != nil {
		return errors.Wrap(err, "websocket client")
	}

	defer func() {
		err = client.Close(websocket.StatusNormalClosure, "closing the connection")
		if err != nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
			logger.Errorf("failed to close connection: %v", err)
		}
	}()

	if err = client.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("websocket write message : %w", err)
	}

	return nil
}

// Accept checks for the url scheme.
func (cs *OutboundClient) Accept(url string) bool {
	return strings.HasPrefix(url, webSocketScheme+"://") || strings.HasPrefix(url, webSocketScheme+"s://")
}
