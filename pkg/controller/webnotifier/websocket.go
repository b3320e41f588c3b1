/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webnotifier

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"nhooyr.io/websocket"

	"github.com/hyperledger/aries-proof-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-proof-go/pkg/controller/rest"
)

// WSOpt configures a WSNotifier.
type WSOpt func(n *WSNotifier)

// WithOriginPatterns lists the host patterns, besides the request host, allowed to open a subscription.
func WithOriginPatterns(patterns ...string) WSOpt {
	return func(n *WSNotifier) {
		n.originPatterns = patterns
	}
}

// WSNotifier pushes notifications to every subscribed websocket client.
type WSNotifier struct {
	conns          []*websocket.Conn
	connsLock      sync.RWMutex
	handlers       []rest.Handler
	originPatterns []string
}

// NewWSNotifier returns a new instance of an WSNotifier subscribing clients on path.
func NewWSNotifier(path string, opts ...WSOpt) *WSNotifier {
	n := &WSNotifier{}

	for _, opt := range opts {
		opt(n)
	}

	n.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(path, http.MethodGet, n.handleWS),
	}

	return n
}

// Notify writes message under topic to every client. Every client is tried, the failures are returned together.
func (n *WSNotifier) Notify(topic string, message []byte) error {
	if topic == "" {
		return fmt.Errorf(emptyTopicErrMsg)
	}

	if len(message) == 0 {
		return fmt.Errorf(emptyMessageErrMsg)
	}

	topicMsg, err := PrepareTopicMessage(topic, message)
	if err != nil {
		return fmt.Errorf(failedToCreateErrMsg, err)
	}

	n.connsLock.RLock()
	conns := make([]*websocket.Conn, len(n.conns))
	copy(conns, n.conns)
	n.connsLock.RUnlock()

	var allErrs error

	for _, conn := range conns {
		allErrs = appendError(allErrs, notifyWS(context.Background(), conn, topicMsg))
	}

	return allErrs
}

func notifyWS(parent context.Context, conn *websocket.Conn, message []byte) error {
	ctx, cancel := context.WithTimeout(parent, notificationSendTimeout)
	defer cancel()

	return conn.Write(ctx, websocket.MessageText, message)
}

func (n *WSNotifier) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: n.originPatterns})
	if err != nil {
		logger.Infof("failed to upgrade the websocket notification connection : %v", err)

		return
	}

	n.connsLock.Lock()
	n.conns = append(n.conns, conn)
	n.connsLock.Unlock()

	logger.Debugf("websocket notification client connected")

	n.monitorWSConn(r.Context(), conn)
}

// monitorWSConn blocks until the client goes away. Clients are not expected to write.
func (n *WSNotifier) monitorWSConn(ctx context.Context, conn *websocket.Conn) {
	_, _, err := conn.Reader(ctx)
	if err != nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
		logger.Infof("reading from websocket notification client failed: %v", err)
	}

	if err = conn.Close(websocket.StatusPolicyViolation, "unexpected message"); err != nil {
		logger.Debugf("closing websocket notification client failed: %v", err)
	}

	n.removeConn(conn)
}

func (n *WSNotifier) removeConn(conn *websocket.Conn) {
	n.connsLock.Lock()
	defer n.connsLock.Unlock()

	conns := n.conns[:0]

	for _, c := range n.conns {
		if c != conn {
			conns = append(conns, c)
		}
	}

	n.conns = conns

	logger.Debugf("websocket notification client dropped")
}

// GetRESTHandlers returns all REST handlers provided by notifier.
func (n *WSNotifier) GetRESTHandlers() []rest.Handler {
	return n.handlers
}
