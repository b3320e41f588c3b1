/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webnotifier

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-proof-go/pkg/controller/rest"
)

var logger = log.New("aries-framework/webnotifier")

const (
	notificationSendTimeout = 10 * time.Second
	emptyTopicErrMsg        = "cannot notify with an empty topic"
	emptyMessageErrMsg      = "cannot notify with an empty message"
	failedToCreateErrMsg    = "failed to create topic message : %w"
)

type notifier interface {
	Notify(topic string, message []byte) error
}

// WebNotifier pushes session events to webhook subscribers and websocket clients.
type WebNotifier struct {
	notifiers []notifier
	handlers  []rest.Handler
}

// New returns a WebNotifier serving websocket clients on wsPath and posting to webhookURLs.
func New(wsPath string, webhookURLs []string, opts ...WSOpt) *WebNotifier {
	ws := NewWSNotifier(wsPath, opts...)

	return &WebNotifier{
		notifiers: []notifier{ws, NewHTTPNotifier(webhookURLs)},
		handlers:  ws.GetRESTHandlers(),
	}
}

// Notify sends message under topic to every subscriber. Failures are joined once all were tried.
func (n *WebNotifier) Notify(topic string, message []byte) error {
	var allErrs error

	for _, sub := range n.notifiers {
		allErrs = appendError(allErrs, sub.Notify(topic, message))
	}

	return allErrs
}

// GetRESTHandlers returns the websocket subscription handler.
func (n *WebNotifier) GetRESTHandlers() []rest.Handler {
	return n.handlers
}

type topicMessage struct {
	ID      string          `json:"id"`
	Topic   string          `json:"topic"`
	Message json.RawMessage `json:"message"`
}

// PrepareTopicMessage wraps message in an envelope carrying a fresh id and the topic.
func PrepareTopicMessage(topic string, message []byte) ([]byte, error) {
	if !json.Valid(message) {
		return nil, fmt.Errorf("message of topic %s is not JSON", topic)
	}

	return json.Marshal(&topicMessage{
		ID:      uuid.New().String(),
		Topic:   topic,
		Message: message,
	})
}

func appendError(errToAppendTo, err error) error {
	if errToAppendTo == nil {
		return err
	}

	if err == nil {
		return errToAppendTo
	}

	return fmt.Errorf("%w; %s", errToAppendTo, err.Error())
}
