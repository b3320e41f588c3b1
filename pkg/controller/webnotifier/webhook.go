/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webnotifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const webhookRetries = 2

// HTTPNotifier posts notifications to webhook subscribers.
type HTTPNotifier struct {
	urls   []string
	client *http.Client
}

// NewHTTPNotifier returns a new instance of an HTTPNotifier.
func NewHTTPNotifier(webhookURLs []string) *HTTPNotifier {
	return &HTTPNotifier{urls: webhookURLs, client: &http.Client{Timeout: notificationSendTimeout}}
}

// Notify posts message to every subscriber at <url>/<topic>.
// A failing subscriber is retried twice before the next one is tried.
func (n *HTTPNotifier) Notify(topic string, message []byte) error {
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

	var allErrs error

	for _, webhookURL := range n.urls {
		destination := strings.TrimSuffix(webhookURL, "/") + "/" + topic

		err := backoff.Retry(func() error {
			return n.notifyWH(destination, topicMsg)
		}, backoff.WithMaxRetries(backoff.NewConstantBackOff(100*time.Millisecond), webhookRetries))
		allErrs = appendError(allErrs, err)
	}

	return allErrs
}

func (n *HTTPNotifier) notifyWH(destination string, message []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), notificationSendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, destination, bytes.NewBuffer(message))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create new http post request for %s: %w", destination, err))
	}

	req.Header.Add("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post notification to %s: %w", destination, err)
	}

	defer closeResponse(resp.Body)

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated ||
		resp.StatusCode == http.StatusAccepted {
		logger.Debugf("notification sent to %s", destination)

		return nil
	}

	err = fmt.Errorf("notification was sent to %s, but %s was received", destination, resp.Status)

	if resp.StatusCode < http.StatusInternalServerError {
		return backoff.Permanent(err)
	}

	return err
}

func closeResponse(c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Errorf("failed to close response body: %s", err)
	}
}
