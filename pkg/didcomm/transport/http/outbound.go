/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/pkg/errors"

	"github.com/hyperledger/aries-proof-go/pkg/didcomm/transport"
)

var logger = log.New("aries-framework/transport/http")

const (
	defaultRetries       = 3
	defaultRetryInterval = 500 * time.Millisecond
)

// outboundCommHTTPOpts holds options for the HTTP transport implementation of CommTransport
// it has an http.Client instance.
type outboundCommHTTPOpts struct {
	client        *http.Client
	retries       uint64
	retryInterval time.Duration
}

// OutboundHTTPOpt is an outbound HTTP transport option.
type OutboundHTTPOpt func(opts *outboundCommHTTPOpts)

// WithOutboundHTTPClient option is for creating an Outbound HTTP transport using an http.Client instance.
func WithOutboundHTTPClient(client *http.Client) OutboundHTTPOpt {
	return func(opts *outboundCommHTTPOpts) {
		opts.client = client
	}
}

// WithOutboundTimeout option is for creating an Outbound HTTP transport using a client timeout value.
func WithOutboundTimeout(timeout time.Duration) OutboundHTTPOpt {
	return func(opts *outboundCommHTTPOpts) {
		opts.client.Timeout = timeout
	}
}

// WithOutboundTLSConfig option is for creating an Outbound HTTP transport using a tls.Config instance.
func WithOutboundTLSConfig(tlsConfig *tls.Config) OutboundHTTPOpt {
	return func(opts *outboundCommHTTPOpts) {
		opts.client = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: tlsConfig,
			},
		}
	}
}

// WithRetry sets how many times a failed post is retried and the pause between attempts.
func WithRetry(retries uint64, interval time.Duration) OutboundHTTPOpt {
	return func(opts *outboundCommHTTPOpts) {
		opts.retries = retries
		opts.retryInterval = interval
	}
}

// OutboundHTTPClient represents the Outbound HTTP transport instance.
type OutboundHTTPClient struct {
	client        *http.Client
	retries       uint64
	retryInterval time.Duration
}

// NewOutbound creates a new instance of Outbound HTTP transport to Post requests to other Agents.
// An http.Client or tls.Config options is mandatory to create a transport instance.
func NewOutbound(opts ...OutboundHTTPOpt) (*OutboundHTTPClient, error) {
	clOpts := &outboundCommHTTPOpts{retries: defaultRetries, retryInterval: defaultRetryInterval}
	// Apply options
	for _, opt := range opts {
		opt(clOpts)
	}

	if clOpts.client == nil {
		return nil, errors.New("creation of outbound transport requires an HTTP client")
	}

	return &OutboundHTTPClient{
		client:        clOpts.client,
		retries:       clOpts.retries,
		retryInterval: clOpts.retryInterval,
	}, nil
}

// Send posts data to url. Network failures and 5xx responses are retried; other rejections are not.
func (cs *OutboundHTTPClient) Send(ctx context.Context, data []byte, url string) error {
	if url == "" {
		return errors.New("url is mandatory")
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(cs.retryInterval), cs.retries), ctx)

	return backoff.Retry(func() error {
		return cs.post(ctx, data, url)
	}, policy)
}

func (cs *OutboundHTTPClient) post(ctx context.Context, data []byte, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return backoff.Permanent(errors.Wrap(err, "build request"))
	}

	req.Header.Set("Content-Type", transport.MediaTypeV1PlaintextPayload)

	resp, err := cs.client.Do(req)
	if err != nil {
		logger.Warnf("posting message to agent at [%s] failed: %s", url, err)

		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}

		return errors.Wrapf(err, "post to %s", url)
	}

	defer func() {
		if _, e := io.Copy(io.Discard, resp.Body); e != nil {
			logger.Debugf("draining response body: %s", e)
		}

		if e := resp.Body.Close(); e != nil {
			logger.Errorf("failed to close response body: %s", e)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted:
		return nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return errors.Errorf("received non success POST HTTP status from agent at [%s]: status : %s", url,
			resp.Status)
	default:
		return backoff.Permanent(errors.Errorf(
			"received non success POST HTTP status from agent at [%s]: status : %s", url, resp.Status))
	}
}

// Accept checks for the url scheme.
func (cs *OutboundHTTPClient) Accept(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
