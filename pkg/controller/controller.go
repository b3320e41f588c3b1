/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"fmt"

	client "github.com/hyperledger/aries-proof-go/pkg/client/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/controller/command"
	connectioncmd "github.com/hyperledger/aries-proof-go/pkg/controller/command/connection"
	messagingcmd "github.com/hyperledger/aries-proof-go/pkg/controller/command/messaging"
	presentproofcmd "github.com/hyperledger/aries-proof-go/pkg/controller/command/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/controller/rest"
	connectionrest "github.com/hyperledger/aries-proof-go/pkg/controller/rest/connection"
	messagingrest "github.com/hyperledger/aries-proof-go/pkg/controller/rest/messaging"
	presentproofrest "github.com/hyperledger/aries-proof-go/pkg/controller/rest/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/controller/webnotifier"
	"github.com/hyperledger/aries-proof-go/pkg/framework/context"
)

type allOpts struct {
	webhookURLs    []string
	originPatterns []string
	notifier       client.Notifier
	clientOpts     []client.Opt
}

const wsPath = "/ws"

// Opt represents a controller option.
type Opt func(opts *allOpts)

// WithWebhookURLs is an option for setting up a webhook dispatcher which will notify clients of session states.
func WithWebhookURLs(webhookURLs ...string) Opt {
	return func(opts *allOpts) {
		opts.webhookURLs = webhookURLs
	}
}

// WithWSOriginPatterns allows websocket subscriptions from the given origins.
func WithWSOriginPatterns(patterns ...string) Opt {
	return func(opts *allOpts) {
		opts.originPatterns = patterns
	}
}

// WithNotifier is an option for setting up a notifier which will notify clients of session states.
func WithNotifier(notifier client.Notifier) Opt {
	return func(opts *allOpts) {
		opts.notifier = notifier
	}
}

// WithClientOptions passes opts to the present-proof client.
func WithClientOptions(opts ...client.Opt) Opt {
	return func(o *allOpts) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}

func applyOpts(opts []Opt) *allOpts {
	o := &allOpts{}
	// Apply options
	for _, opt := range opts {
		opt(o)
	}

	if o.notifier == nil {
		o.notifier = webnotifier.New(wsPath, o.webhookURLs, webnotifier.WithOriginPatterns(o.originPatterns...))
	}

	o.clientOpts = append(o.clientOpts, client.WithNotifier(o.notifier))

	return o
}

// GetRESTHandlers returns all REST handlers provided by controller.
func GetRESTHandlers(ctx *context.Provider, opts ...Opt) ([]rest.Handler, error) {
	restAPIOpts := applyOpts(opts)

	// present proof REST operation
	presentProofOp, err := presentproofrest.New(ctx, restAPIOpts.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create present proof rest command : %w", err)
	}

	// connection REST operation
	connectionOp, err := connectionrest.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("create connection rest command : %w", err)
	}

	// messaging REST operation
	messagingOp, err := messagingrest.New(ctx)
	if err != nil {
		return nil, err
	}

	// create handlers from all operations
	var allHandlers []rest.Handler
	allHandlers = append(allHandlers, presentProofOp.GetRESTHandlers()...)
	allHandlers = append(allHandlers, connectionOp.GetRESTHandlers()...)
	allHandlers = append(allHandlers, messagingOp.GetRESTHandlers()...)

	nhp, ok := restAPIOpts.notifier.(handlerProvider)
	if ok {
		allHandlers = append(allHandlers, nhp.GetRESTHandlers()...)
	}

	return allHandlers, nil
}

type handlerProvider interface {
	GetRESTHandlers() []rest.Handler
}

// GetCommandHandlers returns all command handlers provided by controller.
func GetCommandHandlers(ctx *context.Provider, opts ...Opt) ([]command.Handler, error) {
	cmdOpts := applyOpts(opts)

	// present proof command operation
	ppcmd, err := presentproofcmd.New(ctx, cmdOpts.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed initialized present proof command: %w", err)
	}

	// connection command operation
	conncmd, err := connectioncmd.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed initialized connection command: %w", err)
	}

	// messaging command operation
	msgcmd, err := messagingcmd.New(ctx)
	if err != nil {
		return nil, err
	}

	var allHandlers []command.Handler
	allHandlers = append(allHandlers, ppcmd.GetHandlers()...)
	allHandlers = append(allHandlers, conncmd.GetHandlers()...)
	allHandlers = append(allHandlers, msgcmd.GetHandlers()...)

	return allHandlers, nil
}
