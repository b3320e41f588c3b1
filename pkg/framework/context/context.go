/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package context creates a framework Provider context holding the services present-proof sessions run on and
// provides simple accessor methods to those same services.
package context

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	"github.com/hyperledger/aries-proof-go/pkg/anoncreds/wallet"
	"github.com/hyperledger/aries-proof-go/pkg/client/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/messaging/mailbox"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-proof-go/pkg/store/connection"
)

var logger = log.New("aries-framework/framework/context")

// Provider supplies the framework configuration to client objects.
type Provider struct {
	storeProvider      storage.Provider
	outboundTransports []transport.OutboundTransport
	ledger             anoncreds.LedgerRead
	gateway            anoncreds.Gateway
	wallet             anoncreds.Wallet
	mailbox            *mailbox.Mailbox
	connectionRecorder *connection.Recorder
}

// ProviderOption configures the framework.
type ProviderOption func(opts *Provider) error

// New instantiates a new context provider. Storage defaults to memory and the wallet to one kept in that
// storage. A ledger and a credential gateway are required.
func New(opts ...ProviderOption) (*Provider, error) {
	ctxProvider := Provider{}

	for _, opt := range opts {
		err := opt(&ctxProvider)
		if err != nil {
			return nil, fmt.Errorf("option failed: %w", err)
		}
	}

	if ctxProvider.ledger == nil || ctxProvider.gateway == nil {
		return nil, errors.New("ledger and credential gateway are required")
	}

	if ctxProvider.storeProvider == nil {
		ctxProvider.storeProvider = mem.NewProvider()
	}

	if ctxProvider.wallet == nil {
		w, err := wallet.New(ctxProvider.storeProvider)
		if err != nil {
			return nil, fmt.Errorf("initialize context wallet: %w", err)
		}

		ctxProvider.wallet = w
	}

	recorder, err := connection.NewRecorder(&ctxProvider)
	if err != nil {
		return nil, fmt.Errorf("initialize context connection recorder: %w", err)
	}

	ctxProvider.connectionRecorder = recorder

	box, err := mailbox.New(ctxProvider.storeProvider)
	if err != nil {
		return nil, fmt.Errorf("initialize context mailbox: %w", err)
	}

	ctxProvider.mailbox = box

	return &ctxProvider, nil
}

// StorageProvider returns the storage provider.
func (p *Provider) StorageProvider() storage.Provider {
	return p.storeProvider
}

// OutboundTransports returns the outbound transports.
func (p *Provider) OutboundTransports() []transport.OutboundTransport {
	return p.outboundTransports
}

// Connections resolves the outbound channel of a connection.
func (p *Provider) Connections() presentproof.ConnectionLookup {
	return p.connectionRecorder.Lookup
}

// ConnectionRecorder returns the read-write connection store.
func (p *Provider) ConnectionRecorder() *connection.Recorder {
	return p.connectionRecorder
}

// Messages returns the pool of received messages.
func (p *Provider) Messages() presentproof.MessagePool {
	return p.mailbox
}

// Mailbox returns the store of received messages.
func (p *Provider) Mailbox() *mailbox.Mailbox {
	return p.mailbox
}

// Ledger returns the ledger reader.
func (p *Provider) Ledger() anoncreds.LedgerRead {
	return p.ledger
}

// Gateway returns the credential gateway.
func (p *Provider) Gateway() anoncreds.Gateway {
	return p.gateway
}

// Wallet returns the wallet credentials are searched in.
func (p *Provider) Wallet() anoncreds.Wallet {
	return p.wallet
}

// InboundMessageHandler returns a handler storing payloads received on known connections in the mailbox.
func (p *Provider) InboundMessageHandler() transport.InboundMessageHandler {
	return func(ctx context.Context, connectionID string, payload []byte) error {
		if _, err := p.connectionRecorder.GetConnectionRecord(connectionID); err != nil {
			return fmt.Errorf("inbound message on connection %s: %w", connectionID, err)
		}

		id, err := p.mailbox.Add(ctx, connectionID, payload)
		if err != nil {
			return err
		}

		logger.Debugf("stored inbound message %s for connection %s", id, connectionID)

		return nil
	}
}

// WithOutboundTransports injects the transports used to reach connection endpoints.
func WithOutboundTransports(transports ...transport.OutboundTransport) ProviderOption {
	return func(opts *Provider) error {
		opts.outboundTransports = transports
		return nil
	}
}

// WithStorageProvider injects a storage provider into the context.
func WithStorageProvider(s storage.Provider) ProviderOption {
	return func(opts *Provider) error {
		opts.storeProvider = s
		return nil
	}
}

// WithLedger injects the ledger reader into the context.
func WithLedger(l anoncreds.LedgerRead) ProviderOption {
	return func(opts *Provider) error {
		opts.ledger = l
		return nil
	}
}

// WithGateway injects the credential gateway into the context.
func WithGateway(g anoncreds.Gateway) ProviderOption {
	return func(opts *Provider) error {
		opts.gateway = g
		return nil
	}
}

// WithWallet injects the wallet into the context.
func WithWallet(w anoncreds.Wallet) ProviderOption {
	return func(opts *Provider) error {
		opts.wallet = w
		return nil
	}
}
