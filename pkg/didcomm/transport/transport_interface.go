/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package transport

import "context"

// MediaTypeV1PlaintextPayload is the media type of plaintext DIDComm V1 messages as per Aries RFC 0044.
const MediaTypeV1PlaintextPayload = "application/json;flavor=didcomm-msg"

// OutboundTransport interface definition for transport layer
// This is the client side of the agent.
type OutboundTransport interface {
	// Send delivers data to destination.
	Send(ctx context.Context, data []byte, destination string) error
	// Accept reports whether the transport handles destination's scheme.
	Accept(destination string) bool
}

// InboundMessageHandler handles a payload received for a connection.
type InboundMessageHandler func(ctx context.Context, connectionID string, payload []byte) error
