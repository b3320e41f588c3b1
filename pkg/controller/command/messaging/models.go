/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package messaging

import (
	"encoding/json"
	"time"

	"github.com/hyperledger/aries-proof-go/pkg/didcomm/messaging/mailbox"
)

// ConnectionArgs identifies the mailbox of one connection.
type ConnectionArgs struct {
	// ID of the connection
	// required: true
	ConnectionID string `json:"connection_id"`
}

// PendingResponse holds the messages of a connection that no session consumed yet.
type PendingResponse struct {
	Messages []*mailbox.Message `json:"messages"`
}

// MarkReviewedArgs contains parameters for flagging a stored message as consumed.
type MarkReviewedArgs struct {
	// ID of the connection
	// required: true
	ConnectionID string `json:"connection_id"`

	// ID of the stored message
	// required: true
	MessageID string `json:"message_id"`
}

// PurgeResponse is the number of reviewed messages dropped from a mailbox.
type PurgeResponse struct {
	Removed int `json:"removed"`
}

// SendMessageArgs contains parameters for sending a present-proof message over an existing connection.
type SendMessageArgs struct {
	// ID of the connection between sender and receiver of this message
	// required: true
	ConnectionID string `json:"connection_id"`

	// JSON message body, must be one of the present-proof message types
	// required: true
	MessageBody json.RawMessage `json:"message_body"`

	// Time allowed for delivery, defaults to 20 seconds
	Timeout time.Duration `json:"timeout,omitempty"`
}

// SendMessageResponse is the id of the message sent.
type SendMessageResponse struct {
	ID string `json:"id"`
}
