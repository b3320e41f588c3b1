/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package messaging

import (
	"github.com/hyperledger/aries-proof-go/pkg/controller/command/messaging"
)

// sendMessageRequest model
//
// This is used for sending a present-proof message over an existing connection
//
// swagger:parameters sendMessage
type sendMessageRequest struct { // nolint: unused,deadcode
	// Params for sending a message
	//
	// in: body
	// required: true
	Params messaging.SendMessageArgs
}

// sendMessageResponse model
//
// response of send message action
//
// swagger:response sendMessageResponse
type sendMessageResponse struct { // nolint: unused,deadcode
	// in: body
	messaging.SendMessageResponse
}

// connectionParams model
//
// This is used for reading or purging the mailbox of a connection
//
// swagger:parameters pendingMessages purgeMessages
type connectionParams struct { // nolint: unused,deadcode
	// ID of the connection
	//
	// in: path
	// required: true
	ConnectionID string `json:"connection_id"`
}

// pendingMessagesResponse model
//
// response of pending messages action
//
// swagger:response pendingMessagesResponse
type pendingMessagesResponse struct { // nolint: unused,deadcode
	// in: body
	messaging.PendingResponse
}

// purgeMessagesResponse model
//
// response of purge messages action
//
// swagger:response purgeMessagesResponse
type purgeMessagesResponse struct { // nolint: unused,deadcode
	// in: body
	messaging.PurgeResponse
}

// markReviewedParams model
//
// This is used for flagging a stored message as consumed
//
// swagger:parameters markReviewed
type markReviewedParams struct { // nolint: unused,deadcode
	// ID of the connection
	//
	// in: path
	// required: true
	ConnectionID string `json:"connection_id"`

	// ID of the stored message
	//
	// in: path
	// required: true
	MessageID string `json:"message_id"`
}

// markReviewedResponse model
//
// response of mark reviewed action
//
// swagger:response markReviewedResponse
type markReviewedResponse struct { // nolint: unused,deadcode
	// in: body
	Body struct{}
}
