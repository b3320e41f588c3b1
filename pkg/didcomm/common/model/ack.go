/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package model

import "github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/decorator"

const (
	// AckStatusOK is the status of a positive acknowledgement.
	AckStatusOK = "OK"
	// AckStatusFail is the status of a negative acknowledgement.
	AckStatusFail = "FAIL"
	// AckStatusPending is the status of an acknowledgement whose outcome is not final yet.
	AckStatusPending = "PENDING"
)

// Ack acknowledgement struct.
type Ack struct {
	Type   string            `json:"@type,omitempty"`
	ID     string            `json:"@id,omitempty"`
	Status string            `json:"status,omitempty"`
	Thread *decorator.Thread `json:"~thread,omitempty"`
}
