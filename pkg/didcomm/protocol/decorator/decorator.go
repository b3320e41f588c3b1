/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package decorator

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// Thread thread data.
type Thread struct {
	ID           string         `json:"thid,omitempty"`
	PID          string         `json:"pthid,omitempty"`
	SenderOrder  int            `json:"sender_order,omitempty"`
	ReceivedOrds map[string]int `json:"received_orders,omitempty"`
}

// PleaseAck asks the recipient to acknowledge the message it decorates.
type PleaseAck struct {
	On []string `json:"on,omitempty"`
}

// Attachment is intended to provide the possibility to include files, links or even JSON payload to the message.
// https://github.com/hyperledger/aries-rfcs/tree/master/concepts/0017-attachments
type Attachment struct {
	// ID is a JSON-LD construct that uniquely identifies attached content within the scope of a given message.
	ID string `json:"@id,omitempty"`
	// MimeType describes the MIME type of the attached content. Optional but recommended.
	MimeType string `json:"mime-type,omitempty"`
	// Description is an optional human-readable description of the content.
	Description string `json:"description,omitempty"`
	// Data is a JSON object that gives access to the actual content of the attachment.
	Data AttachmentData `json:"data,omitempty"`
}

// AttachmentData contains attachment payload.
type AttachmentData struct {
	// Sha256 is a hash of the content. Optional.
	Sha256 string `json:"sha256,omitempty"`
	// Base64 encoded data, when representing arbitrary content inline instead of via links. Optional.
	Base64 string `json:"base64,omitempty"`
	// JSON is a directly embedded JSON data, when representing content inline instead of via links, and when the
	// content is natively conveyable as JSON. Optional.
	JSON interface{} `json:"json,omitempty"`
}

// Fetch returns the raw bytes of the attachment payload.
func (d *AttachmentData) Fetch() ([]byte, error) {
	if d.JSON != nil {
		bits, err := json.Marshal(d.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal json contents: %w", err)
		}

		return bits, nil
	}

	if d.Base64 != "" {
		bits, err := base64.StdEncoding.DecodeString(d.Base64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 contents: %w", err)
		}

		return bits, nil
	}

	return nil, errors.New("no contents in this attachment")
}

// NewBase64Attachment returns a JSON attachment carried as base64, the way Indy formats are exchanged.
func NewBase64Attachment(id, mimeType string, payload []byte) Attachment {
	return Attachment{
		ID:       id,
		MimeType: mimeType,
		Data:     AttachmentData{Base64: base64.StdEncoding.EncodeToString(payload)},
	}
}
