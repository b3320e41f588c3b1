/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"encoding/json"

	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/gjson"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/decorator"
)

const jsonType = "@type"

func newOfKind(k Kind) Message {
	switch k {
	case KindProposePresentation:
		return &ProposePresentation{}
	case KindRequestPresentation:
		return &RequestPresentation{}
	case KindPresentation:
		return &Presentation{}
	case KindAck:
		return &Ack{}
	case KindProblemReport:
		return &ProblemReport{}
	default:
		return nil
	}
}

func kindOf(msgType string) (Kind, error) {
	k, ok := kindByType[normalizeType(msgType)]
	if !ok {
		return KindUnknown, errkind.New(errkind.InvalidMessages, "unsupported message type [%s]", msgType)
	}

	return k, nil
}

// ParseMessage decodes a JSON present-proof message into its concrete type.
func ParseMessage(raw []byte) (Message, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errkind.New(errkind.InvalidJSON, "message is not valid JSON")
	}

	t := gjson.GetBytes(raw, jsonType)
	if !t.Exists() {
		return nil, errkind.New(errkind.InvalidMessages, "message has no %s", jsonType)
	}

	k, err := kindOf(t.String())
	if err != nil {
		return nil, err
	}

	msg := newOfKind(k)

	if err = json.Unmarshal(raw, msg); err != nil {
		return nil, errkind.Wrap(err, errkind.InvalidJSON, "decode %s message", k)
	}

	return msg, nil
}

// DecodeMessageMap decodes a generic JSON object into its concrete message type.
func DecodeMessageMap(m map[string]interface{}) (Message, error) {
	t, ok := m[jsonType].(string)
	if !ok {
		return nil, errkind.New(errkind.InvalidMessages, "message has no %s", jsonType)
	}

	k, err := kindOf(t)
	if err != nil {
		return nil, err
	}

	msg := newOfKind(k)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           msg,
	})
	if err != nil {
		return nil, errkind.Wrap(err, errkind.InvalidJSON, "initialize decoder")
	}

	if err = decoder.Decode(m); err != nil {
		return nil, errkind.Wrap(err, errkind.InvalidJSON, "decode %s message", k)
	}

	return msg, nil
}

func firstAttachment(attachments []decorator.Attachment) ([]byte, error) {
	if len(attachments) == 0 {
		return nil, errkind.New(errkind.InvalidMessages, "message has no attachment")
	}

	raw, err := attachments[0].Data.Fetch()
	if err != nil {
		return nil, errkind.Wrap(err, errkind.InvalidJSON, "read attachment")
	}

	return raw, nil
}

// RequestData returns the raw proof request carried by the message.
func (m *RequestPresentation) RequestData() ([]byte, error) {
	return firstAttachment(m.RequestPresentations)
}

// Proof decodes the proof carried by the message.
func (m *Presentation) Proof() (*anoncreds.Proof, error) {
	raw, err := firstAttachment(m.Presentations)
	if err != nil {
		return nil, err
	}

	proof := &anoncreds.Proof{}

	if err = json.Unmarshal(raw, proof); err != nil {
		return nil, errkind.Wrap(err, errkind.InvalidJSON, "decode proof")
	}

	return proof, nil
}
