/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
)

func TestParseMessage(t *testing.T) {
	t.Run("every kind", func(t *testing.T) {
		tests := []struct {
			raw  string
			kind Kind
		}{
			{raw: `{"@type":"` + ProposePresentationMsgType + `","@id":"1"}`, kind: KindProposePresentation},
			{raw: `{"@type":"` + RequestPresentationMsgType + `","@id":"1"}`, kind: KindRequestPresentation},
			{raw: `{"@type":"` + PresentationMsgType + `","@id":"1"}`, kind: KindPresentation},
			{raw: `{"@type":"` + AckMsgType + `","@id":"1","status":"OK"}`, kind: KindAck},
			{raw: `{"@type":"` + NotificationAckMsgType + `","@id":"1"}`, kind: KindAck},
			{raw: `{"@type":"` + ProblemReportMsgType + `","@id":"1"}`, kind: KindProblemReport},
			{raw: `{"@type":"` + ReportProblemMsgType + `","@id":"1"}`, kind: KindProblemReport},
			{
				raw:  `{"@type":"did:sov:BzCbsNYhMrjHiqZDTUASHg;spec/present-proof/1.0/presentation","@id":"1"}`,
				kind: KindPresentation,
			},
		}

		for _, tc := range tests {
			msg, err := ParseMessage([]byte(tc.raw))
			require.NoError(t, err, tc.raw)
			require.Equal(t, tc.kind, msg.Kind())
			require.Equal(t, "1", msg.MessageID())
		}
	})

	t.Run("request round trip", func(t *testing.T) {
		raw, err := json.Marshal(requestMessage("r-1", addressRequestJSON(t)))
		require.NoError(t, err)

		msg, err := ParseMessage(raw)
		require.NoError(t, err)

		data, err := msg.(*RequestPresentation).RequestData()
		require.NoError(t, err)
		require.JSONEq(t, addressRequestJSON(t), string(data))
	})

	t.Run("thread id", func(t *testing.T) {
		msg, err := ParseMessage([]byte(`{"@type":"` + AckMsgType + `","@id":"1","~thread":{"thid":"t-1"}}`))
		require.NoError(t, err)
		require.Equal(t, "t-1", msg.ThreadID())
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseMessage([]byte(`{"@type":`))
		require.True(t, errkind.Is(err, errkind.InvalidJSON))
	})

	t.Run("wrong field types", func(t *testing.T) {
		_, err := ParseMessage([]byte(`{"@type":"` + PresentationMsgType + `","presentations~attach":"x"}`))
		require.True(t, errkind.Is(err, errkind.InvalidJSON))
	})

	t.Run("unsupported or missing type", func(t *testing.T) {
		_, err := ParseMessage([]byte(`{"@type":"https://didcomm.org/issue-credential/1.0/offer-credential"}`))
		require.True(t, errkind.Is(err, errkind.InvalidMessages))

		_, err = ParseMessage([]byte(`{"@id":"1"}`))
		require.True(t, errkind.Is(err, errkind.InvalidMessages))
	})
}

func TestDecodeMessageMap(t *testing.T) {
	t.Run("presentation", func(t *testing.T) {
		raw, err := json.Marshal(presentationMessage(t, "t-1", addressProof()))
		require.NoError(t, err)

		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &m))

		msg, err := DecodeMessageMap(m)
		require.NoError(t, err)
		require.Equal(t, KindPresentation, msg.Kind())
		require.Equal(t, "t-1", msg.ThreadID())

		proof, err := msg.(*Presentation).Proof()
		require.NoError(t, err)
		require.Equal(t, addressProof().RequestedProof, proof.RequestedProof)
	})

	t.Run("missing type", func(t *testing.T) {
		_, err := DecodeMessageMap(map[string]interface{}{"@id": "1"})
		require.True(t, errkind.Is(err, errkind.InvalidMessages))
	})

	t.Run("mismatched field", func(t *testing.T) {
		_, err := DecodeMessageMap(map[string]interface{}{
			"@type":   AckMsgType,
			"~thread": "not an object",
		})
		require.True(t, errkind.Is(err, errkind.InvalidJSON))
	})
}

func TestPresentation_Proof(t *testing.T) {
	_, err := (&Presentation{}).Proof()
	require.True(t, errkind.Is(err, errkind.InvalidMessages))

	_, err = (&RequestPresentation{}).RequestData()
	require.True(t, errkind.Is(err, errkind.InvalidMessages))
}
