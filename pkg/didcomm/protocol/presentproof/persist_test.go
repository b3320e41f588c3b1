/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"encoding/json"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
)

func TestVerifier_ToString(t *testing.T) {
	v, err := NewVerifierFromRequest("alice-proof", addressRequest())
	require.NoError(t, err)

	_, err = v.MarkPresentationRequestSent()
	require.NoError(t, err)

	s, err := v.ToString()
	require.NoError(t, err)
	require.Contains(t, s, `"version":"1.0"`)

	restored, err := VerifierFromString(s)
	require.NoError(t, err)
	require.Equal(t, v.SourceID(), restored.SourceID())
	require.Equal(t, v.ThreadID(), restored.ThreadID())
	require.Equal(t, VerifierRequestSent, restored.State())
	require.Equal(t, StatusUnverified, restored.VerificationStatus())
	require.Equal(t, v.Request().Nonce, restored.Request().Nonce)
	require.Equal(t, v.RequestMessage().ID, restored.RequestMessage().ID)

	again, err := restored.ToString()
	require.NoError(t, err)
	require.JSONEq(t, s, again)

	ok, err := restored.ProcessMessage(presentationMessage(t, restored.ThreadID(), addressProof()))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestProver_ToString(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := preparedProver(t, ctrl)

	s, err := p.ToString()
	require.NoError(t, err)

	restored, err := ProverFromString(s)
	require.NoError(t, err)
	require.Equal(t, ProverPresentationPrepared, restored.State())
	require.Equal(t, p.ThreadID(), restored.ThreadID())
	require.Equal(t, p.SelectedCredentials(), restored.SelectedCredentials())
	require.Equal(t, p.Presentation().ID, restored.Presentation().ID)

	again, err := restored.ToString()
	require.NoError(t, err)
	require.JSONEq(t, s, again)

	msg, err := restored.MarkPresentationSent()
	require.NoError(t, err)

	proof, err := msg.Proof()
	require.NoError(t, err)
	require.Equal(t, "101 Tela Lane", proof.RequestedProof.RevealedAttrs["addr"].Raw)
}

func TestFromString_Errors(t *testing.T) {
	v, err := NewVerifierFromRequest("", addressRequest())
	require.NoError(t, err)

	data, err := json.Marshal(v)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
	}{
		{name: "not json", in: "{"},
		{name: "wrong version", in: `{"version":"2.0","data":` + string(data) + `}`},
		{name: "no data", in: `{"version":"1.0"}`},
		{name: "unknown state", in: `{"version":"1.0","data":{"state":"bogus","verification_status":"unverified",` +
			`"thread_id":"t","request":{}}}`},
		{name: "data not an object", in: `{"version":"1.0","data":"text"}`},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			_, err := VerifierFromString(tc.in)
			require.True(t, errkind.Is(err, errkind.InvalidJSON), err)

			_, err = ProverFromString(tc.in)
			require.True(t, errkind.Is(err, errkind.InvalidJSON), err)
		})
	}

	t.Run("verifier without request", func(t *testing.T) {
		_, err := VerifierFromString(`{"version":"1.0","data":{"state":"request-set",` +
			`"verification_status":"unverified"}}`)
		require.True(t, errkind.Is(err, errkind.InvalidJSON))
	})

	t.Run("prover without thread", func(t *testing.T) {
		_, err := ProverFromString(`{"version":"1.0","data":{"state":"request-received",` +
			`"presentation_status":"unverified"}}`)
		require.True(t, errkind.Is(err, errkind.InvalidJSON))
	})
}
