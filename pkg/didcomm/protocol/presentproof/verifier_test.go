/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/decorator"
	mocks "github.com/hyperledger/aries-proof-go/pkg/internal/gomocks/anoncreds"
)

func sentVerifier(t *testing.T) (*Verifier, *RequestPresentation) {
	t.Helper()

	v, err := NewVerifierFromRequest("alice-proof", addressRequest())
	require.NoError(t, err)

	msg, err := v.MarkPresentationRequestSent()
	require.NoError(t, err)

	return v, msg
}

func expectLedgerLookups(ledger *mocks.MockLedgerRead) {
	ledger.EXPECT().GetSchema(gomock.Any(), schemaID).Return(&anoncreds.Schema{ID: schemaID}, nil)
	ledger.EXPECT().GetCredDef(gomock.Any(), credDefID).
		Return(&anoncreds.CredentialDefinition{ID: credDefID, Value: json.RawMessage(`{"primary":{}}`)}, nil)
}

func TestNewVerifier(t *testing.T) {
	t.Run("from request", func(t *testing.T) {
		v, err := NewVerifierFromRequest("alice-proof", addressRequest())
		require.NoError(t, err)
		require.Equal(t, VerifierRequestSet, v.State())
		require.Equal(t, StatusUnverified, v.VerificationStatus())
		require.Empty(t, v.ThreadID())
		require.Equal(t, "alice-proof", v.SourceID())
		require.Equal(t, defaultRequestVersion, v.Request().Version)
		require.False(t, v.Progressable())
	})

	t.Run("nonce is generated when missing", func(t *testing.T) {
		req := addressRequest()
		req.Nonce = ""

		v, err := NewVerifierFromRequest("", req)
		require.NoError(t, err)
		require.NotEmpty(t, v.Request().Nonce)
	})

	t.Run("malformed attributes", func(t *testing.T) {
		req := addressRequest()
		req.RequestedAttributes["bad"] = anoncreds.AttrInfo{}

		_, err := NewVerifierFromRequest("", req)
		require.True(t, errkind.Is(err, errkind.InvalidAttributesStructure))
	})

	t.Run("from proposal", func(t *testing.T) {
		proposal := &ProposePresentation{Type: ProposePresentationMsgType, ID: "proposal-1"}

		v, err := NewVerifierFromProposal("", proposal, addressRequest())
		require.NoError(t, err)
		require.Equal(t, VerifierRequestSet, v.State())
		require.Equal(t, "proposal-1", v.ThreadID())
		require.Equal(t, proposal, v.Proposal())

		msg, err := v.MarkPresentationRequestSent()
		require.NoError(t, err)
		require.Equal(t, "proposal-1", msg.ThreadID())
	})

	t.Run("from proposal without ids", func(t *testing.T) {
		_, err := NewVerifierFromProposal("", &ProposePresentation{}, addressRequest())
		require.True(t, errkind.Is(err, errkind.InvalidMessages))

		_, err = NewVerifierFromProposal("", nil, addressRequest())
		require.True(t, errkind.Is(err, errkind.InvalidOption))
	})
}

func TestVerifier_MarkPresentationRequestSent(t *testing.T) {
	t.Run("request id becomes the thread id", func(t *testing.T) {
		v, msg := sentVerifier(t)

		require.Equal(t, VerifierRequestSent, v.State())
		require.Equal(t, msg.ID, v.ThreadID())
		require.Nil(t, msg.Thread)
		require.Equal(t, RequestPresentationMsgType, msg.Type)
		require.True(t, v.Progressable())

		raw, err := msg.RequestData()
		require.NoError(t, err)

		req, err := anoncreds.ParseProofRequest(raw)
		require.NoError(t, err)
		require.Equal(t, "address1", req.RequestedAttributes["addr"].Name)
	})

	t.Run("fails outside request-set", func(t *testing.T) {
		v, _ := sentVerifier(t)
		thread := v.ThreadID()

		_, err := v.MarkPresentationRequestSent()
		require.True(t, errkind.Is(err, errkind.InvalidState))
		require.Equal(t, VerifierRequestSent, v.State())
		require.Equal(t, thread, v.ThreadID())
	})
}

func TestVerifier_VerifyPresentation(t *testing.T) {
	ctx := context.Background()

	t.Run("valid proof", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ledger := mocks.NewMockLedgerRead(ctrl)
		gateway := mocks.NewMockGateway(ctrl)

		v, _ := sentVerifier(t)

		expectLedgerLookups(ledger)
		gateway.EXPECT().VerifyPresentation(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in *anoncreds.VerificationInputs) (bool, error) {
				require.Contains(t, in.Schemas, schemaID)
				require.Contains(t, in.CredDefs, credDefID)
				require.Empty(t, in.RevRegs)
				require.Equal(t, "address1", in.Request.RequestedAttributes["addr"].Name)

				return true, nil
			})

		reply, err := v.VerifyPresentation(ctx, ledger, gateway, presentationMessage(t, v.ThreadID(), addressProof()))
		require.NoError(t, err)
		require.Equal(t, KindAck, reply.Kind())
		require.Equal(t, v.ThreadID(), reply.ThreadID())
		require.Equal(t, VerifierFinished, v.State())
		require.Equal(t, StatusValid, v.VerificationStatus())
		require.NotNil(t, v.Presentation())
	})

	t.Run("tampered proof finishes with invalid status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ledger := mocks.NewMockLedgerRead(ctrl)
		gateway := mocks.NewMockGateway(ctrl)

		v, _ := sentVerifier(t)

		expectLedgerLookups(ledger)
		gateway.EXPECT().VerifyPresentation(gomock.Any(), gomock.Any()).Return(false, nil)

		reply, err := v.VerifyPresentation(ctx, ledger, gateway, presentationMessage(t, v.ThreadID(), addressProof()))
		require.NoError(t, err)
		require.Equal(t, KindProblemReport, reply.Kind())
		require.Equal(t, VerifierFinished, v.State())
		require.Equal(t, StatusInvalid, v.VerificationStatus())
		require.Equal(t, codeInvalidPresentation, v.ProblemReport().Description.Code)
	})

	t.Run("revocation state is pinned to the proof timestamp", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ledger := mocks.NewMockLedgerRead(ctrl)
		gateway := mocks.NewMockGateway(ctrl)

		v, _ := sentVerifier(t)

		ts := uint64(1700000000)
		proof := addressProof()
		proof.Identifiers[0].RevRegID = revRegID
		proof.Identifiers[0].Timestamp = &ts

		expectLedgerLookups(ledger)
		ledger.EXPECT().GetRevRegDef(gomock.Any(), revRegID).
			Return(&anoncreds.RevocationRegistryDefinition{ID: revRegID}, nil)
		ledger.EXPECT().GetRevRegDelta(gomock.Any(), revRegID, gomock.Nil(), &ts).
			Return(&anoncreds.RevocationDelta{RegistryID: revRegID, Timestamp: ts, Value: json.RawMessage(`{}`)}, nil)
		gateway.EXPECT().VerifyPresentation(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in *anoncreds.VerificationInputs) (bool, error) {
				require.Equal(t, ts, in.RevRegs[revRegID][ts].Timestamp)
				require.Contains(t, in.RevRegDefs, revRegID)

				return true, nil
			})

		_, err := v.VerifyPresentation(ctx, ledger, gateway, presentationMessage(t, v.ThreadID(), proof))
		require.NoError(t, err)
		require.Equal(t, StatusValid, v.VerificationStatus())
	})

	t.Run("gateway failure is an error and leaves state alone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ledger := mocks.NewMockLedgerRead(ctrl)
		gateway := mocks.NewMockGateway(ctrl)

		v, _ := sentVerifier(t)

		expectLedgerLookups(ledger)
		gateway.EXPECT().VerifyPresentation(gomock.Any(), gomock.Any()).Return(false, errors.New("pairing failure"))

		_, err := v.VerifyPresentation(ctx, ledger, gateway, presentationMessage(t, v.ThreadID(), addressProof()))
		require.True(t, errkind.Is(err, errkind.CredentialGatewayError))
		require.Equal(t, VerifierRequestSent, v.State())
		require.Equal(t, StatusUnverified, v.VerificationStatus())
		require.Nil(t, v.Presentation())
	})

	t.Run("ledger failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ledger := mocks.NewMockLedgerRead(ctrl)
		gateway := mocks.NewMockGateway(ctrl)

		v, _ := sentVerifier(t)

		ledger.EXPECT().GetSchema(gomock.Any(), schemaID).Return(nil, errors.New("pool timeout"))

		_, err := v.VerifyPresentation(ctx, ledger, gateway, presentationMessage(t, v.ThreadID(), addressProof()))
		require.True(t, errkind.Is(err, errkind.CredentialGatewayError))
		require.Equal(t, VerifierRequestSent, v.State())
	})

	t.Run("thread mismatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		v, _ := sentVerifier(t)

		_, err := v.VerifyPresentation(ctx, mocks.NewMockLedgerRead(ctrl), mocks.NewMockGateway(ctrl),
			presentationMessage(t, "other-thread", addressProof()))
		require.True(t, errkind.Is(err, errkind.InvalidMessages))
		require.Equal(t, VerifierRequestSent, v.State())
	})

	t.Run("undecodable attachment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		v, _ := sentVerifier(t)
		p := presentationMessage(t, v.ThreadID(), addressProof())
		p.Presentations[0].Data = decorator.AttachmentData{Base64: "bm90IGpzb24="}

		_, err := v.VerifyPresentation(ctx, mocks.NewMockLedgerRead(ctrl), mocks.NewMockGateway(ctrl), p)
		require.True(t, errkind.Is(err, errkind.InvalidJSON))
	})

	t.Run("wrong state", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		v, err := NewVerifierFromRequest("", addressRequest())
		require.NoError(t, err)

		_, err = v.VerifyPresentation(ctx, mocks.NewMockLedgerRead(ctrl), mocks.NewMockGateway(ctrl),
			presentationMessage(t, "", addressProof()))
		require.True(t, errkind.Is(err, errkind.InvalidState))
	})

	t.Run("verify the stored presentation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ledger := mocks.NewMockLedgerRead(ctrl)
		gateway := mocks.NewMockGateway(ctrl)

		v, _ := sentVerifier(t)
		require.NoError(t, v.ReceivePresentation(presentationMessage(t, v.ThreadID(), addressProof())))
		require.Equal(t, VerifierPresentationReceived, v.State())

		expectLedgerLookups(ledger)
		gateway.EXPECT().VerifyPresentation(gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := v.VerifyPresentation(ctx, ledger, gateway, nil)
		require.NoError(t, err)
		require.Equal(t, VerifierFinished, v.State())
	})
}

func TestVerifier_ProcessMessage(t *testing.T) {
	t.Run("presentation is received", func(t *testing.T) {
		v, _ := sentVerifier(t)

		ok, err := v.ProcessMessage(presentationMessage(t, v.ThreadID(), addressProof()))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, VerifierPresentationReceived, v.State())
	})

	t.Run("proposal renews the request on the same thread", func(t *testing.T) {
		v, _ := sentVerifier(t)
		thread := v.ThreadID()

		ok, err := v.ProcessMessage(&ProposePresentation{
			Type: ProposePresentationMsgType, ID: "p-2", Thread: &decorator.Thread{ID: thread},
		})
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, VerifierRequestSet, v.State())

		msg, err := v.MarkPresentationRequestSent()
		require.NoError(t, err)
		require.Equal(t, thread, msg.ThreadID())
	})

	t.Run("problem report without thread fails the session", func(t *testing.T) {
		v, _ := sentVerifier(t)

		ok, err := v.ProcessMessage(problemReportFor(""))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, VerifierFailed, v.State())
		require.NotNil(t, v.ProblemReport())
	})

	t.Run("unexpected kind is not progressable", func(t *testing.T) {
		v, _ := sentVerifier(t)

		ok, err := v.ProcessMessage(ackFor(v.ThreadID()))
		require.NoError(t, err)
		require.False(t, ok)
		require.Equal(t, VerifierRequestSent, v.State())

		ok, err = v.ProcessMessage(nil)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("foreign thread", func(t *testing.T) {
		v, _ := sentVerifier(t)

		_, err := v.ProcessMessage(presentationMessage(t, "elsewhere", addressProof()))
		require.True(t, errkind.Is(err, errkind.InvalidMessages))
		require.Equal(t, VerifierRequestSent, v.State())
	})
}

func TestVerifier_Clone(t *testing.T) {
	v, _ := sentVerifier(t)
	c := v.Clone()

	require.NoError(t, c.ReceivePresentation(presentationMessage(t, c.ThreadID(), addressProof())))
	require.Equal(t, VerifierRequestSent, v.State())
	require.Nil(t, v.Presentation())
}

func TestVerifier_AddressScenario(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedgerRead(ctrl)
	gateway := mocks.NewMockGateway(ctrl)

	for _, valid := range []bool{true, false} {
		v, err := NewVerifierFromRequest("", addressRequest())
		require.NoError(t, err)

		_, err = v.MarkPresentationRequestSent()
		require.NoError(t, err)
		require.Equal(t, VerifierRequestSent, v.State())

		pool := map[string]Message{"m1": presentationMessage(t, v.ThreadID(), addressProof())}
		_, msg, ok := FindVerifierMessage(v, pool)
		require.True(t, ok)

		expectLedgerLookups(ledger)
		gateway.EXPECT().VerifyPresentation(gomock.Any(), gomock.Any()).Return(valid, nil)

		_, err = v.VerifyPresentation(context.Background(), ledger, gateway, msg.(*Presentation))
		require.NoError(t, err)
		require.Equal(t, VerifierFinished, v.State())
		require.NotEqual(t, StatusUnverified, v.VerificationStatus())
	}
}
