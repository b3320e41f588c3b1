/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	"github.com/hyperledger/aries-proof-go/pkg/anoncreds/wallet"
	client "github.com/hyperledger/aries-proof-go/pkg/client/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
	"github.com/hyperledger/aries-proof-go/pkg/controller/command"
	protocol "github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/presentproof"
	clientmocks "github.com/hyperledger/aries-proof-go/pkg/internal/gomocks/client/presentproof"
	mockanoncreds "github.com/hyperledger/aries-proof-go/pkg/mock/anoncreds"
)

const (
	issuerDID = "NcYxiDXkpYi6ov5FcYDi1e"
	schemaID  = issuerDID + ":2:address:1.0"
	credDefID = issuerDID + ":3:CL:1:tag"

	connID = "conn-1"
)

type provider struct {
	connections client.ConnectionLookup
	messages    client.MessagePool
	ledger      anoncreds.LedgerRead
	gateway     anoncreds.Gateway
	wallet      anoncreds.Wallet
}

func (p *provider) Connections() client.ConnectionLookup { return p.connections }
func (p *provider) Messages() client.MessagePool         { return p.messages }
func (p *provider) Ledger() anoncreds.LedgerRead         { return p.ledger }
func (p *provider) Gateway() anoncreds.Gateway           { return p.gateway }
func (p *provider) Wallet() anoncreds.Wallet             { return p.wallet }

// outbox records every message handed to the transport.
type outbox struct {
	mu   sync.Mutex
	sent []protocol.Message
	fail error
}

func (o *outbox) send(_ context.Context, msg protocol.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fail != nil {
		return o.fail
	}

	o.sent = append(o.sent, msg)

	return nil
}

func (o *outbox) last(t *testing.T) protocol.Message {
	t.Helper()

	o.mu.Lock()
	defer o.mu.Unlock()

	require.NotEmpty(t, o.sent)

	return o.sent[len(o.sent)-1]
}

type env struct {
	cmd    *Command
	outbox *outbox
}

func newEnv(t *testing.T, ctrl *gomock.Controller) *env {
	t.Helper()

	l := mockanoncreds.NewLedger()
	l.AddSchema(&anoncreds.Schema{ID: schemaID, Name: "address", Version: "1.0",
		AttrNames: []string{"address1", "zip"}})
	l.AddCredDef(&anoncreds.CredentialDefinition{ID: credDefID, SchemaID: schemaID,
		Value: json.RawMessage(`{"primary":{}}`)})

	g, err := mockanoncreds.NewGateway(l, []byte("command-test-key"))
	require.NoError(t, err)

	w, err := wallet.New(mem.NewProvider())
	require.NoError(t, err)

	_, err = g.IssueCredential(context.Background(), w, anoncreds.CredentialInfo{
		Attrs:     map[string]string{"address1": "101 Tela Lane", "zip": "87121"},
		SchemaID:  schemaID,
		CredDefID: credDefID,
	})
	require.NoError(t, err)

	out := &outbox{}

	lookup := clientmocks.NewMockConnectionLookup(ctrl)
	lookup.EXPECT().Sender(gomock.Any(), connID).Return(protocol.SendFunc(out.send), nil).AnyTimes()
	lookup.EXPECT().Sender(gomock.Any(), gomock.Not(connID)).
		Return(nil, errkind.New(errkind.NotFound, "no connection")).AnyTimes()

	pool := clientmocks.NewMockMessagePool(ctrl)
	pool.EXPECT().Messages(gomock.Any(), gomock.Any()).Return(map[string]protocol.Message{}, nil).AnyTimes()

	p := &provider{connections: lookup, messages: pool, ledger: l, gateway: g, wallet: w}

	cmd, err := New(p)
	require.NoError(t, err)

	return &env{cmd: cmd, outbox: out}
}

func toReader(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)

	return bytes.NewBuffer(raw)
}

func addressRequest() *anoncreds.ProofRequest {
	return &anoncreds.ProofRequest{
		Name: "address",
		RequestedAttributes: map[string]anoncreds.AttrInfo{
			"addr": {Name: "address1"},
		},
		RequestedPredicates: map[string]anoncreds.PredicateInfo{
			"zip_gt": {Name: "zip", PType: ">", PValue: 80000},
		},
	}
}

func requireValidation(t *testing.T, err command.Error) {
	t.Helper()

	require.Error(t, err)
	require.Equal(t, command.ValidationError, err.Type())
	require.Equal(t, InvalidRequestErrorCode, err.Code())
}

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newEnv(t, ctrl)
	require.NotNil(t, e.cmd.Client())

	handlers := e.cmd.GetHandlers()
	require.Len(t, handlers, 19)

	for _, h := range handlers {
		require.Equal(t, CommandName, h.Name())
		require.NotEmpty(t, h.Method())
		require.NotNil(t, h.Handle())
	}
}

func TestCommand_Exchange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	verifier := newEnv(t, ctrl)
	prover := newEnv(t, ctrl)

	var b bytes.Buffer

	cmdErr := verifier.cmd.SendRequest(&b, toReader(t, &SendRequestArgs{
		ConnectionID: connID,
		ProofRequest: addressRequest(),
	}))
	require.NoError(t, cmdErr)

	sent := SendRequestResponse{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &sent))
	require.NotEmpty(t, sent.ThreadID)

	req, ok := verifier.outbox.last(t).(*protocol.RequestPresentation)
	require.True(t, ok)

	b.Reset()
	cmdErr = prover.cmd.ReceiveRequest(&b, toReader(t, &ReceiveRequestArgs{
		ConnectionID:        connID,
		SourceID:            "address",
		RequestPresentation: req,
	}))
	require.NoError(t, cmdErr)

	received := ThreadResponse{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &received))
	require.Equal(t, sent.ThreadID, received.ThreadID)

	b.Reset()
	require.NoError(t, prover.cmd.GetProver(&b, toReader(t, &ThreadArgs{ThreadID: sent.ThreadID})))

	proverInfo := ProverResponse{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &proverInfo))
	require.Equal(t, protocol.ProverRequestReceived, proverInfo.State)
	require.NotNil(t, proverInfo.ProofRequest)
	require.Equal(t, "address1", proverInfo.ProofRequest.RequestedAttributes["addr"].Name)

	b.Reset()
	require.NoError(t, prover.cmd.RetrieveCredentials(&b, toReader(t, &ThreadArgs{ThreadID: sent.ThreadID})))

	creds := RetrieveCredentialsResponse{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &creds))
	require.NotEmpty(t, creds.Credentials.Attrs["addr"])
	require.NotEmpty(t, creds.Credentials.Predicates["zip_gt"])

	selected := anoncreds.SelectedCredentials{
		"addr":   {Credential: creds.Credentials.Attrs["addr"][0], Revealed: true},
		"zip_gt": {Credential: creds.Credentials.Predicates["zip_gt"][0]},
	}

	b.Reset()
	require.NoError(t, prover.cmd.GeneratePresentation(&b, toReader(t, &GeneratePresentationArgs{
		ThreadID:            sent.ThreadID,
		SelectedCredentials: selected,
	})))

	b.Reset()
	require.NoError(t, prover.cmd.SendPresentation(&b, toReader(t, &ThreadArgs{ThreadID: sent.ThreadID})))

	presentation, err := json.Marshal(prover.outbox.last(t))
	require.NoError(t, err)

	b.Reset()
	require.NoError(t, verifier.cmd.UpdateVerifierState(&b, toReader(t, &UpdateStateArgs{
		ThreadID: sent.ThreadID,
		Message:  presentation,
	})))

	updated := UpdateStateResponse{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &updated))
	require.Equal(t, string(protocol.VerifierFinished), updated.State)

	b.Reset()
	require.NoError(t, verifier.cmd.GetVerifier(&b, toReader(t, &ThreadArgs{ThreadID: sent.ThreadID})))

	verifierInfo := VerifierResponse{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &verifierInfo))
	require.Equal(t, protocol.StatusValid, verifierInfo.Status)
	require.Equal(t, connID, verifierInfo.ConnectionID)
	require.NotNil(t, verifierInfo.Presentation)

	ack, err := json.Marshal(verifier.outbox.last(t))
	require.NoError(t, err)

	b.Reset()
	require.NoError(t, prover.cmd.UpdateProverState(&b, toReader(t, &UpdateStateArgs{
		ThreadID: sent.ThreadID,
		Message:  ack,
	})))

	updated = UpdateStateResponse{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &updated))
	require.Equal(t, string(protocol.ProverFinished), updated.State)

	b.Reset()
	require.NoError(t, verifier.cmd.Sessions(&b, nil))

	sessions := SessionsResponse{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &sessions))
	require.Len(t, sessions.Sessions, 1)
	require.Equal(t, sent.ThreadID, sessions.Sessions[0].ThreadID)
}

func TestCommand_SendRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newEnv(t, ctrl)

	t.Run("Decode error", func(t *testing.T) {
		var b bytes.Buffer
		requireValidation(t, e.cmd.SendRequest(&b, bytes.NewBufferString("{")))
	})

	t.Run("Empty connection ID", func(t *testing.T) {
		var b bytes.Buffer
		cmdErr := e.cmd.SendRequest(&b, toReader(t, &SendRequestArgs{ProofRequest: addressRequest()}))
		requireValidation(t, cmdErr)
		require.Contains(t, cmdErr.Error(), errEmptyConnectionID)
	})

	t.Run("Empty proof request", func(t *testing.T) {
		var b bytes.Buffer
		cmdErr := e.cmd.SendRequest(&b, toReader(t, &SendRequestArgs{ConnectionID: connID}))
		requireValidation(t, cmdErr)
		require.Contains(t, cmdErr.Error(), errEmptyProofRequest)
	})

	t.Run("Unknown connection", func(t *testing.T) {
		var b bytes.Buffer
		cmdErr := e.cmd.SendRequest(&b, toReader(t, &SendRequestArgs{
			ConnectionID: "unknown",
			ProofRequest: addressRequest(),
		}))
		require.Error(t, cmdErr)
		require.Equal(t, command.ExecuteError, cmdErr.Type())
		require.Equal(t, SendRequestErrorCode, cmdErr.Code())
		require.True(t, errkind.Is(cmdErr, errkind.NotFound))
	})

	t.Run("Transport failure", func(t *testing.T) {
		e.outbox.fail = errors.New("link down")
		defer func() { e.outbox.fail = nil }()

		var b bytes.Buffer
		cmdErr := e.cmd.SendRequest(&b, toReader(t, &SendRequestArgs{
			ConnectionID: connID,
			ProofRequest: addressRequest(),
		}))
		require.Error(t, cmdErr)
		require.Equal(t, SendRequestErrorCode, cmdErr.Code())
		require.True(t, errkind.Is(cmdErr, errkind.TransportError))
		require.Empty(t, e.cmd.Client().Sessions())
	})

	t.Run("Invalid proof request", func(t *testing.T) {
		var b bytes.Buffer
		cmdErr := e.cmd.SendRequest(&b, toReader(t, &SendRequestArgs{
			ConnectionID: connID,
			ProofRequest: &anoncreds.ProofRequest{Name: "empty"},
		}))
		require.Error(t, cmdErr)
		require.Equal(t, command.ExecuteError, cmdErr.Type())
	})
}

func TestCommand_ThreadValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newEnv(t, ctrl)

	execs := map[string]command.Exec{
		VerifyPresentation:   e.cmd.VerifyPresentation,
		UpdateVerifierState:  e.cmd.UpdateVerifierState,
		GetVerifier:          e.cmd.GetVerifier,
		ReleaseVerifier:      e.cmd.ReleaseVerifier,
		ExportVerifier:       e.cmd.ExportVerifier,
		RetrieveCredentials:  e.cmd.RetrieveCredentials,
		GeneratePresentation: e.cmd.GeneratePresentation,
		SendPresentation:     e.cmd.SendPresentation,
		DeclineRequest:       e.cmd.DeclineRequest,
		UpdateProverState:    e.cmd.UpdateProverState,
		GetProver:            e.cmd.GetProver,
		ReleaseProver:        e.cmd.ReleaseProver,
		ExportProver:         e.cmd.ExportProver,
	}

	for name, exec := range execs {
		exec := exec

		t.Run(name+" decode error", func(t *testing.T) {
			var b bytes.Buffer
			requireValidation(t, exec(&b, bytes.NewBufferString("{")))
		})

		t.Run(name+" empty thread ID", func(t *testing.T) {
			var b bytes.Buffer
			cmdErr := exec(&b, bytes.NewBufferString("{}"))
			requireValidation(t, cmdErr)
			require.Contains(t, cmdErr.Error(), errEmptyThreadID)
		})

		t.Run(name+" unknown thread", func(t *testing.T) {
			var b bytes.Buffer
			cmdErr := exec(&b, toReader(t, &ThreadArgs{ThreadID: "unknown"}))
			require.Error(t, cmdErr)
			require.Equal(t, command.ExecuteError, cmdErr.Type())
		})
	}
}

func TestCommand_UpdateStateMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newEnv(t, ctrl)

	t.Run("Malformed message", func(t *testing.T) {
		var b bytes.Buffer
		cmdErr := e.cmd.UpdateVerifierState(&b, bytes.NewBufferString(`{"thread_id":"t","message":{"@id":"1"}}`))
		requireValidation(t, cmdErr)
		require.True(t, errkind.Is(cmdErr, errkind.InvalidMessages))
	})

	t.Run("Unsupported type", func(t *testing.T) {
		var b bytes.Buffer
		cmdErr := e.cmd.UpdateProverState(&b,
			bytes.NewBufferString(`{"thread_id":"t","message":{"@type":"https://didcomm.org/unknown/1.0/x"}}`))
		requireValidation(t, cmdErr)
	})

	t.Run("No message polls the pool", func(t *testing.T) {
		var b bytes.Buffer
		require.NoError(t, e.cmd.SendRequest(&b, toReader(t, &SendRequestArgs{
			ConnectionID: connID,
			ProofRequest: addressRequest(),
		})))

		sent := SendRequestResponse{}
		require.NoError(t, json.Unmarshal(b.Bytes(), &sent))

		b.Reset()
		require.NoError(t, e.cmd.UpdateVerifierState(&b, toReader(t, &UpdateStateArgs{ThreadID: sent.ThreadID})))

		updated := UpdateStateResponse{}
		require.NoError(t, json.Unmarshal(b.Bytes(), &updated))
		require.Equal(t, string(protocol.VerifierRequestSent), updated.State)
	})
}

func TestCommand_DeclineRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	verifier := newEnv(t, ctrl)
	prover := newEnv(t, ctrl)

	var b bytes.Buffer
	require.NoError(t, verifier.cmd.SendRequest(&b, toReader(t, &SendRequestArgs{
		ConnectionID: connID,
		ProofRequest: addressRequest(),
	})))

	req, ok := verifier.outbox.last(t).(*protocol.RequestPresentation)
	require.True(t, ok)

	b.Reset()
	require.NoError(t, prover.cmd.ReceiveRequest(&b, toReader(t, &ReceiveRequestArgs{
		ConnectionID:        connID,
		RequestPresentation: req,
	})))

	received := ThreadResponse{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &received))

	b.Reset()
	require.NoError(t, prover.cmd.DeclineRequest(&b, toReader(t, &DeclineRequestArgs{
		ThreadID: received.ThreadID,
		Reason:   "not today",
	})))

	report, ok := prover.outbox.last(t).(*protocol.ProblemReport)
	require.True(t, ok)
	require.Equal(t, received.ThreadID, report.ThreadID())

	b.Reset()
	require.NoError(t, prover.cmd.GetProver(&b, toReader(t, &ThreadArgs{ThreadID: received.ThreadID})))

	info := ProverResponse{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &info))
	require.Equal(t, protocol.ProverDeclined, info.State)
}

func TestCommand_ReceiveRequestAndProposal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newEnv(t, ctrl)

	t.Run("Receive request validation", func(t *testing.T) {
		var b bytes.Buffer
		requireValidation(t, e.cmd.ReceiveRequest(&b, bytes.NewBufferString("{")))

		cmdErr := e.cmd.ReceiveRequest(&b, toReader(t, &ReceiveRequestArgs{}))
		requireValidation(t, cmdErr)
		require.Contains(t, cmdErr.Error(), errEmptyConnectionID)

		cmdErr = e.cmd.ReceiveRequest(&b, toReader(t, &ReceiveRequestArgs{ConnectionID: connID}))
		requireValidation(t, cmdErr)
		require.Contains(t, cmdErr.Error(), errEmptyRequestPresentation)
	})

	t.Run("Receive request without attachment", func(t *testing.T) {
		var b bytes.Buffer
		cmdErr := e.cmd.ReceiveRequest(&b, toReader(t, &ReceiveRequestArgs{
			ConnectionID:        connID,
			RequestPresentation: &protocol.RequestPresentation{ID: "r-1"},
		}))
		require.Error(t, cmdErr)
		require.Equal(t, ReceiveRequestErrorCode, cmdErr.Code())
	})

	t.Run("Send proposal", func(t *testing.T) {
		var b bytes.Buffer
		requireValidation(t, e.cmd.SendProposal(&b, bytes.NewBufferString("{")))
		requireValidation(t, e.cmd.SendProposal(&b, toReader(t, &SendProposalArgs{})))

		b.Reset()
		require.NoError(t, e.cmd.SendProposal(&b, toReader(t, &SendProposalArgs{
			ConnectionID: connID,
			SourceID:     "proposal",
			PresentationPreview: protocol.PresentationPreview{
				Attributes: []protocol.Attribute{{Name: "address1", CredDefID: credDefID}},
			},
			Comment: "here is what I can show",
		})))

		resp := ThreadResponse{}
		require.NoError(t, json.Unmarshal(b.Bytes(), &resp))

		proposal, ok := e.outbox.last(t).(*protocol.ProposePresentation)
		require.True(t, ok)
		require.Equal(t, resp.ThreadID, proposal.ID)

		b.Reset()
		require.NoError(t, e.cmd.GetProver(&b, toReader(t, &ThreadArgs{ThreadID: resp.ThreadID})))

		info := ProverResponse{}
		require.NoError(t, json.Unmarshal(b.Bytes(), &info))
		require.Equal(t, protocol.ProverProposalSent, info.State)
		require.Nil(t, info.ProofRequest)
	})
}

func TestCommand_ExportImport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newEnv(t, ctrl)

	var b bytes.Buffer
	require.NoError(t, e.cmd.SendRequest(&b, toReader(t, &SendRequestArgs{
		ConnectionID: connID,
		ProofRequest: addressRequest(),
	})))

	sent := SendRequestResponse{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &sent))

	b.Reset()
	require.NoError(t, e.cmd.ExportVerifier(&b, toReader(t, &ThreadArgs{ThreadID: sent.ThreadID})))

	exported := ExportResponse{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &exported))
	require.NotEmpty(t, exported.Data)

	b.Reset()
	require.NoError(t, e.cmd.ReleaseVerifier(&b, toReader(t, &ThreadArgs{ThreadID: sent.ThreadID})))
	require.False(t, e.cmd.Client().VerifierExists(sent.ThreadID))

	t.Run("Import validation", func(t *testing.T) {
		var b bytes.Buffer
		requireValidation(t, e.cmd.ImportVerifier(&b, bytes.NewBufferString("{")))

		cmdErr := e.cmd.ImportVerifier(&b, toReader(t, &ImportArgs{Data: exported.Data}))
		requireValidation(t, cmdErr)
		require.Contains(t, cmdErr.Error(), errEmptyConnectionID)

		cmdErr = e.cmd.ImportProver(&b, toReader(t, &ImportArgs{ConnectionID: connID}))
		requireValidation(t, cmdErr)
		require.Contains(t, cmdErr.Error(), errEmptySessionData)
	})

	t.Run("Import malformed data", func(t *testing.T) {
		var b bytes.Buffer
		cmdErr := e.cmd.ImportProver(&b, toReader(t, &ImportArgs{ConnectionID: connID, Data: "{"}))
		require.Error(t, cmdErr)
		require.Equal(t, ImportErrorCode, cmdErr.Code())
		require.True(t, errkind.Is(cmdErr, errkind.InvalidJSON))
	})

	b.Reset()
	require.NoError(t, e.cmd.ImportVerifier(&b, toReader(t, &ImportArgs{ConnectionID: connID, Data: exported.Data})))

	restored := ThreadResponse{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &restored))
	require.Equal(t, sent.ThreadID, restored.ThreadID)
	require.True(t, e.cmd.Client().VerifierExists(sent.ThreadID))
}
