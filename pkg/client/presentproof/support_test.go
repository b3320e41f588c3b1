/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	"github.com/hyperledger/aries-proof-go/pkg/anoncreds/wallet"
	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/presentproof"
	mockanoncreds "github.com/hyperledger/aries-proof-go/pkg/mock/anoncreds"
)

const (
	issuerDID = "NcYxiDXkpYi6ov5FcYDi1e"
	schemaID  = issuerDID + ":2:address:1.0"
	credDefID = issuerDID + ":3:CL:1:tag"

	verifierConn = "verifier-to-prover"
	proverConn   = "prover-to-verifier"
)

// wire connects two parties in memory: a message sent on one connection lands in the pool of its peer.
type wire struct {
	mu    sync.Mutex
	seq   int
	peers map[string]string
	pools map[string]map[string]presentproof.Message
	down  map[string]bool
}

func newWire() *wire {
	return &wire{
		peers: map[string]string{verifierConn: proverConn, proverConn: verifierConn},
		pools: map[string]map[string]presentproof.Message{verifierConn: {}, proverConn: {}},
		down:  map[string]bool{},
	}
}

func (w *wire) Sender(_ context.Context, connectionID string) (presentproof.SendFunc, error) {
	peer, ok := w.peers[connectionID]
	if !ok {
		return nil, errkind.New(errkind.NotFound, "connection %s", connectionID)
	}

	return func(ctx context.Context, msg presentproof.Message) error {
		w.mu.Lock()
		defer w.mu.Unlock()

		if w.down[connectionID] {
			return fmt.Errorf("connection %s is down", connectionID)
		}

		w.seq++
		w.pools[peer][fmt.Sprintf("msg-%04d", w.seq)] = msg

		return nil
	}, nil
}

func (w *wire) Messages(_ context.Context, connectionID string) (map[string]presentproof.Message, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := map[string]presentproof.Message{}
	for k, v := range w.pools[connectionID] {
		out[k] = v
	}

	return out, nil
}

func (w *wire) MarkReviewed(_ context.Context, connectionID, messageID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.pools[connectionID], messageID)

	return nil
}

func (w *wire) pending(connectionID string) []presentproof.Message {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []presentproof.Message
	for _, m := range w.pools[connectionID] {
		out = append(out, m)
	}

	return out
}

// inject places msg in the pool of connectionID under id, bypassing any sender.
func (w *wire) inject(connectionID, id string, msg presentproof.Message) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pools[connectionID][id] = msg
}

func (w *wire) setDown(connectionID string, down bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.down[connectionID] = down
}

type testProvider struct {
	connections ConnectionLookup
	messages    MessagePool
	ledger      anoncreds.LedgerRead
	gateway     anoncreds.Gateway
	wallet      anoncreds.Wallet
}

func (p *testProvider) Connections() ConnectionLookup { return p.connections }
func (p *testProvider) Messages() MessagePool         { return p.messages }
func (p *testProvider) Ledger() anoncreds.LedgerRead  { return p.ledger }
func (p *testProvider) Gateway() anoncreds.Gateway    { return p.gateway }
func (p *testProvider) Wallet() anoncreds.Wallet      { return p.wallet }

// parties is a verifier client and a prover client sharing one ledger and credential system.
type parties struct {
	wire     *wire
	ledger   *mockanoncreds.Ledger
	gateway  *mockanoncreds.Gateway
	wallet   *wallet.StoreWallet
	verifier *Client
	prover   *Client
}

func newParties(t *testing.T, opts ...Opt) *parties {
	t.Helper()

	l := mockanoncreds.NewLedger()
	l.AddSchema(&anoncreds.Schema{ID: schemaID, Name: "address", Version: "1.0",
		AttrNames: []string{"address1", "address2", "zip"}})
	l.AddCredDef(&anoncreds.CredentialDefinition{ID: credDefID, SchemaID: schemaID,
		Value: json.RawMessage(`{"primary":{}}`)})

	g, err := mockanoncreds.NewGateway(l, []byte("client-test-key"))
	require.NoError(t, err)

	w, err := wallet.New(mem.NewProvider())
	require.NoError(t, err)

	wr := newWire()
	p := &testProvider{connections: wr, messages: wr, ledger: l, gateway: g, wallet: w}

	verifier, err := New(p, opts...)
	require.NoError(t, err)

	prover, err := New(p, opts...)
	require.NoError(t, err)

	return &parties{wire: wr, ledger: l, gateway: g, wallet: w, verifier: verifier, prover: prover}
}

func (ps *parties) issueAddress(t *testing.T) anoncreds.CredentialInfo {
	t.Helper()

	info := anoncreds.CredentialInfo{
		Attrs:     map[string]string{"address1": "101 Tela Lane", "address2": "Suite 2", "zip": "87121"},
		SchemaID:  schemaID,
		CredDefID: credDefID,
	}

	ref, err := ps.gateway.IssueCredential(context.Background(), ps.wallet, info)
	require.NoError(t, err)

	info.Referent = ref

	return info
}

func addressRequest() anoncreds.ProofRequest {
	return anoncreds.ProofRequest{
		Name: "address",
		RequestedAttributes: map[string]anoncreds.AttrInfo{
			"addr": {Name: "address1"},
		},
		RequestedPredicates: map[string]anoncreds.PredicateInfo{
			"zip_gt": {Name: "zip", PType: ">", PValue: 80000},
		},
	}
}

// receiveRequest hands the request waiting in the prover's pool to the prover client.
func (ps *parties) receiveRequest(t *testing.T) string {
	t.Helper()

	pending := ps.wire.pending(proverConn)
	require.Len(t, pending, 1)

	req, ok := pending[0].(*presentproof.RequestPresentation)
	require.True(t, ok)

	threadID, err := ps.prover.ReceiveProofRequest(context.Background(), proverConn, "address", req)
	require.NoError(t, err)

	require.NoError(t, ps.wire.MarkReviewed(context.Background(), proverConn, firstKey(ps.wire, proverConn)))

	return threadID
}

func firstKey(w *wire, connectionID string) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	for k := range w.pools[connectionID] {
		return k
	}

	return ""
}

func selectAll(t *testing.T, set *anoncreds.CandidateSet) anoncreds.SelectedCredentials {
	t.Helper()

	selected := anoncreds.SelectedCredentials{}

	for referent, candidates := range set.Attrs {
		require.NotEmpty(t, candidates, referent)
		selected[referent] = anoncreds.SelectedCredential{Credential: candidates[0], Revealed: true}
	}

	for referent, candidates := range set.Predicates {
		require.NotEmpty(t, candidates, referent)
		selected[referent] = anoncreds.SelectedCredential{Credential: candidates[0]}
	}

	return selected
}
