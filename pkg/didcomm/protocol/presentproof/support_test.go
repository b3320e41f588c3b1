/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/decorator"
)

const (
	schemaID  = "NcYxiDXkpYi6ov5FcYDi1e:2:gvt:1.0"
	credDefID = "NcYxiDXkpYi6ov5FcYDi1e:3:CL:1:tag"
	revRegID  = "NcYxiDXkpYi6ov5FcYDi1e:4:" + credDefID + ":CL_ACCUM:tag1"
)

func addressRequest() anoncreds.ProofRequest {
	return anoncreds.ProofRequest{
		Nonce: "123432421212",
		Name:  "proof_req_1",
		RequestedAttributes: map[string]anoncreds.AttrInfo{
			"addr": {Name: "address1"},
		},
		RequestedPredicates: map[string]anoncreds.PredicateInfo{},
	}
}

func addressProof() *anoncreds.Proof {
	return &anoncreds.Proof{
		Proof: json.RawMessage(`{"digest":"abc"}`),
		RequestedProof: anoncreds.RequestedProof{
			RevealedAttrs: map[string]anoncreds.RevealedAttr{
				"addr": {SubProofIndex: 0, Raw: "101 Tela Lane", Encoded: "1139481716457488690172217916278103335"},
			},
		},
		Identifiers: []anoncreds.Identifier{{SchemaID: schemaID, CredDefID: credDefID}},
	}
}

func presentationMessage(t *testing.T, threadID string, proof *anoncreds.Proof) *Presentation {
	t.Helper()

	raw, err := json.Marshal(proof)
	require.NoError(t, err)

	p := &Presentation{
		Type: PresentationMsgType,
		ID:   "presentation-1",
		Presentations: []decorator.Attachment{
			decorator.NewBase64Attachment(presentationAttachID, attachMimeType, raw),
		},
	}

	if threadID != "" {
		p.Thread = &decorator.Thread{ID: threadID}
	}

	return p
}

func requestMessage(id, rawRequest string) *RequestPresentation {
	return &RequestPresentation{
		Type: RequestPresentationMsgType,
		ID:   id,
		RequestPresentations: []decorator.Attachment{
			decorator.NewBase64Attachment(requestAttachID, attachMimeType, []byte(rawRequest)),
		},
	}
}

func addressRequestJSON(t *testing.T) string {
	t.Helper()

	raw, err := json.Marshal(addressRequest())
	require.NoError(t, err)

	return string(raw)
}

func ackFor(threadID string) *Ack {
	a := &Ack{Type: AckMsgType, ID: "ack-1", Status: "OK"}
	if threadID != "" {
		a.Thread = &decorator.Thread{ID: threadID}
	}

	return a
}

func problemReportFor(threadID string) *ProblemReport {
	r := &ProblemReport{Type: ProblemReportMsgType, ID: "pr-1"}
	r.Description.Code = "abandoned"

	if threadID != "" {
		r.Thread = &decorator.Thread{ID: threadID}
	}

	return r
}
