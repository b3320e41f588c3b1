/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"encoding/json"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
)

// SerializationVersion tags the persisted session form.
const SerializationVersion = "1.0"

type versioned struct {
	Version string          `json:"version"`
	Data    json.RawMessage `json:"data"`
}

type verifierRecord struct {
	SourceID      string                  `json:"source_id"`
	ThreadID      string                  `json:"thread_id"`
	State         VerifierState           `json:"state"`
	Request       *anoncreds.ProofRequest `json:"request"`
	RequestMsg    *RequestPresentation    `json:"request_message,omitempty"`
	Proposal      *ProposePresentation    `json:"proposal,omitempty"`
	Presentation  *Presentation           `json:"presentation,omitempty"`
	Status        VerificationStatus      `json:"verification_status"`
	ProblemReport *ProblemReport          `json:"problem_report,omitempty"`
}

type proverRecord struct {
	SourceID      string                        `json:"source_id"`
	ThreadID      string                        `json:"thread_id"`
	State         ProverState                   `json:"state"`
	Request       *RequestPresentation          `json:"request,omitempty"`
	Proposal      *ProposePresentation          `json:"proposal,omitempty"`
	Presentation  *Presentation                 `json:"presentation,omitempty"`
	Selected      anoncreds.SelectedCredentials `json:"selected_credentials,omitempty"`
	Status        VerificationStatus            `json:"presentation_status"`
	ProblemReport *ProblemReport                `json:"problem_report,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v *Verifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(&verifierRecord{
		SourceID:      v.sourceID,
		ThreadID:      v.threadID,
		State:         v.state,
		Request:       v.request,
		RequestMsg:    v.requestMsg,
		Proposal:      v.proposal,
		Presentation:  v.presentation,
		Status:        v.status,
		ProblemReport: v.problem,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Verifier) UnmarshalJSON(data []byte) error {
	var r verifierRecord

	if err := json.Unmarshal(data, &r); err != nil {
		return errkind.Wrap(err, errkind.InvalidJSON, "decode verifier")
	}

	if !r.State.known() || !r.Status.known() || r.Request == nil {
		return errkind.New(errkind.InvalidJSON, "verifier record is incomplete: state [%s] status [%s]",
			r.State, r.Status)
	}

	*v = Verifier{
		sourceID:     r.SourceID,
		threadID:     r.ThreadID,
		state:        r.State,
		request:      r.Request,
		requestMsg:   r.RequestMsg,
		proposal:     r.Proposal,
		presentation: r.Presentation,
		status:       r.Status,
		problem:      r.ProblemReport,
	}

	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *Prover) MarshalJSON() ([]byte, error) {
	return json.Marshal(&proverRecord{
		SourceID:      p.sourceID,
		ThreadID:      p.threadID,
		State:         p.state,
		Request:       p.request,
		Proposal:      p.proposal,
		Presentation:  p.presentation,
		Selected:      p.selected,
		Status:        p.status,
		ProblemReport: p.problem,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Prover) UnmarshalJSON(data []byte) error {
	var r proverRecord

	if err := json.Unmarshal(data, &r); err != nil {
		return errkind.Wrap(err, errkind.InvalidJSON, "decode prover")
	}

	if !r.State.known() || !r.Status.known() || r.ThreadID == "" {
		return errkind.New(errkind.InvalidJSON, "prover record is incomplete: state [%s] status [%s]",
			r.State, r.Status)
	}

	*p = Prover{
		sourceID:     r.SourceID,
		threadID:     r.ThreadID,
		state:        r.State,
		request:      r.Request,
		proposal:     r.Proposal,
		presentation: r.Presentation,
		selected:     r.Selected,
		status:       r.Status,
		problem:      r.ProblemReport,
	}

	return nil
}

func toString(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errkind.Wrap(err, errkind.InvalidJSON, "encode session")
	}

	out, err := json.Marshal(&versioned{Version: SerializationVersion, Data: data})
	if err != nil {
		return "", errkind.Wrap(err, errkind.InvalidJSON, "encode session")
	}

	return string(out), nil
}

func fromString(s string, v interface{}) error {
	var env versioned

	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return errkind.Wrap(err, errkind.InvalidJSON, "decode session")
	}

	if env.Version != SerializationVersion {
		return errkind.New(errkind.InvalidJSON, "unsupported session version [%s]", env.Version)
	}

	if len(env.Data) == 0 {
		return errkind.New(errkind.InvalidJSON, "session has no data")
	}

	return json.Unmarshal(env.Data, v)
}

// ToString serializes the verifier to its versioned persisted form.
func (v *Verifier) ToString() (string, error) {
	return toString(v)
}

// VerifierFromString restores a verifier serialized with ToString.
func VerifierFromString(s string) (*Verifier, error) {
	v := &Verifier{}

	if err := fromString(s, v); err != nil {
		return nil, asInvalidJSON(err)
	}

	return v, nil
}

// ToString serializes the prover to its versioned persisted form.
func (p *Prover) ToString() (string, error) {
	return toString(p)
}

// ProverFromString restores a prover serialized with ToString.
func ProverFromString(s string) (*Prover, error) {
	p := &Prover{}

	if err := fromString(s, p); err != nil {
		return nil, asInvalidJSON(err)
	}

	return p, nil
}

func asInvalidJSON(err error) error {
	if errkind.KindOf(err) == errkind.InvalidJSON {
		return err
	}

	return errkind.Wrap(err, errkind.InvalidJSON, "decode session")
}
