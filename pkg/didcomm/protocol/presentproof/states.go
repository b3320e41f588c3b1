/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

// VerifierState is the state of a verifier session.
type VerifierState string

const (
	// VerifierRequestSet means the request is built but not sent yet.
	VerifierRequestSet VerifierState = "request-set"
	// VerifierRequestSent means the request was sent and a presentation is awaited.
	VerifierRequestSent VerifierState = "request-sent"
	// VerifierPresentationReceived means a presentation arrived but was not verified yet.
	VerifierPresentationReceived VerifierState = "presentation-received"
	// VerifierFinished means the presentation was verified, successfully or not.
	VerifierFinished VerifierState = "finished"
	// VerifierFailed means the prover reported a problem.
	VerifierFailed VerifierState = "failed"
)

// ProverState is the state of a prover session.
type ProverState string

const (
	// ProverProposalSent means a proposal was sent and a request is awaited.
	ProverProposalSent ProverState = "proposal-sent"
	// ProverRequestReceived means a request is held and can be answered.
	ProverRequestReceived ProverState = "request-received"
	// ProverPresentationPrepared means the presentation is built but not sent yet.
	ProverPresentationPrepared ProverState = "presentation-prepared"
	// ProverPresentationSent means the presentation was sent and an ack is awaited.
	ProverPresentationSent ProverState = "presentation-sent"
	// ProverFinished means the verifier acknowledged the presentation.
	ProverFinished ProverState = "finished"
	// ProverFailed means the verifier reported a problem.
	ProverFailed ProverState = "failed"
	// ProverDeclined means the prover declined the request.
	ProverDeclined ProverState = "declined"
)

// VerificationStatus is the outcome of verifying a presentation.
type VerificationStatus string

const (
	// StatusUnverified means no verification outcome is known.
	StatusUnverified VerificationStatus = "unverified"
	// StatusValid means the presentation verified.
	StatusValid VerificationStatus = "valid"
	// StatusInvalid means the presentation did not verify.
	StatusInvalid VerificationStatus = "invalid"
)

var verifierTransitions = map[VerifierState][]VerifierState{
	VerifierRequestSet:           {VerifierRequestSent},
	VerifierRequestSent:          {VerifierPresentationReceived, VerifierRequestSet, VerifierFinished, VerifierFailed},
	VerifierPresentationReceived: {VerifierFinished},
}

var proverTransitions = map[ProverState][]ProverState{
	ProverProposalSent:         {ProverRequestReceived, ProverFailed, ProverDeclined},
	ProverRequestReceived:      {ProverPresentationPrepared, ProverDeclined},
	ProverPresentationPrepared: {ProverPresentationSent, ProverDeclined},
	ProverPresentationSent:     {ProverFinished, ProverFailed},
}

// CanTransitionTo reports whether next may follow s.
func (s VerifierState) CanTransitionTo(next VerifierState) bool {
	for _, st := range verifierTransitions[s] {
		if st == next {
			return true
		}
	}

	return false
}

// Terminal reports whether no further transition is possible.
func (s VerifierState) Terminal() bool {
	return len(verifierTransitions[s]) == 0
}

func (s VerifierState) known() bool {
	switch s {
	case VerifierRequestSet, VerifierRequestSent, VerifierPresentationReceived, VerifierFinished, VerifierFailed:
		return true
	}

	return false
}

// CanTransitionTo reports whether next may follow s.
func (s ProverState) CanTransitionTo(next ProverState) bool {
	for _, st := range proverTransitions[s] {
		if st == next {
			return true
		}
	}

	return false
}

// Terminal reports whether no further transition is possible.
func (s ProverState) Terminal() bool {
	return len(proverTransitions[s]) == 0
}

func (s ProverState) known() bool {
	switch s {
	case ProverProposalSent, ProverRequestReceived, ProverPresentationPrepared, ProverPresentationSent,
		ProverFinished, ProverFailed, ProverDeclined:
		return true
	}

	return false
}

func (s VerificationStatus) known() bool {
	return s == StatusUnverified || s == StatusValid || s == StatusInvalid
}
