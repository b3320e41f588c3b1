/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type threadRule int

const (
	// the message may omit ~thread; when present it must match.
	threadOptional threadRule = iota
	// the message must carry the session's thread id.
	threadRequired
)

// rule admits one message kind in a given state.
type rule struct {
	kind   Kind
	thread threadRule
}

func (r rule) threadMatches(msg Message, threadID string) bool {
	got := msg.ThreadID()
	if got == "" {
		return r.thread == threadOptional
	}

	return got == threadID
}

// Inbound messages legal per state. States absent from the table accept nothing.
var (
	proverRules = map[ProverState][]rule{
		ProverProposalSent: {
			{kind: KindRequestPresentation, thread: threadOptional},
			{kind: KindProblemReport, thread: threadOptional},
		},
		ProverPresentationSent: {
			{kind: KindAck, thread: threadRequired},
			{kind: KindProblemReport, thread: threadOptional},
		},
	}

	verifierRules = map[VerifierState][]rule{
		VerifierRequestSent: {
			{kind: KindPresentation, thread: threadRequired},
			{kind: KindProposePresentation, thread: threadRequired},
			{kind: KindProblemReport, thread: threadOptional},
		},
	}
)

func ruleFor(rules []rule, k Kind) (rule, bool) {
	for _, r := range rules {
		if r.kind == k {
			return r, true
		}
	}

	return rule{}, false
}

// match walks the pool in ascending id order and returns the first message admitted by rules.
func match(rules []rule, threadID string, pool map[string]Message) (string, Message, bool) {
	if len(rules) == 0 {
		return "", nil, false
	}

	ids := maps.Keys(pool)
	slices.Sort(ids)

	for _, id := range ids {
		msg := pool[id]
		if msg == nil {
			continue
		}

		r, ok := ruleFor(rules, msg.Kind())
		if ok && r.threadMatches(msg, threadID) {
			return id, msg, true
		}
	}

	return "", nil, false
}

// FindProverMessage selects the pending message that legally advances p, if any.
// Candidates are considered in ascending message-id order.
func FindProverMessage(p *Prover, pool map[string]Message) (string, Message, bool) {
	return match(proverRules[p.State()], p.ThreadID(), pool)
}

// FindVerifierMessage selects the pending message that legally advances v, if any.
// Candidates are considered in ascending message-id order.
func FindVerifierMessage(v *Verifier, pool map[string]Message) (string, Message, bool) {
	return match(verifierRules[v.State()], v.ThreadID(), pool)
}
