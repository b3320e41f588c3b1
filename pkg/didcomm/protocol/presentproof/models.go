/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"context"

	"github.com/hyperledger/aries-proof-go/pkg/didcomm/common/model"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/decorator"
)

// Kind is the closed set of present-proof message variants.
type Kind int

const (
	// KindUnknown is never produced by ParseMessage.
	KindUnknown Kind = iota
	// KindProposePresentation is a propose-presentation message.
	KindProposePresentation
	// KindRequestPresentation is a request-presentation message.
	KindRequestPresentation
	// KindPresentation is a presentation message.
	KindPresentation
	// KindAck is an acknowledgement.
	KindAck
	// KindProblemReport is a problem report.
	KindProblemReport
)

func (k Kind) String() string {
	switch k {
	case KindProposePresentation:
		return "propose-presentation"
	case KindRequestPresentation:
		return "request-presentation"
	case KindPresentation:
		return "presentation"
	case KindAck:
		return "ack"
	case KindProblemReport:
		return "problem-report"
	default:
		return "unknown"
	}
}

// Message is a present-proof protocol message.
type Message interface {
	Kind() Kind
	// MessageID returns the @id.
	MessageID() string
	// ThreadID returns the ~thread.thid, or "" when the message carries none.
	ThreadID() string
}

// SendFunc delivers msg to the peer of one connection.
type SendFunc func(ctx context.Context, msg Message) error

func threadOf(t *decorator.Thread) string {
	if t == nil {
		return ""
	}

	return t.ID
}

// ProposePresentation is an optional message sent by the Prover to the verifier to initiate a proof
// presentation process, or in response to a request-presentation message when the Prover wants to
// propose a different presentation.
type ProposePresentation struct {
	Type string `json:"@type,omitempty"`
	ID   string `json:"@id,omitempty"`
	// Comment is a field that provides some human readable information about the proposed presentation.
	Comment string `json:"comment,omitempty"`
	// PresentationProposal is the preview of what the Prover is willing to present.
	PresentationProposal PresentationPreview `json:"presentation_proposal"`
	Thread               *decorator.Thread   `json:"~thread,omitempty"`
}

// Kind implements Message.
func (m *ProposePresentation) Kind() Kind { return KindProposePresentation }

// MessageID implements Message.
func (m *ProposePresentation) MessageID() string { return m.ID }

// ThreadID implements Message.
func (m *ProposePresentation) ThreadID() string { return threadOf(m.Thread) }

// RequestPresentation describes values that need to be revealed and predicates that need to be fulfilled.
type RequestPresentation struct {
	Type    string `json:"@type,omitempty"`
	ID      string `json:"@id,omitempty"`
	Comment string `json:"comment,omitempty"`
	// RequestPresentations holds the Indy proof request as an attachment.
	RequestPresentations []decorator.Attachment `json:"request_presentations~attach"`
	Thread               *decorator.Thread      `json:"~thread,omitempty"`
}

// Kind implements Message.
func (m *RequestPresentation) Kind() Kind { return KindRequestPresentation }

// MessageID implements Message.
func (m *RequestPresentation) MessageID() string { return m.ID }

// ThreadID implements Message.
func (m *RequestPresentation) ThreadID() string { return threadOf(m.Thread) }

// Presentation is a response to a RequestPresentation message and carries the proof.
type Presentation struct {
	Type    string `json:"@type,omitempty"`
	ID      string `json:"@id,omitempty"`
	Comment string `json:"comment,omitempty"`
	// Presentations holds the Indy proof as an attachment.
	Presentations []decorator.Attachment `json:"presentations~attach"`
	Thread        *decorator.Thread      `json:"~thread,omitempty"`
	PleaseAck     *decorator.PleaseAck   `json:"~please_ack,omitempty"`
}

// Kind implements Message.
func (m *Presentation) Kind() Kind { return KindPresentation }

// MessageID implements Message.
func (m *Presentation) MessageID() string { return m.ID }

// ThreadID implements Message.
func (m *Presentation) ThreadID() string { return threadOf(m.Thread) }

// Ack acknowledges a presentation.
type Ack model.Ack

// Kind implements Message.
func (m *Ack) Kind() Kind { return KindAck }

// MessageID implements Message.
func (m *Ack) MessageID() string { return m.ID }

// ThreadID implements Message.
func (m *Ack) ThreadID() string { return threadOf(m.Thread) }

// ProblemReport signals abnormal termination of the conversation.
type ProblemReport model.ProblemReport

// Kind implements Message.
func (m *ProblemReport) Kind() Kind { return KindProblemReport }

// MessageID implements Message.
func (m *ProblemReport) MessageID() string { return m.ID }

// ThreadID implements Message.
func (m *ProblemReport) ThreadID() string { return threadOf(m.Thread) }

// PresentationPreview is used to construct a preview of the data for the presentation.
type PresentationPreview struct {
	Type       string      `json:"@type,omitempty"`
	Attributes []Attribute `json:"attributes"`
	Predicates []Predicate `json:"predicates"`
}

// Attribute describes an attribute for the PresentationPreview.
type Attribute struct {
	Name      string `json:"name"`
	CredDefID string `json:"cred_def_id,omitempty"`
	MimeType  string `json:"mime-type,omitempty"`
	Value     string `json:"value,omitempty"`
	Referent  string `json:"referent,omitempty"`
}

// Predicate describes a predicate for the PresentationPreview.
type Predicate struct {
	Name      string `json:"name"`
	CredDefID string `json:"cred_def_id,omitempty"`
	Predicate string `json:"predicate"`
	Threshold int64  `json:"threshold"`
}
