/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"strings"

	"github.com/hyperledger/aries-framework-go/component/log"
)

var logger = log.New("aries-framework/presentproof/service")

const (
	// Name defines the protocol name.
	Name = "present-proof"
	// Spec defines the protocol spec.
	Spec = "https://didcomm.org/present-proof/1.0/"
	// ProposePresentationMsgType defines the protocol propose-presentation message type.
	ProposePresentationMsgType = Spec + "propose-presentation"
	// RequestPresentationMsgType defines the protocol request-presentation message type.
	RequestPresentationMsgType = Spec + "request-presentation"
	// PresentationMsgType defines the protocol presentation message type.
	PresentationMsgType = Spec + "presentation"
	// AckMsgType defines the protocol ack message type.
	AckMsgType = Spec + "ack"
	// ProblemReportMsgType defines the protocol problem-report message type.
	ProblemReportMsgType = Spec + "problem-report"
	// PresentationPreviewMsgType defines the protocol presentation-preview inner object type.
	PresentationPreviewMsgType = Spec + "presentation-preview"

	// NotificationAckMsgType is the generic notification ack peers may answer with.
	NotificationAckMsgType = "https://didcomm.org/notification/1.0/ack"
	// NotificationProblemReportMsgType is the generic notification problem report.
	NotificationProblemReportMsgType = "https://didcomm.org/notification/1.0/problem-report"
	// ReportProblemMsgType is the report-problem protocol problem report.
	ReportProblemMsgType = "https://didcomm.org/report-problem/1.0/problem-report"

	legacyPrefix  = "did:sov:BzCbsNYhMrjHiqZDTUASHg;spec/"
	didcommPrefix = "https://didcomm.org/"

	requestAttachID      = "libindy-request-presentation-0"
	presentationAttachID = "libindy-presentation-0"
	attachMimeType       = "application/json"

	// problem report codes.
	codeInvalidPresentation = "invalid-presentation"
	codeRejected            = "rejected"
)

// kindByType maps every accepted @type to its message kind.
var kindByType = map[string]Kind{
	ProposePresentationMsgType:       KindProposePresentation,
	RequestPresentationMsgType:       KindRequestPresentation,
	PresentationMsgType:              KindPresentation,
	AckMsgType:                       KindAck,
	NotificationAckMsgType:           KindAck,
	ProblemReportMsgType:             KindProblemReport,
	NotificationProblemReportMsgType: KindProblemReport,
	ReportProblemMsgType:             KindProblemReport,
}

// normalizeType rewrites legacy did:sov message type prefixes to the didcomm.org form.
func normalizeType(t string) string {
	if strings.HasPrefix(t, legacyPrefix) {
		return didcommPrefix + strings.TrimPrefix(t, legacyPrefix)
	}

	return t
}
