/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package errkind classifies present-proof engine failures so call sites can branch on what went wrong
// without matching error strings.
package errkind

import (
	"errors"
	"fmt"
)

// Kind is the failure category of an engine error.
type Kind string

const (
	// Unknown is reported by KindOf for errors that carry no kind.
	Unknown Kind = "unknown"
	// NotFound means the key, thread id or connection is not known.
	NotFound Kind = "not-found"
	// InvalidHandle means a legacy numeric handle is unknown or was released.
	InvalidHandle Kind = "invalid-handle"
	// InvalidState means the operation is illegal in the current protocol state.
	InvalidState Kind = "invalid-state"
	// InvalidJSON means a payload or persisted session could not be decoded.
	InvalidJSON Kind = "invalid-json"
	// InvalidMessages means an inbound message is of an unexpected kind or belongs to another thread.
	InvalidMessages Kind = "invalid-messages"
	// InvalidProofRequest means the presentation request is structurally invalid.
	InvalidProofRequest Kind = "invalid-proof-request"
	// InvalidAttributesStructure means requested attributes or predicates are malformed.
	InvalidAttributesStructure Kind = "invalid-attributes-structure"
	// TransportError means the outbound message could not be delivered.
	TransportError Kind = "transport-error"
	// CredentialGatewayError means the credential system or ledger failed to serve a transition.
	CredentialGatewayError Kind = "credential-gateway-error"
	// InvalidOption means a caller-supplied argument is missing or malformed.
	InvalidOption Kind = "invalid-option"
)

// Error is an engine error tagged with its Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}

	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind && t.Msg == "" && t.Err == nil
}

// New returns an error of the given kind.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags err with kind. A nil err yields nil.
func Wrap(err error, kind Kind, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}
