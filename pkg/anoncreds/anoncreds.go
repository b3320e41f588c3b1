/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package anoncreds defines the capability interfaces the present-proof engine needs from the anonymous
// credential system, the ledger and the wallet, together with the Indy-style data shapes exchanged with them.
//
// The engine never does proof math itself: it resolves ledger objects, hands them to a Gateway and acts on
// the outcome.
package anoncreds

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned by Wallet implementations when a record does not exist.
var ErrRecordNotFound = errors.New("wallet record not found")

// Wallet is the storage capability used by the credential system to keep holder credentials.
type Wallet interface {
	AddRecord(ctx context.Context, recordType, id string, value []byte, tags map[string]string) error
	GetRecord(ctx context.Context, recordType, id string) ([]byte, error)
	// SearchRecords returns every record of recordType, keyed by record id.
	SearchRecords(ctx context.Context, recordType string) (map[string][]byte, error)
	DeleteRecord(ctx context.Context, recordType, id string) error
}

// LedgerRead resolves published objects. Results must be deterministic for identical arguments.
type LedgerRead interface {
	GetSchema(ctx context.Context, id string) (*Schema, error)
	GetCredDef(ctx context.Context, id string) (*CredentialDefinition, error)
	GetRevRegDef(ctx context.Context, id string) (*RevocationRegistryDefinition, error)
	// GetRevRegDelta returns the accumulated revocation changes of a registry in the window [from, to].
	// A nil to means "latest".
	GetRevRegDelta(ctx context.Context, id string, from, to *uint64) (*RevocationDelta, error)
}

// Gateway is the anonymous credential system. Any error it returns fails the calling transition.
type Gateway interface {
	RetrieveCandidateCredentials(ctx context.Context, w Wallet, req *ProofRequest) (*CandidateSet, error)
	ConstructPresentation(ctx context.Context, w Wallet, in *PresentationInputs) (*Proof, error)
	// VerifyPresentation returns false, not an error, for a proof that does not verify.
	VerifyPresentation(ctx context.Context, in *VerificationInputs) (bool, error)
	ComputeRevocationDelta(ctx context.Context, registryID string, from, to *uint64) (*RevocationDelta, error)
}

// PresentationInputs is everything needed to build a presentation.
type PresentationInputs struct {
	Request      *ProofRequest
	Selected     SelectedCredentials
	SelfAttested map[string]string
	Schemas      map[string]*Schema
	CredDefs     map[string]*CredentialDefinition
	// RevStates holds, per revocation registry, the delta the non-revocation proof is pinned to.
	RevStates map[string]*RevocationDelta
}

// VerificationInputs is everything needed to check a presentation.
type VerificationInputs struct {
	Request    *ProofRequest
	Proof      *Proof
	Schemas    map[string]*Schema
	CredDefs   map[string]*CredentialDefinition
	RevRegDefs map[string]*RevocationRegistryDefinition
	// RevRegs maps registry id to timestamp to the registry state at that timestamp.
	RevRegs map[string]map[uint64]*RevocationDelta
}
