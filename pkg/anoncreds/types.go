/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// ProofRequest is an Indy presentation request.
type ProofRequest struct {
	Name                string                   `json:"name"`
	Version             string                   `json:"version"`
	Nonce               string                   `json:"nonce"`
	RequestedAttributes map[string]AttrInfo      `json:"requested_attributes"`
	RequestedPredicates map[string]PredicateInfo `json:"requested_predicates"`
	NonRevoked          *NonRevokedInterval      `json:"non_revoked,omitempty"`
	Ver                 string                   `json:"ver,omitempty"`
}

// AttrInfo describes one requested attribute, or a group of attributes that must come from one credential.
type AttrInfo struct {
	Name         string              `json:"name,omitempty"`
	Names        []string            `json:"names,omitempty"`
	Restrictions []Restriction       `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
}

// AttrNames returns the attribute names this entry asks for.
func (a AttrInfo) AttrNames() []string {
	if a.Name != "" {
		return []string{a.Name}
	}

	return a.Names
}

// PredicateInfo describes one requested predicate.
type PredicateInfo struct {
	Name         string              `json:"name"`
	PType        string              `json:"p_type"`
	PValue       int32               `json:"p_value"`
	Restrictions []Restriction       `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
}

// Restriction limits which credentials may satisfy a referent. Empty fields match anything.
type Restriction struct {
	SchemaID        string `json:"schema_id,omitempty"`
	SchemaIssuerDID string `json:"schema_issuer_did,omitempty"`
	SchemaName      string `json:"schema_name,omitempty"`
	SchemaVersion   string `json:"schema_version,omitempty"`
	IssuerDID       string `json:"issuer_did,omitempty"`
	CredDefID       string `json:"cred_def_id,omitempty"`
}

// NonRevokedInterval bounds the time window a non-revocation proof must cover.
type NonRevokedInterval struct {
	From *uint64 `json:"from,omitempty"`
	To   *uint64 `json:"to,omitempty"`
}

// CredentialInfo is the holder-side view of a stored credential.
type CredentialInfo struct {
	Referent  string            `json:"referent"`
	Attrs     map[string]string `json:"attrs"`
	SchemaID  string            `json:"schema_id"`
	CredDefID string            `json:"cred_def_id"`
	RevRegID  string            `json:"rev_reg_id,omitempty"`
	CredRevID string            `json:"cred_rev_id,omitempty"`
}

// Candidate is a credential able to satisfy a referent.
type Candidate struct {
	CredInfo CredentialInfo      `json:"cred_info"`
	Interval *NonRevokedInterval `json:"interval,omitempty"`
}

// CandidateSet lists, per referent, the credentials that could satisfy it.
type CandidateSet struct {
	Attrs      map[string][]Candidate `json:"attrs"`
	Predicates map[string][]Candidate `json:"predicates"`
}

// SelectedCredential is the holder's choice for one referent.
type SelectedCredential struct {
	Credential Candidate `json:"credential"`
	// Revealed is only meaningful for attribute referents.
	Revealed bool `json:"revealed"`
}

// SelectedCredentials maps referent to the chosen credential.
type SelectedCredentials map[string]SelectedCredential

// Proof is a presentation produced by the credential system.
type Proof struct {
	Proof          json.RawMessage `json:"proof"`
	RequestedProof RequestedProof  `json:"requested_proof"`
	Identifiers    []Identifier    `json:"identifiers"`
}

// RequestedProof maps referents to the sub-proofs answering them.
type RequestedProof struct {
	RevealedAttrs map[string]RevealedAttr `json:"revealed_attrs"`
	// RevealedAttrGroups answers requested attributes asked for by "names".
	RevealedAttrGroups map[string]RevealedAttrGroup `json:"revealed_attr_groups,omitempty"`
	SelfAttestedAttrs  map[string]string            `json:"self_attested_attrs"`
	UnrevealedAttrs    map[string]SubProofRef       `json:"unrevealed_attrs"`
	Predicates         map[string]SubProofRef       `json:"predicates"`
}

// RevealedAttr is a disclosed attribute value.
type RevealedAttr struct {
	SubProofIndex int    `json:"sub_proof_index"`
	Raw           string `json:"raw"`
	Encoded       string `json:"encoded"`
}

// RevealedAttrGroup holds several attributes revealed from one credential.
type RevealedAttrGroup struct {
	SubProofIndex int                     `json:"sub_proof_index"`
	Values        map[string]AttrEncoding `json:"values"`
}

// AttrEncoding is the raw and encoded value of one attribute.
type AttrEncoding struct {
	Raw     string `json:"raw"`
	Encoded string `json:"encoded"`
}

// SubProofRef points at the sub-proof answering a referent.
type SubProofRef struct {
	SubProofIndex int `json:"sub_proof_index"`
}

// Identifier names the ledger objects a sub-proof was built against.
type Identifier struct {
	SchemaID  string  `json:"schema_id"`
	CredDefID string  `json:"cred_def_id"`
	RevRegID  string  `json:"rev_reg_id,omitempty"`
	Timestamp *uint64 `json:"timestamp,omitempty"`
}

// Schema is a published credential schema.
type Schema struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	AttrNames []string `json:"attrNames"`
	SeqNo     int      `json:"seqNo,omitempty"`
	Ver       string   `json:"ver"`
}

// CredentialDefinition is a published issuer key set for a schema.
type CredentialDefinition struct {
	ID       string          `json:"id"`
	SchemaID string          `json:"schemaId"`
	Type     string          `json:"type"`
	Tag      string          `json:"tag"`
	Value    json.RawMessage `json:"value"`
	Ver      string          `json:"ver"`
}

// SupportsRevocation reports whether the definition carries revocation keys.
func (c *CredentialDefinition) SupportsRevocation() bool {
	return gjson.GetBytes(c.Value, "revocation").Exists()
}

// RevocationRegistryDefinition is a published revocation registry definition.
type RevocationRegistryDefinition struct {
	ID           string          `json:"id"`
	RevocDefType string          `json:"revocDefType"`
	Tag          string          `json:"tag"`
	CredDefID    string          `json:"credDefId"`
	Value        json.RawMessage `json:"value"`
	Ver          string          `json:"ver"`
}

// RevocationDelta is the revocation state change of a registry over a time window, as of Timestamp.
type RevocationDelta struct {
	RegistryID string          `json:"rev_reg_id"`
	Value      json.RawMessage `json:"value"`
	Timestamp  uint64          `json:"timestamp"`
}
