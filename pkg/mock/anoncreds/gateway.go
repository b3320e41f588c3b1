/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/log"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/maps"

	api "github.com/hyperledger/aries-proof-go/pkg/anoncreds"
)

// CredentialRecordType is the wallet record type credentials are kept under.
const CredentialRecordType = "Indy::Credential"

var logger = log.New("aries-framework/mock/anoncreds")

// ErrCredentialRevoked is returned when a presentation would use a revoked credential.
var ErrCredentialRevoked = errors.New("credential is revoked")

// Gateway is a stand-in credential system. Its proofs are keyed digests over the requested proof, so any
// change to a presentation or its nonce fails verification, but nothing is zero-knowledge.
type Gateway struct {
	ledger api.LedgerRead
	key    []byte
}

type proofBody struct {
	Digest string `json:"digest"`
}

// NewGateway returns a gateway that signs proofs with key. The key may be at most 64 bytes.
func NewGateway(ledger api.LedgerRead, key []byte) (*Gateway, error) {
	if _, err := blake2b.New256(key); err != nil {
		return nil, fmt.Errorf("invalid proof key: %w", err)
	}

	return &Gateway{ledger: ledger, key: key}, nil
}

// IssueCredential stores a credential in w and returns its referent. The schema and credential
// definition must be on the ledger.
func (g *Gateway) IssueCredential(ctx context.Context, w api.Wallet, info api.CredentialInfo) (string, error) {
	if _, err := g.ledger.GetSchema(ctx, info.SchemaID); err != nil {
		return "", fmt.Errorf("issue credential: %w", err)
	}

	credDef, err := g.ledger.GetCredDef(ctx, info.CredDefID)
	if err != nil {
		return "", fmt.Errorf("issue credential: %w", err)
	}

	if info.RevRegID != "" && (info.CredRevID == "" || !credDef.SupportsRevocation()) {
		return "", fmt.Errorf("issue credential: %s is not revocable with registry %s", info.CredDefID, info.RevRegID)
	}

	if info.Referent == "" {
		info.Referent = uuid.New().String()
	}

	raw, err := json.Marshal(&info)
	if err != nil {
		return "", fmt.Errorf("marshal credential: %w", err)
	}

	if err = w.AddRecord(ctx, CredentialRecordType, info.Referent, raw, map[string]string{
		"schema_id":   info.SchemaID,
		"cred_def_id": info.CredDefID,
	}); err != nil {
		return "", fmt.Errorf("store credential: %w", err)
	}

	return info.Referent, nil
}

// RetrieveCandidateCredentials implements anoncreds.Gateway.
func (g *Gateway) RetrieveCandidateCredentials(ctx context.Context, w api.Wallet,
	req *api.ProofRequest) (*api.CandidateSet, error) {
	creds, err := g.credentials(ctx, w)
	if err != nil {
		return nil, err
	}

	set := &api.CandidateSet{
		Attrs:      make(map[string][]api.Candidate, len(req.RequestedAttributes)),
		Predicates: make(map[string][]api.Candidate, len(req.RequestedPredicates)),
	}

	for referent, attr := range req.RequestedAttributes {
		interval := attr.NonRevoked
		if interval == nil {
			interval = req.NonRevoked
		}

		found := []api.Candidate{}

		for _, c := range creds {
			if hasAll(c, attr.AttrNames()) && matchesAny(c, attr.Restrictions) {
				found = append(found, api.Candidate{CredInfo: c, Interval: interval})
			}
		}

		set.Attrs[referent] = found
	}

	for referent, pred := range req.RequestedPredicates {
		interval := pred.NonRevoked
		if interval == nil {
			interval = req.NonRevoked
		}

		found := []api.Candidate{}

		for _, c := range creds {
			if satisfies(c, pred) && matchesAny(c, pred.Restrictions) {
				found = append(found, api.Candidate{CredInfo: c, Interval: interval})
			}
		}

		set.Predicates[referent] = found
	}

	return set, nil
}

// credentials lists the wallet's credentials ordered by referent.
func (g *Gateway) credentials(ctx context.Context, w api.Wallet) ([]api.CredentialInfo, error) {
	records, err := w.SearchRecords(ctx, CredentialRecordType)
	if err != nil {
		return nil, fmt.Errorf("search credentials: %w", err)
	}

	ids := maps.Keys(records)
	sort.Strings(ids)

	creds := make([]api.CredentialInfo, 0, len(ids))

	for _, id := range ids {
		var c api.CredentialInfo

		if err := json.Unmarshal(records[id], &c); err != nil {
			logger.Warnf("skipping unreadable credential %s: %s", id, err)

			continue
		}

		creds = append(creds, c)
	}

	return creds, nil
}

type builder struct {
	ctx      context.Context
	w        api.Wallet
	in       *api.PresentationInputs
	index    map[string]int
	creds    map[string]api.CredentialInfo
	identity []api.Identifier
}

// subProof loads the stored credential behind c and returns its sub-proof index.
func (b *builder) subProof(c api.CredentialInfo) (int, api.CredentialInfo, error) {
	if idx, ok := b.index[c.Referent]; ok {
		return idx, b.creds[c.Referent], nil
	}

	raw, err := b.w.GetRecord(b.ctx, CredentialRecordType, c.Referent)
	if err != nil {
		return 0, api.CredentialInfo{}, fmt.Errorf("load credential %s: %w", c.Referent, err)
	}

	var stored api.CredentialInfo

	if err = json.Unmarshal(raw, &stored); err != nil {
		return 0, api.CredentialInfo{}, fmt.Errorf("decode credential %s: %w", c.Referent, err)
	}

	if _, ok := b.in.Schemas[stored.SchemaID]; !ok {
		return 0, api.CredentialInfo{}, fmt.Errorf("schema %s was not resolved", stored.SchemaID)
	}

	if _, ok := b.in.CredDefs[stored.CredDefID]; !ok {
		return 0, api.CredentialInfo{}, fmt.Errorf("credential definition %s was not resolved", stored.CredDefID)
	}

	id := api.Identifier{SchemaID: stored.SchemaID, CredDefID: stored.CredDefID}

	if delta, ok := b.in.RevStates[stored.RevRegID]; ok && stored.RevRegID != "" {
		revoked, err := revokedIn(delta, stored.CredRevID)
		if err != nil {
			return 0, api.CredentialInfo{}, err
		}

		if revoked {
			return 0, api.CredentialInfo{}, fmt.Errorf("credential %s: %w", stored.Referent, ErrCredentialRevoked)
		}

		ts := delta.Timestamp
		id.RevRegID = stored.RevRegID
		id.Timestamp = &ts
	}

	b.identity = append(b.identity, id)
	idx := len(b.identity) - 1
	b.index[c.Referent] = idx
	b.creds[c.Referent] = stored

	return idx, stored, nil
}

// ConstructPresentation implements anoncreds.Gateway.
func (g *Gateway) ConstructPresentation(ctx context.Context, w api.Wallet,
	in *api.PresentationInputs) (*api.Proof, error) {
	req := in.Request
	b := &builder{ctx: ctx, w: w, in: in, index: map[string]int{}, creds: map[string]api.CredentialInfo{}}

	rp := api.RequestedProof{
		RevealedAttrs:      map[string]api.RevealedAttr{},
		RevealedAttrGroups: map[string]api.RevealedAttrGroup{},
		SelfAttestedAttrs:  map[string]string{},
		UnrevealedAttrs:    map[string]api.SubProofRef{},
		Predicates:         map[string]api.SubProofRef{},
	}

	attrRefs := maps.Keys(req.RequestedAttributes)
	sort.Strings(attrRefs)

	for _, referent := range attrRefs {
		attr := req.RequestedAttributes[referent]

		sel, ok := in.Selected[referent]
		if !ok {
			v, ok := in.SelfAttested[referent]
			if !ok {
				return nil, fmt.Errorf("referent %s has neither a credential nor a self-attested value", referent)
			}

			rp.SelfAttestedAttrs[referent] = v

			continue
		}

		idx, cred, err := b.subProof(sel.Credential.CredInfo)
		if err != nil {
			return nil, err
		}

		if !hasAll(cred, attr.AttrNames()) {
			return nil, fmt.Errorf("credential %s lacks attributes %v", cred.Referent, attr.AttrNames())
		}

		switch {
		case !sel.Revealed:
			rp.UnrevealedAttrs[referent] = api.SubProofRef{SubProofIndex: idx}
		case attr.Name != "":
			raw := cred.Attrs[attr.Name]
			rp.RevealedAttrs[referent] = api.RevealedAttr{SubProofIndex: idx, Raw: raw, Encoded: EncodeAttribute(raw)}
		default:
			group := api.RevealedAttrGroup{SubProofIndex: idx, Values: map[string]api.AttrEncoding{}}
			for _, name := range attr.Names {
				raw := cred.Attrs[name]
				group.Values[name] = api.AttrEncoding{Raw: raw, Encoded: EncodeAttribute(raw)}
			}

			rp.RevealedAttrGroups[referent] = group
		}
	}

	predRefs := maps.Keys(req.RequestedPredicates)
	sort.Strings(predRefs)

	for _, referent := range predRefs {
		pred := req.RequestedPredicates[referent]

		sel, ok := in.Selected[referent]
		if !ok {
			return nil, fmt.Errorf("predicate %s has no credential", referent)
		}

		idx, cred, err := b.subProof(sel.Credential.CredInfo)
		if err != nil {
			return nil, err
		}

		if !satisfies(cred, pred) {
			return nil, fmt.Errorf("credential %s does not satisfy predicate %s", cred.Referent, referent)
		}

		rp.Predicates[referent] = api.SubProofRef{SubProofIndex: idx}
	}

	digest, err := g.digest(req.Nonce, &rp, b.identity)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(&proofBody{Digest: digest})
	if err != nil {
		return nil, fmt.Errorf("marshal proof: %w", err)
	}

	return &api.Proof{Proof: body, RequestedProof: rp, Identifiers: b.identity}, nil
}

// VerifyPresentation implements anoncreds.Gateway. Ledger objects the proof refers to must be present in
// the inputs; a proof that was altered, answers another nonce or leaves a referent unanswered is invalid.
func (g *Gateway) VerifyPresentation(ctx context.Context, in *api.VerificationInputs) (bool, error) {
	if in.Request == nil || in.Proof == nil {
		return false, errors.New("request and proof are required")
	}

	for _, id := range in.Proof.Identifiers {
		if _, ok := in.Schemas[id.SchemaID]; !ok {
			return false, fmt.Errorf("schema %s was not resolved", id.SchemaID)
		}

		if _, ok := in.CredDefs[id.CredDefID]; !ok {
			return false, fmt.Errorf("credential definition %s was not resolved", id.CredDefID)
		}

		if id.RevRegID == "" || id.Timestamp == nil {
			continue
		}

		if _, ok := in.RevRegs[id.RevRegID][*id.Timestamp]; !ok {
			return false, fmt.Errorf("registry %s state at %d was not resolved", id.RevRegID, *id.Timestamp)
		}
	}

	var body proofBody

	if err := json.Unmarshal(in.Proof.Proof, &body); err != nil {
		logger.Debugf("proof body is unreadable: %s", err)

		return false, nil
	}

	expected, err := g.digest(in.Request.Nonce, &in.Proof.RequestedProof, in.Proof.Identifiers)
	if err != nil {
		return false, err
	}

	if subtle.ConstantTimeCompare([]byte(expected), []byte(body.Digest)) != 1 {
		return false, nil
	}

	return answersRequest(in.Request, &in.Proof.RequestedProof), nil
}

// ComputeRevocationDelta implements anoncreds.Gateway. The full registry state at to is returned, since the
// stand-in proof checks revocation against it directly; from is ignored.
func (g *Gateway) ComputeRevocationDelta(ctx context.Context, registryID string, from,
	to *uint64) (*api.RevocationDelta, error) {
	delta, err := g.ledger.GetRevRegDelta(ctx, registryID, nil, to)
	if err != nil {
		return nil, fmt.Errorf("revocation delta %s: %w", registryID, err)
	}

	return delta, nil
}

func (g *Gateway) digest(nonce string, rp *api.RequestedProof, ids []api.Identifier) (string, error) {
	payload, err := json.Marshal(&struct {
		Nonce          string              `json:"nonce"`
		RequestedProof *api.RequestedProof `json:"requested_proof"`
		Identifiers    []api.Identifier    `json:"identifiers"`
	}{Nonce: nonce, RequestedProof: rp, Identifiers: ids})
	if err != nil {
		return "", fmt.Errorf("marshal proof payload: %w", err)
	}

	h, err := blake2b.New256(g.key)
	if err != nil {
		return "", fmt.Errorf("proof hash: %w", err)
	}

	_, _ = h.Write(payload)

	return hex.EncodeToString(h.Sum(nil)), nil
}

func answersRequest(req *api.ProofRequest, rp *api.RequestedProof) bool {
	for referent, attr := range req.RequestedAttributes {
		if r, ok := rp.RevealedAttrs[referent]; ok {
			if r.Encoded != EncodeAttribute(r.Raw) {
				return false
			}

			continue
		}

		if grp, ok := rp.RevealedAttrGroups[referent]; ok {
			for _, name := range attr.Names {
				v, ok := grp.Values[name]
				if !ok || v.Encoded != EncodeAttribute(v.Raw) {
					return false
				}
			}

			continue
		}

		_, unrevealed := rp.UnrevealedAttrs[referent]
		_, selfAttested := rp.SelfAttestedAttrs[referent]

		if !unrevealed && !selfAttested {
			return false
		}
	}

	for referent := range req.RequestedPredicates {
		if _, ok := rp.Predicates[referent]; !ok {
			return false
		}
	}

	return true
}

// EncodeAttribute returns the anoncreds encoding of raw: 32-bit integers encode as themselves, anything
// else as the decimal form of its SHA-256 digest.
func EncodeAttribute(raw string) string {
	if _, err := strconv.ParseInt(raw, 10, 32); err == nil {
		return raw
	}

	sum := sha256.Sum256([]byte(raw))

	return new(big.Int).SetBytes(sum[:]).String()
}

func hasAll(c api.CredentialInfo, names []string) bool {
	if len(names) == 0 {
		return false
	}

	for _, name := range names {
		if _, ok := c.Attrs[name]; !ok {
			return false
		}
	}

	return true
}

func satisfies(c api.CredentialInfo, pred api.PredicateInfo) bool {
	raw, ok := c.Attrs[pred.Name]
	if !ok {
		return false
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false
	}

	bound := int64(pred.PValue)

	switch pred.PType {
	case ">=":
		return v >= bound
	case ">":
		return v > bound
	case "<=":
		return v <= bound
	case "<":
		return v < bound
	default:
		return false
	}
}

func matchesAny(c api.CredentialInfo, restrictions []api.Restriction) bool {
	if len(restrictions) == 0 {
		return true
	}

	for _, r := range restrictions {
		if matches(c, r) {
			return true
		}
	}

	return false
}

// matches compares c against r using the ledger id layouts <did>:2:<name>:<version> for schemas and
// <did>:3:... for credential definitions.
func matches(c api.CredentialInfo, r api.Restriction) bool {
	schema := strings.Split(c.SchemaID, ":")
	credDef := strings.Split(c.CredDefID, ":")

	checks := []struct{ want, got string }{
		{r.SchemaID, c.SchemaID},
		{r.CredDefID, c.CredDefID},
		{r.SchemaIssuerDID, part(schema, 0)},
		{r.SchemaName, part(schema, 2)},
		{r.SchemaVersion, part(schema, 3)},
		{r.IssuerDID, part(credDef, 0)},
	}

	for _, chk := range checks {
		if chk.want != "" && chk.want != chk.got {
			return false
		}
	}

	return true
}

func part(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}

	return ""
}
