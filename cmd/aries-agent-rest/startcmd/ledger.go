/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hyperledger/aries-proof-go/pkg/anoncreds"
	mockanoncreds "github.com/hyperledger/aries-proof-go/pkg/mock/anoncreds"
)

// ledgerSeed is the content of the --ledger-seed file.
type ledgerSeed struct {
	Schemas    []*anoncreds.Schema                       `json:"schemas"`
	CredDefs   []*anoncreds.CredentialDefinition         `json:"cred_defs"`
	RevRegDefs []*anoncreds.RevocationRegistryDefinition `json:"rev_reg_defs"`
}

func loadLedgerSeed(ledger *mockanoncreds.Ledger, path string) error {
	raw, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		return fmt.Errorf("read ledger seed: %w", err)
	}

	seed := &ledgerSeed{}

	if err = json.Unmarshal(raw, seed); err != nil {
		return fmt.Errorf("decode ledger seed: %w", err)
	}

	for _, s := range seed.Schemas {
		if s.ID == "" {
			return fmt.Errorf("ledger seed: schema without id")
		}

		ledger.AddSchema(s)
	}

	for _, c := range seed.CredDefs {
		if c.ID == "" {
			return fmt.Errorf("ledger seed: credential definition without id")
		}

		ledger.AddCredDef(c)
	}

	for _, d := range seed.RevRegDefs {
		if d.ID == "" {
			return fmt.Errorf("ledger seed: revocation registry definition without id")
		}

		ts := ledger.AddRevRegDef(d)
		logger.Debugf("revocation registry %s published at %d", d.ID, ts)
	}

	logger.Infof("ledger seeded with %d schemas, %d credential definitions and %d revocation registries",
		len(seed.Schemas), len(seed.CredDefs), len(seed.RevRegDefs))

	return nil
}
