/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
)

var logger = log.New("aries-framework/anoncreds")

const nonceBits = 80

// requestSchema covers the top-level shape of a presentation request.
const requestSchema = `{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "version": {"type": "string"},
    "nonce": {"type": "string", "pattern": "^[0-9]*$"},
    "ver": {"type": "string"},
    "non_revoked": {"$ref": "#/definitions/interval"}
  },
  "definitions": {
    "interval": {
      "type": ["object", "null"],
      "properties": {
        "from": {"type": "integer", "minimum": 0},
        "to": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

// attributesSchema covers requested attributes and predicates.
const attributesSchema = `{
  "type": "object",
  "required": ["requested_attributes"],
  "properties": {
    "requested_attributes": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "names": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
          "restrictions": {"type": "array", "items": {"type": "object"}}
        },
        "oneOf": [{"required": ["name"]}, {"required": ["names"]}]
      }
    },
    "requested_predicates": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["name", "p_type", "p_value"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "p_type": {"enum": [">=", ">", "<=", "<"]},
          "p_value": {"type": "integer"},
          "restrictions": {"type": "array", "items": {"type": "object"}}
        }
      }
    }
  }
}`

type schemas struct {
	request    *gojsonschema.Schema
	attributes *gojsonschema.Schema
}

var (
	compiledOnce sync.Once
	compiled     schemas
	compileErr   error
)

func loadSchemas() (schemas, error) {
	compiledOnce.Do(func() {
		compiled.request, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(requestSchema))
		if compileErr != nil {
			return
		}

		compiled.attributes, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(attributesSchema))
	})

	return compiled, compileErr
}

// ParseProofRequest validates and decodes a raw presentation request.
// Malformed JSON or top-level fields yield InvalidProofRequest; malformed requested attributes or
// predicates yield InvalidAttributesStructure.
func ParseProofRequest(raw []byte) (*ProofRequest, error) {
	if !json.Valid(raw) {
		return nil, errkind.New(errkind.InvalidProofRequest, "presentation request is not valid JSON")
	}

	s, err := loadSchemas()
	if err != nil {
		return nil, fmt.Errorf("compile proof request schemas: %w", err)
	}

	doc := gojsonschema.NewBytesLoader(raw)

	if err = validate(s.request, doc, errkind.InvalidProofRequest); err != nil {
		return nil, err
	}

	if err = validate(s.attributes, doc, errkind.InvalidAttributesStructure); err != nil {
		return nil, err
	}

	req := &ProofRequest{}

	if err = json.Unmarshal(raw, req); err != nil {
		return nil, errkind.Wrap(err, errkind.InvalidProofRequest, "decode presentation request")
	}

	if req.RequestedPredicates == nil {
		req.RequestedPredicates = map[string]PredicateInfo{}
	}

	return req, nil
}

// Validate re-checks an already decoded request.
func (r *ProofRequest) Validate() error {
	c := *r
	if c.RequestedPredicates == nil {
		c.RequestedPredicates = map[string]PredicateInfo{}
	}

	raw, err := json.Marshal(&c)
	if err != nil {
		return errkind.Wrap(err, errkind.InvalidProofRequest, "encode presentation request")
	}

	_, err = ParseProofRequest(raw)

	return err
}

func validate(s *gojsonschema.Schema, doc gojsonschema.JSONLoader, kind errkind.Kind) error {
	res, err := s.Validate(doc)
	if err != nil {
		return errkind.Wrap(err, kind, "validate presentation request")
	}

	if res.Valid() {
		return nil
	}

	details := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		details = append(details, e.String())
	}

	logger.Debugf("presentation request rejected: %s", strings.Join(details, "; "))

	return errkind.New(kind, "%s", strings.Join(details, "; "))
}

// GenerateNonce returns a random 80-bit decimal nonce.
func GenerateNonce() (string, error) {
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), nonceBits))
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	return n.String(), nil
}
