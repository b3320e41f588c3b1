/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package proof runs the verifier and prover sides of the present-proof protocol
// (https://github.com/hyperledger/aries-rfcs/tree/main/features/0037-present-proof).
//
// # Packages for end developer usage
//
// pkg/framework/context: Agent provider. Wires storage, outbound transports, connection records, the inbound
// mailbox, the ledger and the credential system gateway.
//
// pkg/client/presentproof: Session service. Creates, advances, persists and drains verifier and prover sessions
// keyed by thread id.
//
// pkg/legacy/proof, pkg/legacy/disclosedproof: Numeric handle surface over the same sessions.
//
// pkg/controller: Command and REST handlers for sessions, connections and the mailbox.
//
// Basic workflow
//
//  1. Create a context with context.New and the provider options you need.
//  2. Create a client with presentproof.New, passing the context.
//  3. Save a connection record for each peer.
//  4. Create requests or accept received ones, then advance sessions with the client funcs.
package proof
