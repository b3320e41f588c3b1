/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package presentproof provides the session API of the Present Proof Protocol 1.0:
// https://github.com/hyperledger/aries-rfcs/tree/master/features/0037-present-proof
//
// A Client keeps one registry of verifier sessions and one of prover sessions, both keyed by thread id.
// Every operation that advances a session works on a detached copy, delivers the resulting message and
// only then commits the copy back. A session whose outbound message could not be delivered is left as
// it was.
//
// 1. Create your client:
//
//	client, err := presentproof.New(ctx)
//	if err != nil {
//		panic(err)
//	}
//
// 2. Verifier side, send a request and poll until the presentation is verified:
//
//	thID, err := client.SendProofRequest(ctx, connID, request, nil)
//	state, err := client.UpdateVerifierState(ctx, thID, nil)
//	status, err := client.PresentationStatus(thID)
//
// 3. Prover side, answer a request received from the connection's mailbox:
//
//	thID, err := client.ReceiveProofRequest(ctx, connID, "my-proof", request)
//	candidates, err := client.RetrieveCredentials(ctx, thID)
//	err = client.GeneratePresentation(ctx, thID, selected, nil)
//	err = client.SendPresentation(ctx, thID)
//	state, err := client.UpdateProverState(ctx, thID, nil)
package presentproof
