/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import "github.com/hyperledger/aries-proof-go/pkg/store/connection"

// IDMessage is either a request or response message, holding connection ID.
// Used for:
// - response from saving a connection.
// - request to get or remove a connection.
type IDMessage struct {
	ConnectionID string `json:"id"`
}

// SaveConnectionRequest request to record a connection to a peer agent.
type SaveConnectionRequest struct {
	ConnectionID    string `json:"id"`
	TheirLabel      string `json:"their_label,omitempty"`
	TheirDID        string `json:"their_did,omitempty"`
	MyDID           string `json:"my_did,omitempty"`
	ServiceEndpoint string `json:"service_endpoint"`
}

// ConnectionResponse response holding one connection record.
type ConnectionResponse struct {
	Result *connection.Record `json:"result"`
}

// QueryConnectionsResponse response holding every connection record.
type QueryConnectionsResponse struct {
	Results []*connection.Record `json:"results"`
}
