/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"github.com/hyperledger/aries-proof-go/pkg/controller/command/connection"
	connstore "github.com/hyperledger/aries-proof-go/pkg/store/connection"
)

// saveConnectionRequest model
//
// This is used for recording a connection to a peer agent
//
// swagger:parameters saveConnection
type saveConnectionRequest struct { // nolint: unused,deadcode
	// in: body
	Params connection.SaveConnectionRequest
}

// saveConnectionResponse model
//
// response of save connection action
//
// swagger:response saveConnectionResponse
type saveConnectionResponse struct { // nolint: unused,deadcode
	// in: body
	connection.IDMessage
}

// connectionIDParams model
//
// This is used for fetching or removing a connection record
//
// swagger:parameters getConnection removeConnection
type connectionIDParams struct { // nolint: unused,deadcode
	// The ID of the connection record
	//
	// in: path
	// required: true
	ID string `json:"id"`
}

// getConnectionResponse model
//
// response of get connection action
//
// swagger:response getConnectionResponse
type getConnectionResponse struct { // nolint: unused,deadcode
	// in: body
	Result *connstore.Record `json:"result"`
}

// queryConnectionsResponse model
//
// response of query connections action
//
// swagger:response queryConnectionsResponse
type queryConnectionsResponse struct { // nolint: unused,deadcode
	// in: body
	Results []*connstore.Record `json:"results"`
}

// removeConnectionResponse model
//
// response of remove connection action
//
// swagger:response removeConnectionResponse
type removeConnectionResponse struct { // nolint: unused,deadcode
	// in: body
	Body struct{}
}
