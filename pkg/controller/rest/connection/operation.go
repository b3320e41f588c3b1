/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hyperledger/aries-proof-go/pkg/controller/command"
	"github.com/hyperledger/aries-proof-go/pkg/controller/command/connection"
	"github.com/hyperledger/aries-proof-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-proof-go/pkg/controller/rest"
	connstore "github.com/hyperledger/aries-proof-go/pkg/store/connection"
)

// constants for connection management endpoints.
const (
	OperationID        = "/connections"
	SaveConnectionPath = OperationID
	ConnectionsPath    = OperationID
	ConnectionByIDPath = OperationID + "/{id}"
)

type provider interface {
	ConnectionRecorder() *connstore.Recorder
}

// Operation is the REST controller for connection management.
type Operation struct {
	command  *connection.Command
	handlers []rest.Handler
}

// New returns new connection management rest client protocol instance.
func New(p provider) (*Operation, error) {
	cmd, err := connection.New(p)
	if err != nil {
		return nil, err
	}

	op := &Operation{
		command: cmd,
	}

	op.registerHandler()

	return op, nil
}

// GetRESTHandlers get all controller API handlers available for this service.
func (c *Operation) GetRESTHandlers() []rest.Handler {
	return c.handlers
}

// registerHandler register handlers to be exposed from this service as REST API endpoints.
func (c *Operation) registerHandler() {
	c.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(SaveConnectionPath, http.MethodPost, c.SaveConnection),
		cmdutil.NewHTTPHandler(ConnectionsPath, http.MethodGet, c.QueryConnections),
		cmdutil.NewHTTPHandler(ConnectionByIDPath, http.MethodGet, c.GetConnection),
		cmdutil.NewHTTPHandler(ConnectionByIDPath, http.MethodDelete, c.RemoveConnection),
	}
}

// SaveConnection swagger:route POST /connections connections saveConnection
//
// Records a connection to a peer agent.
//
// Responses:
//    default: genericError
//        200: saveConnectionResponse
func (c *Operation) SaveConnection(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(c.command.SaveConnection, rw, req.Body)
}

// QueryConnections swagger:route GET /connections connections queryConnections
//
// Lists every recorded connection.
//
// Responses:
//    default: genericError
//        200: queryConnectionsResponse
func (c *Operation) QueryConnections(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(c.command.QueryConnections, rw, req.Body)
}

// GetConnection swagger:route GET /connections/{id} connections getConnection
//
// Fetches a single connection record.
//
// Responses:
//    default: genericError
//        200: getConnectionResponse
func (c *Operation) GetConnection(rw http.ResponseWriter, req *http.Request) {
	c.executeOnID(c.command.GetConnection, rw, req)
}

// RemoveConnection swagger:route DELETE /connections/{id} connections removeConnection
//
// Removes a connection record.
//
// Responses:
//    default: genericError
//        200: removeConnectionResponse
func (c *Operation) RemoveConnection(rw http.ResponseWriter, req *http.Request) {
	c.executeOnID(c.command.RemoveConnection, rw, req)
}

func (c *Operation) executeOnID(exec command.Exec, rw http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	if id == "" {
		rest.SendHTTPStatusError(rw, http.StatusBadRequest, connection.InvalidRequestErrorCode,
			fmt.Errorf("empty connection ID"))

		return
	}

	rest.Execute(exec, rw, bytes.NewBufferString(fmt.Sprintf(`{"id":%q}`, id)))
}
