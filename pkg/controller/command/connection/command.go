/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-proof-go/pkg/controller/command"
	"github.com/hyperledger/aries-proof-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-proof-go/pkg/internal/logutil"
	"github.com/hyperledger/aries-proof-go/pkg/store/connection"
)

var logger = log.New("aries-framework/controller/connection")

// constants for connection management endpoints.
const (
	CommandName = "connection"

	SaveCommandMethod   = "SaveConnection"
	GetCommandMethod    = "GetConnection"
	QueryCommandMethod  = "QueryConnections"
	RemoveCommandMethod = "RemoveConnection"

	errEmptyConnID   = "empty connection ID"
	errEmptyEndpoint = "empty service endpoint"

	// log constants.
	connectionIDString = "connectionID"
	successString      = "success"
)

const (
	// InvalidRequestErrorCode is typically a code for validation errors
	// for invalid connection controller requests.
	InvalidRequestErrorCode = command.Code(iota + command.Connection)

	// SaveConnectionErrorCode is for failures in save connection command.
	SaveConnectionErrorCode
	// GetConnectionErrorCode is for failures in get connection command.
	GetConnectionErrorCode
	// QueryConnectionsErrorCode is for failures in query connections command.
	QueryConnectionsErrorCode
	// RemoveConnectionErrorCode is for failures in remove connection command.
	RemoveConnectionErrorCode
)

type provider interface {
	ConnectionRecorder() *connection.Recorder
}

// Command provides controller API for connection commands.
type Command struct {
	recorder *connection.Recorder
}

// New creates connection Command.
func New(prov provider) (*Command, error) {
	if prov.ConnectionRecorder() == nil {
		return nil, fmt.Errorf("creating command: connection recorder is required")
	}

	return &Command{
		recorder: prov.ConnectionRecorder(),
	}, nil
}

// GetHandlers returns list of all commands supported by this controller command.
func (c *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, SaveCommandMethod, c.SaveConnection),
		cmdutil.NewCommandHandler(CommandName, GetCommandMethod, c.GetConnection),
		cmdutil.NewCommandHandler(CommandName, QueryCommandMethod, c.QueryConnections),
		cmdutil.NewCommandHandler(CommandName, RemoveCommandMethod, c.RemoveConnection),
	}
}

// SaveConnection records a connection to a peer agent. A new connection ID is assigned when none is given.
func (c *Command) SaveConnection(rw io.Writer, req io.Reader) command.Error {
	var request SaveConnectionRequest

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, SaveCommandMethod, err.Error())

		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if request.ServiceEndpoint == "" {
		logutil.LogDebug(logger, CommandName, SaveCommandMethod, errEmptyEndpoint)

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errEmptyEndpoint))
	}

	if request.ConnectionID == "" {
		request.ConnectionID = uuid.New().String()
	}

	err = c.recorder.SaveConnectionRecord(&connection.Record{
		ConnectionID:    request.ConnectionID,
		TheirLabel:      request.TheirLabel,
		TheirDID:        request.TheirDID,
		MyDID:           request.MyDID,
		ServiceEndPoint: request.ServiceEndpoint,
	})
	if err != nil {
		logutil.LogError(logger, CommandName, SaveCommandMethod, err.Error(),
			logutil.CreateKeyValueString(connectionIDString, request.ConnectionID))

		return command.NewExecuteError(SaveConnectionErrorCode, err)
	}

	command.WriteNillableResponse(rw, &IDMessage{ConnectionID: request.ConnectionID}, logger)

	logutil.LogDebug(logger, CommandName, SaveCommandMethod, successString,
		logutil.CreateKeyValueString(connectionIDString, request.ConnectionID))

	return nil
}

// GetConnection returns one connection record.
func (c *Command) GetConnection(rw io.Writer, req io.Reader) command.Error {
	request, cmdErr := decodeID(req, GetCommandMethod)
	if cmdErr != nil {
		return cmdErr
	}

	record, err := c.recorder.GetConnectionRecord(request.ConnectionID)
	if err != nil {
		logutil.LogError(logger, CommandName, GetCommandMethod, err.Error(),
			logutil.CreateKeyValueString(connectionIDString, request.ConnectionID))

		return command.NewExecuteError(GetConnectionErrorCode, err)
	}

	command.WriteNillableResponse(rw, &ConnectionResponse{Result: record}, logger)

	logutil.LogDebug(logger, CommandName, GetCommandMethod, successString)

	return nil
}

// QueryConnections returns every connection record.
func (c *Command) QueryConnections(rw io.Writer, _ io.Reader) command.Error {
	records, err := c.recorder.QueryConnectionRecords()
	if err != nil {
		logutil.LogError(logger, CommandName, QueryCommandMethod, err.Error())

		return command.NewExecuteError(QueryConnectionsErrorCode, err)
	}

	command.WriteNillableResponse(rw, &QueryConnectionsResponse{Results: records}, logger)

	logutil.LogDebug(logger, CommandName, QueryCommandMethod, successString)

	return nil
}

// RemoveConnection deletes one connection record.
func (c *Command) RemoveConnection(rw io.Writer, req io.Reader) command.Error {
	request, cmdErr := decodeID(req, RemoveCommandMethod)
	if cmdErr != nil {
		return cmdErr
	}

	if err := c.recorder.RemoveConnection(request.ConnectionID); err != nil {
		logutil.LogError(logger, CommandName, RemoveCommandMethod, err.Error(),
			logutil.CreateKeyValueString(connectionIDString, request.ConnectionID))

		return command.NewExecuteError(RemoveConnectionErrorCode, err)
	}

	command.WriteNillableResponse(rw, nil, logger)

	logutil.LogDebug(logger, CommandName, RemoveCommandMethod, successString,
		logutil.CreateKeyValueString(connectionIDString, request.ConnectionID))

	return nil
}

func decodeID(req io.Reader, method string) (*IDMessage, command.Error) {
	var request IDMessage

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, method, err.Error())

		return nil, command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if request.ConnectionID == "" {
		logutil.LogDebug(logger, CommandName, method, errEmptyConnID)

		return nil, command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errEmptyConnID))
	}

	return &request, nil
}
