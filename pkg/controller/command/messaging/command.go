/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"

	client "github.com/hyperledger/aries-proof-go/pkg/client/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
	"github.com/hyperledger/aries-proof-go/pkg/controller/command"
	"github.com/hyperledger/aries-proof-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/messaging/mailbox"
	"github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/internal/logutil"
)

var logger = log.New("aries-framework/controller/messaging")

// constants for the Messaging controller.
const (
	// command name.
	CommandName = "messaging"

	// error messages.
	errMsgBodyEmpty      = "empty message body"
	errMsgConnIDEmpty    = "empty connection ID"
	errMsgIDEmpty        = "empty message ID"
	errMailboxMissing    = "mailbox is required"
	errConnLookupMissing = "connection lookup is required"

	// command methods.
	PendingCommandMethod      = "Pending"
	MarkReviewedCommandMethod = "MarkReviewed"
	PurgeCommandMethod        = "Purge"
	SendCommandMethod         = "Send"

	// log constants.
	connectionIDString = "connectionID"
	successString      = "success"

	// default timeout.
	defaultTimeout = 20 * time.Second
)

// Error codes.
const (
	// InvalidRequestErrorCode is typically a code for invalid requests.
	InvalidRequestErrorCode = command.Code(iota + command.Messaging)

	// PendingMsgError is for failures while reading a mailbox.
	PendingMsgError

	// MarkReviewedError is for failures while flagging a stored message.
	MarkReviewedError

	// PurgeError is for failures while dropping reviewed messages.
	PurgeError

	// SendMsgError is for failures while sending messages.
	SendMsgError
)

// Provider contains dependencies for the messaging controller command operations
// and is typically created by using context.New().
type Provider interface {
	Mailbox() *mailbox.Mailbox
	Connections() client.ConnectionLookup
}

// Command contains basic command operations provided by messaging controller command.
type Command struct {
	mailbox     *mailbox.Mailbox
	connections client.ConnectionLookup
}

// New returns new command instance for messaging controller API.
func New(ctx Provider) (*Command, error) {
	if ctx.Mailbox() == nil {
		return nil, fmt.Errorf("failed to initialize messaging command: %s", errMailboxMissing)
	}

	if ctx.Connections() == nil {
		return nil, fmt.Errorf("failed to initialize messaging command: %s", errConnLookupMissing)
	}

	return &Command{mailbox: ctx.Mailbox(), connections: ctx.Connections()}, nil
}

// GetHandlers returns list of all commands supported by this controller command.
func (o *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, PendingCommandMethod, o.Pending),
		cmdutil.NewCommandHandler(CommandName, MarkReviewedCommandMethod, o.MarkReviewed),
		cmdutil.NewCommandHandler(CommandName, PurgeCommandMethod, o.Purge),
		cmdutil.NewCommandHandler(CommandName, SendCommandMethod, o.Send),
	}
}

// Pending returns the messages of a connection that were not reviewed yet.
func (o *Command) Pending(rw io.Writer, req io.Reader) command.Error {
	request, cmdErr := decodeConnection(req, PendingCommandMethod)
	if cmdErr != nil {
		return cmdErr
	}

	msgs, err := o.mailbox.Pending(context.Background(), request.ConnectionID)
	if err != nil {
		logutil.LogError(logger, CommandName, PendingCommandMethod, err.Error(),
			logutil.CreateKeyValueString(connectionIDString, request.ConnectionID))

		return command.NewExecuteError(PendingMsgError, err)
	}

	if msgs == nil {
		msgs = []*mailbox.Message{}
	}

	command.WriteNillableResponse(rw, &PendingResponse{Messages: msgs}, logger)

	logutil.LogDebug(logger, CommandName, PendingCommandMethod, successString,
		logutil.CreateKeyValueString(connectionIDString, request.ConnectionID))

	return nil
}

// MarkReviewed flags a stored message as consumed.
func (o *Command) MarkReviewed(rw io.Writer, req io.Reader) command.Error {
	var request MarkReviewedArgs

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, MarkReviewedCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if request.ConnectionID == "" {
		logutil.LogDebug(logger, CommandName, MarkReviewedCommandMethod, errMsgConnIDEmpty)
		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errMsgConnIDEmpty))
	}

	if request.MessageID == "" {
		logutil.LogDebug(logger, CommandName, MarkReviewedCommandMethod, errMsgIDEmpty)
		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errMsgIDEmpty))
	}

	err = o.mailbox.MarkReviewed(context.Background(), request.ConnectionID, request.MessageID)
	if errors.Is(err, mailbox.ErrMessageNotFound) {
		err = errkind.Wrap(err, errkind.NotFound, "mark reviewed")
	}

	if err != nil {
		logutil.LogError(logger, CommandName, MarkReviewedCommandMethod, err.Error(),
			logutil.CreateKeyValueString(connectionIDString, request.ConnectionID))

		return command.NewExecuteError(MarkReviewedError, err)
	}

	command.WriteNillableResponse(rw, nil, logger)

	logutil.LogDebug(logger, CommandName, MarkReviewedCommandMethod, successString)

	return nil
}

// Purge drops the reviewed messages of a connection.
func (o *Command) Purge(rw io.Writer, req io.Reader) command.Error {
	request, cmdErr := decodeConnection(req, PurgeCommandMethod)
	if cmdErr != nil {
		return cmdErr
	}

	removed, err := o.mailbox.Purge(context.Background(), request.ConnectionID)
	if err != nil {
		logutil.LogError(logger, CommandName, PurgeCommandMethod, err.Error(),
			logutil.CreateKeyValueString(connectionIDString, request.ConnectionID))

		return command.NewExecuteError(PurgeError, err)
	}

	command.WriteNillableResponse(rw, &PurgeResponse{Removed: removed}, logger)

	logutil.LogDebug(logger, CommandName, PurgeCommandMethod, successString,
		logutil.CreateKeyValueString("removed", fmt.Sprint(removed)))

	return nil
}

// Send delivers a present-proof message over an existing connection.
func (o *Command) Send(rw io.Writer, req io.Reader) command.Error {
	var request SendMessageArgs

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, SendCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if request.ConnectionID == "" {
		logutil.LogDebug(logger, CommandName, SendCommandMethod, errMsgConnIDEmpty)
		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errMsgConnIDEmpty))
	}

	if len(request.MessageBody) == 0 {
		logutil.LogDebug(logger, CommandName, SendCommandMethod, errMsgBodyEmpty)
		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errMsgBodyEmpty))
	}

	msg, err := presentproof.ParseMessage(request.MessageBody)
	if err != nil {
		logutil.LogInfo(logger, CommandName, SendCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	ctx, cancel := prepareContext(request.Timeout)
	defer cancel()

	send, err := o.connections.Sender(ctx, request.ConnectionID)
	if err != nil {
		logutil.LogError(logger, CommandName, SendCommandMethod, err.Error(),
			logutil.CreateKeyValueString(connectionIDString, request.ConnectionID))

		return command.NewExecuteError(SendMsgError, err)
	}

	if err = send(ctx, msg); err != nil {
		logutil.LogError(logger, CommandName, SendCommandMethod, err.Error(),
			logutil.CreateKeyValueString(connectionIDString, request.ConnectionID))

		return command.NewExecuteError(SendMsgError, err)
	}

	command.WriteNillableResponse(rw, &SendMessageResponse{ID: msg.MessageID()}, logger)

	logutil.LogDebug(logger, CommandName, SendCommandMethod, successString,
		logutil.CreateKeyValueString(connectionIDString, request.ConnectionID))

	return nil
}

func decodeConnection(req io.Reader, method string) (*ConnectionArgs, command.Error) {
	var request ConnectionArgs

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, method, err.Error())
		return nil, command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if request.ConnectionID == "" {
		logutil.LogDebug(logger, CommandName, method, errMsgConnIDEmpty)
		return nil, command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errMsgConnIDEmpty))
	}

	return &request, nil
}

func prepareContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return context.WithTimeout(context.Background(), timeout)
}
