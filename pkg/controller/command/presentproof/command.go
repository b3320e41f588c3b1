/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-proof-go/pkg/client/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/controller/command"
	"github.com/hyperledger/aries-proof-go/pkg/controller/internal/cmdutil"
	protocol "github.com/hyperledger/aries-proof-go/pkg/didcomm/protocol/presentproof"
	"github.com/hyperledger/aries-proof-go/pkg/internal/logutil"
)

var logger = log.New("aries-framework/controller/presentproof")

const (
	// InvalidRequestErrorCode is typically a code for validation errors
	// for invalid present proof controller requests.
	InvalidRequestErrorCode = command.Code(iota + command.PresentProof)
	// SendRequestErrorCode is for failures in send request command.
	SendRequestErrorCode
	// VerifyPresentationErrorCode is for failures in verify presentation command.
	VerifyPresentationErrorCode
	// UpdateStateErrorCode is for failures in the update state commands.
	UpdateStateErrorCode
	// SessionErrorCode is for failures reading a session.
	SessionErrorCode
	// ReceiveRequestErrorCode is for failures in receive request command.
	ReceiveRequestErrorCode
	// SendProposalErrorCode is for failures in send proposal command.
	SendProposalErrorCode
	// RetrieveCredentialsErrorCode is for failures in retrieve credentials command.
	RetrieveCredentialsErrorCode
	// GeneratePresentationErrorCode is for failures in generate presentation command.
	GeneratePresentationErrorCode
	// SendPresentationErrorCode is for failures in send presentation command.
	SendPresentationErrorCode
	// DeclineRequestErrorCode is for failures in decline request command.
	DeclineRequestErrorCode
	// ReleaseErrorCode is for failures in the release commands.
	ReleaseErrorCode
	// ExportErrorCode is for failures in the export commands.
	ExportErrorCode
	// ImportErrorCode is for failures in the import commands.
	ImportErrorCode
)

// constants for present proof commands.
const (
	// command name.
	CommandName = "presentproof"

	SendRequest          = "SendRequest"
	VerifyPresentation   = "VerifyPresentation"
	UpdateVerifierState  = "UpdateVerifierState"
	GetVerifier          = "GetVerifier"
	ReleaseVerifier      = "ReleaseVerifier"
	ExportVerifier       = "ExportVerifier"
	ImportVerifier       = "ImportVerifier"
	ReceiveRequest       = "ReceiveRequest"
	SendProposal         = "SendProposal"
	RetrieveCredentials  = "RetrieveCredentials"
	GeneratePresentation = "GeneratePresentation"
	SendPresentation     = "SendPresentation"
	DeclineRequest       = "DeclineRequest"
	UpdateProverState    = "UpdateProverState"
	GetProver            = "GetProver"
	ReleaseProver        = "ReleaseProver"
	ExportProver         = "ExportProver"
	ImportProver         = "ImportProver"
	Sessions             = "Sessions"
)

const (
	// error messages.
	errEmptyThreadID            = "empty thread ID"
	errEmptyConnectionID        = "empty connection ID"
	errEmptyProofRequest        = "empty proof request"
	errEmptyRequestPresentation = "empty request presentation"
	errEmptySessionData         = "empty session data"
	// log constants.
	successString = "success"
)

// Command is controller command for present proof.
type Command struct {
	client *presentproof.Client
}

// New returns new present proof controller command instance.
func New(ctx presentproof.Provider, opts ...presentproof.Opt) (*Command, error) {
	client, err := presentproof.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create a client: %w", err)
	}

	return &Command{client: client}, nil
}

// Client exposes the client the command runs on.
func (c *Command) Client() *presentproof.Client {
	return c.client
}

// GetHandlers returns list of all commands supported by this controller command.
func (c *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, SendRequest, c.SendRequest),
		cmdutil.NewCommandHandler(CommandName, VerifyPresentation, c.VerifyPresentation),
		cmdutil.NewCommandHandler(CommandName, UpdateVerifierState, c.UpdateVerifierState),
		cmdutil.NewCommandHandler(CommandName, GetVerifier, c.GetVerifier),
		cmdutil.NewCommandHandler(CommandName, ReleaseVerifier, c.ReleaseVerifier),
		cmdutil.NewCommandHandler(CommandName, ExportVerifier, c.ExportVerifier),
		cmdutil.NewCommandHandler(CommandName, ImportVerifier, c.ImportVerifier),
		cmdutil.NewCommandHandler(CommandName, ReceiveRequest, c.ReceiveRequest),
		cmdutil.NewCommandHandler(CommandName, SendProposal, c.SendProposal),
		cmdutil.NewCommandHandler(CommandName, RetrieveCredentials, c.RetrieveCredentials),
		cmdutil.NewCommandHandler(CommandName, GeneratePresentation, c.GeneratePresentation),
		cmdutil.NewCommandHandler(CommandName, SendPresentation, c.SendPresentation),
		cmdutil.NewCommandHandler(CommandName, DeclineRequest, c.DeclineRequest),
		cmdutil.NewCommandHandler(CommandName, UpdateProverState, c.UpdateProverState),
		cmdutil.NewCommandHandler(CommandName, GetProver, c.GetProver),
		cmdutil.NewCommandHandler(CommandName, ReleaseProver, c.ReleaseProver),
		cmdutil.NewCommandHandler(CommandName, ExportProver, c.ExportProver),
		cmdutil.NewCommandHandler(CommandName, ImportProver, c.ImportProver),
		cmdutil.NewCommandHandler(CommandName, Sessions, c.Sessions),
	}
}

// SendRequest sends a presentation request to the prover and opens a verifier session.
func (c *Command) SendRequest(rw io.Writer, req io.Reader) command.Error {
	var args SendRequestArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, SendRequest, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if args.ConnectionID == "" {
		logutil.LogDebug(logger, CommandName, SendRequest, errEmptyConnectionID)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyConnectionID))
	}

	if args.ProofRequest == nil {
		logutil.LogDebug(logger, CommandName, SendRequest, errEmptyProofRequest)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyProofRequest))
	}

	threadID, err := c.client.SendProofRequest(context.Background(), args.ConnectionID, *args.ProofRequest, args.Proposal)
	if err != nil {
		logutil.LogError(logger, CommandName, SendRequest, err.Error(),
			logutil.CreateKeyValueString("connectionID", args.ConnectionID))
		return command.NewExecuteError(SendRequestErrorCode, err)
	}

	command.WriteNillableResponse(rw, &SendRequestResponse{ThreadID: threadID}, logger)

	logutil.LogDebug(logger, CommandName, SendRequest, successString,
		logutil.CreateKeyValueString("threadID", threadID))

	return nil
}

// VerifyPresentation verifies a presentation and answers the prover.
func (c *Command) VerifyPresentation(rw io.Writer, req io.Reader) command.Error {
	var args VerifyPresentationArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, VerifyPresentation, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if args.ThreadID == "" {
		logutil.LogDebug(logger, CommandName, VerifyPresentation, errEmptyThreadID)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyThreadID))
	}

	status, err := c.client.VerifyPresentation(context.Background(), args.ThreadID, args.Presentation)
	if err != nil {
		logutil.LogError(logger, CommandName, VerifyPresentation, err.Error(),
			logutil.CreateKeyValueString("threadID", args.ThreadID))
		return command.NewExecuteError(VerifyPresentationErrorCode, err)
	}

	command.WriteNillableResponse(rw, &VerifyPresentationResponse{Status: status}, logger)

	logutil.LogDebug(logger, CommandName, VerifyPresentation, successString)

	return nil
}

// UpdateVerifierState advances a verifier session.
func (c *Command) UpdateVerifierState(rw io.Writer, req io.Reader) command.Error {
	args, msg, cmdErr := decodeUpdateState(req, UpdateVerifierState)
	if cmdErr != nil {
		return cmdErr
	}

	state, err := c.client.UpdateVerifierState(context.Background(), args.ThreadID, msg)
	if err != nil {
		logutil.LogError(logger, CommandName, UpdateVerifierState, err.Error(),
			logutil.CreateKeyValueString("threadID", args.ThreadID))
		return command.NewExecuteError(UpdateStateErrorCode, err)
	}

	command.WriteNillableResponse(rw, &UpdateStateResponse{State: string(state)}, logger)

	logutil.LogDebug(logger, CommandName, UpdateVerifierState, successString)

	return nil
}

// GetVerifier returns a verifier session.
func (c *Command) GetVerifier(rw io.Writer, req io.Reader) command.Error {
	args, cmdErr := decodeThread(req, GetVerifier)
	if cmdErr != nil {
		return cmdErr
	}

	s, err := c.client.VerifierSession(args.ThreadID)
	if err != nil {
		logutil.LogError(logger, CommandName, GetVerifier, err.Error(),
			logutil.CreateKeyValueString("threadID", args.ThreadID))
		return command.NewExecuteError(SessionErrorCode, err)
	}

	command.WriteNillableResponse(rw, &VerifierResponse{
		ThreadID:     s.Verifier.ThreadID(),
		ConnectionID: s.ConnectionID,
		SourceID:     s.Verifier.SourceID(),
		State:        s.Verifier.State(),
		Status:       s.Verifier.VerificationStatus(),
		Presentation: s.Verifier.Presentation(),
	}, logger)

	logutil.LogDebug(logger, CommandName, GetVerifier, successString)

	return nil
}

// ReleaseVerifier drops a verifier session.
func (c *Command) ReleaseVerifier(rw io.Writer, req io.Reader) command.Error {
	return c.release(rw, req, ReleaseVerifier, c.client.ReleaseVerifier)
}

// ExportVerifier returns the serialized form of a verifier session.
func (c *Command) ExportVerifier(rw io.Writer, req io.Reader) command.Error {
	return c.export(rw, req, ExportVerifier, c.client.VerifierToString)
}

// ImportVerifier restores a serialized verifier session.
func (c *Command) ImportVerifier(rw io.Writer, req io.Reader) command.Error {
	return c.restore(rw, req, ImportVerifier, c.client.VerifierFromString)
}

// ReceiveRequest opens a prover session from a received presentation request.
func (c *Command) ReceiveRequest(rw io.Writer, req io.Reader) command.Error {
	var args ReceiveRequestArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, ReceiveRequest, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if args.ConnectionID == "" {
		logutil.LogDebug(logger, CommandName, ReceiveRequest, errEmptyConnectionID)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyConnectionID))
	}

	if args.RequestPresentation == nil {
		logutil.LogDebug(logger, CommandName, ReceiveRequest, errEmptyRequestPresentation)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyRequestPresentation))
	}

	threadID, err := c.client.ReceiveProofRequest(context.Background(), args.ConnectionID, args.SourceID, args.RequestPresentation)
	if err != nil {
		logutil.LogError(logger, CommandName, ReceiveRequest, err.Error(),
			logutil.CreateKeyValueString("connectionID", args.ConnectionID))
		return command.NewExecuteError(ReceiveRequestErrorCode, err)
	}

	command.WriteNillableResponse(rw, &ThreadResponse{ThreadID: threadID}, logger)

	logutil.LogDebug(logger, CommandName, ReceiveRequest, successString)

	return nil
}

// SendProposal proposes a presentation to the verifier and opens a prover session.
func (c *Command) SendProposal(rw io.Writer, req io.Reader) command.Error {
	var args SendProposalArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, SendProposal, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if args.ConnectionID == "" {
		logutil.LogDebug(logger, CommandName, SendProposal, errEmptyConnectionID)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyConnectionID))
	}

	threadID, err := c.client.SendProposal(context.Background(), args.ConnectionID, args.SourceID,
		args.PresentationPreview, args.Comment)
	if err != nil {
		logutil.LogError(logger, CommandName, SendProposal, err.Error(),
			logutil.CreateKeyValueString("connectionID", args.ConnectionID))
		return command.NewExecuteError(SendProposalErrorCode, err)
	}

	command.WriteNillableResponse(rw, &ThreadResponse{ThreadID: threadID}, logger)

	logutil.LogDebug(logger, CommandName, SendProposal, successString)

	return nil
}

// RetrieveCredentials lists the credentials able to answer a prover session's request.
func (c *Command) RetrieveCredentials(rw io.Writer, req io.Reader) command.Error {
	args, cmdErr := decodeThread(req, RetrieveCredentials)
	if cmdErr != nil {
		return cmdErr
	}

	set, err := c.client.RetrieveCredentials(context.Background(), args.ThreadID)
	if err != nil {
		logutil.LogError(logger, CommandName, RetrieveCredentials, err.Error(),
			logutil.CreateKeyValueString("threadID", args.ThreadID))
		return command.NewExecuteError(RetrieveCredentialsErrorCode, err)
	}

	command.WriteNillableResponse(rw, &RetrieveCredentialsResponse{Credentials: set}, logger)

	logutil.LogDebug(logger, CommandName, RetrieveCredentials, successString)

	return nil
}

// GeneratePresentation builds the presentation of a prover session.
func (c *Command) GeneratePresentation(rw io.Writer, req io.Reader) command.Error {
	var args GeneratePresentationArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, GeneratePresentation, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if args.ThreadID == "" {
		logutil.LogDebug(logger, CommandName, GeneratePresentation, errEmptyThreadID)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyThreadID))
	}

	err := c.client.GeneratePresentation(context.Background(), args.ThreadID, args.SelectedCredentials, args.SelfAttestedAttrs)
	if err != nil {
		logutil.LogError(logger, CommandName, GeneratePresentation, err.Error(),
			logutil.CreateKeyValueString("threadID", args.ThreadID))
		return command.NewExecuteError(GeneratePresentationErrorCode, err)
	}

	command.WriteNillableResponse(rw, &EmptyResponse{}, logger)

	logutil.LogDebug(logger, CommandName, GeneratePresentation, successString)

	return nil
}

// SendPresentation sends the generated presentation to the verifier.
func (c *Command) SendPresentation(rw io.Writer, req io.Reader) command.Error {
	args, cmdErr := decodeThread(req, SendPresentation)
	if cmdErr != nil {
		return cmdErr
	}

	if err := c.client.SendPresentation(context.Background(), args.ThreadID); err != nil {
		logutil.LogError(logger, CommandName, SendPresentation, err.Error(),
			logutil.CreateKeyValueString("threadID", args.ThreadID))
		return command.NewExecuteError(SendPresentationErrorCode, err)
	}

	command.WriteNillableResponse(rw, &EmptyResponse{}, logger)

	logutil.LogDebug(logger, CommandName, SendPresentation, successString)

	return nil
}

// DeclineRequest refuses the presentation request of a prover session.
func (c *Command) DeclineRequest(rw io.Writer, req io.Reader) command.Error {
	var args DeclineRequestArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, DeclineRequest, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if args.ThreadID == "" {
		logutil.LogDebug(logger, CommandName, DeclineRequest, errEmptyThreadID)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyThreadID))
	}

	if err := c.client.DeclinePresentationRequest(context.Background(), args.ThreadID, args.Reason, args.Proposal); err != nil {
		logutil.LogError(logger, CommandName, DeclineRequest, err.Error(),
			logutil.CreateKeyValueString("threadID", args.ThreadID))
		return command.NewExecuteError(DeclineRequestErrorCode, err)
	}

	command.WriteNillableResponse(rw, &EmptyResponse{}, logger)

	logutil.LogDebug(logger, CommandName, DeclineRequest, successString)

	return nil
}

// UpdateProverState advances a prover session.
func (c *Command) UpdateProverState(rw io.Writer, req io.Reader) command.Error {
	args, msg, cmdErr := decodeUpdateState(req, UpdateProverState)
	if cmdErr != nil {
		return cmdErr
	}

	state, err := c.client.UpdateProverState(context.Background(), args.ThreadID, msg)
	if err != nil {
		logutil.LogError(logger, CommandName, UpdateProverState, err.Error(),
			logutil.CreateKeyValueString("threadID", args.ThreadID))
		return command.NewExecuteError(UpdateStateErrorCode, err)
	}

	command.WriteNillableResponse(rw, &UpdateStateResponse{State: string(state)}, logger)

	logutil.LogDebug(logger, CommandName, UpdateProverState, successString)

	return nil
}

// GetProver returns a prover session.
func (c *Command) GetProver(rw io.Writer, req io.Reader) command.Error {
	args, cmdErr := decodeThread(req, GetProver)
	if cmdErr != nil {
		return cmdErr
	}

	s, err := c.client.ProverSession(args.ThreadID)
	if err != nil {
		logutil.LogError(logger, CommandName, GetProver, err.Error(),
			logutil.CreateKeyValueString("threadID", args.ThreadID))
		return command.NewExecuteError(SessionErrorCode, err)
	}

	resp := &ProverResponse{
		ThreadID:     s.Prover.ThreadID(),
		ConnectionID: s.ConnectionID,
		SourceID:     s.Prover.SourceID(),
		State:        s.Prover.State(),
		Status:       s.Prover.PresentationStatus(),
	}

	if s.Prover.Request() != nil {
		resp.ProofRequest, err = s.Prover.ProofRequest()
		if err != nil {
			logutil.LogError(logger, CommandName, GetProver, err.Error(),
				logutil.CreateKeyValueString("threadID", args.ThreadID))
			return command.NewExecuteError(SessionErrorCode, err)
		}
	}

	command.WriteNillableResponse(rw, resp, logger)

	logutil.LogDebug(logger, CommandName, GetProver, successString)

	return nil
}

// ReleaseProver drops a prover session.
func (c *Command) ReleaseProver(rw io.Writer, req io.Reader) command.Error {
	return c.release(rw, req, ReleaseProver, c.client.ReleaseProver)
}

// ExportProver returns the serialized form of a prover session.
func (c *Command) ExportProver(rw io.Writer, req io.Reader) command.Error {
	return c.export(rw, req, ExportProver, c.client.ProverToString)
}

// ImportProver restores a serialized prover session.
func (c *Command) ImportProver(rw io.Writer, req io.Reader) command.Error {
	return c.restore(rw, req, ImportProver, c.client.ProverFromString)
}

// Sessions lists every verifier and prover session.
func (c *Command) Sessions(rw io.Writer, _ io.Reader) command.Error {
	command.WriteNillableResponse(rw, &SessionsResponse{Sessions: c.client.Sessions()}, logger)

	logutil.LogDebug(logger, CommandName, Sessions, successString)

	return nil
}

func (c *Command) release(rw io.Writer, req io.Reader, name string, release func(string) error) command.Error {
	args, cmdErr := decodeThread(req, name)
	if cmdErr != nil {
		return cmdErr
	}

	if err := release(args.ThreadID); err != nil {
		logutil.LogError(logger, CommandName, name, err.Error(),
			logutil.CreateKeyValueString("threadID", args.ThreadID))
		return command.NewExecuteError(ReleaseErrorCode, err)
	}

	command.WriteNillableResponse(rw, &EmptyResponse{}, logger)

	logutil.LogDebug(logger, CommandName, name, successString)

	return nil
}

func (c *Command) export(rw io.Writer, req io.Reader, name string,
	toString func(string) (string, error)) command.Error {
	args, cmdErr := decodeThread(req, name)
	if cmdErr != nil {
		return cmdErr
	}

	data, err := toString(args.ThreadID)
	if err != nil {
		logutil.LogError(logger, CommandName, name, err.Error(),
			logutil.CreateKeyValueString("threadID", args.ThreadID))
		return command.NewExecuteError(ExportErrorCode, err)
	}

	command.WriteNillableResponse(rw, &ExportResponse{Data: data}, logger)

	logutil.LogDebug(logger, CommandName, name, successString)

	return nil
}

func (c *Command) restore(rw io.Writer, req io.Reader, name string,
	fromString func(string, string) (string, error)) command.Error {
	var args ImportArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, name, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if args.ConnectionID == "" {
		logutil.LogDebug(logger, CommandName, name, errEmptyConnectionID)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyConnectionID))
	}

	if args.Data == "" {
		logutil.LogDebug(logger, CommandName, name, errEmptySessionData)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptySessionData))
	}

	threadID, err := fromString(args.ConnectionID, args.Data)
	if err != nil {
		logutil.LogError(logger, CommandName, name, err.Error(),
			logutil.CreateKeyValueString("connectionID", args.ConnectionID))
		return command.NewExecuteError(ImportErrorCode, err)
	}

	command.WriteNillableResponse(rw, &ThreadResponse{ThreadID: threadID}, logger)

	logutil.LogDebug(logger, CommandName, name, successString)

	return nil
}

func decodeThread(req io.Reader, name string) (*ThreadArgs, command.Error) {
	var args ThreadArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, name, err.Error())
		return nil, command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if args.ThreadID == "" {
		logutil.LogDebug(logger, CommandName, name, errEmptyThreadID)
		return nil, command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyThreadID))
	}

	return &args, nil
}

func decodeUpdateState(req io.Reader, name string) (*UpdateStateArgs, protocol.Message, command.Error) {
	var args UpdateStateArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, name, err.Error())
		return nil, nil, command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if args.ThreadID == "" {
		logutil.LogDebug(logger, CommandName, name, errEmptyThreadID)
		return nil, nil, command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyThreadID))
	}

	if len(args.Message) == 0 || string(args.Message) == "null" {
		return &args, nil, nil
	}

	msg, err := protocol.ParseMessage(args.Message)
	if err != nil {
		logutil.LogInfo(logger, CommandName, name, err.Error())
		return nil, nil, command.NewValidationError(InvalidRequestErrorCode, err)
	}

	return &args, msg, nil
}
