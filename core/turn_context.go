package core

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrelay/logging"
)

// TurnContext carries the execution scope of one turn (an activation plus its
// reply, or one user input and its reply):
//   - The cancellation Context
//   - Identifiers (SessionID, TurnID)
//   - The session's TaskState (shared by reference)
//   - The session's artifact store, if any
//   - A model call budget
//
// TaskState is read directly; writes made by tools are staged in TurnActions
// and applied only when the turn commits.
type TurnContext struct {
	Context   context.Context
	SessionID string
	TurnID    string
	State     *TaskState
	Artifacts ArtifactStore
	Limiter   *ModelLimiter

	*logScope
}

// NewTurnContext creates the scope for one turn.
func NewTurnContext(
	ctx context.Context,
	sessionID string,
	state *TaskState,
	artifacts ArtifactStore,
	maxModelCalls int,
	logger logging.Logger,
) *TurnContext {
	turnID := NewID()
	return &TurnContext{
		Context:   ctx,
		SessionID: sessionID,
		TurnID:    turnID,
		State:     state,
		Artifacts: artifacts,
		Limiter:   NewModelLimiter(maxModelCalls),
		logScope:  newLogScope(logger, "session", sessionID, "turn", turnID),
	}
}

// Err returns the cancellation error of the underlying context, if any.
func (tc *TurnContext) Err() error { return tc.Context.Err() }

// PreviousAgent resolves TaskState.PrevAgent through the registry.
func (tc *TurnContext) PreviousAgent() (Agent, bool) {
	if tc.State == nil {
		return nil, false
	}
	return tc.State.PreviousAgent()
}

// TransferConfirmation is the text surfaced to the user when a handoff to
// name is accepted.
func TransferConfirmation(name string) string {
	return fmt.Sprintf("Transferring to %s.", name)
}
