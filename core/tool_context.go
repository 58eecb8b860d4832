package core

import (
	"context"
	"errors"

	"github.com/hupe1980/agentrelay/logging"
)

// ErrNoArtifactStore is returned by artifact accessors when the session has no
// store configured.
var ErrNoArtifactStore = errors.New("artifact store not configured")

// TurnActions accumulates the side effects tools request during a turn. They
// are applied by the agent only after the whole turn succeeds.
type TurnActions struct {
	StateDelta      TaskStateDelta
	TransferToAgent string
}

// ToolContext is the constrained surface handed to tool implementations.
// Reads see the session TaskState with this turn's staged delta applied;
// writes only touch the staged actions.
type ToolContext struct {
	turn           *TurnContext
	agentName      string
	functionCallID string
	actions        *TurnActions

	*logScope
}

// NewToolContext binds a tool invocation to its turn. actions is shared by all
// calls of the turn so later calls observe earlier staged writes.
func NewToolContext(turn *TurnContext, agentName, functionCallID string, actions *TurnActions) *ToolContext {
	if actions == nil {
		actions = &TurnActions{}
	}
	return &ToolContext{
		turn:           turn,
		agentName:      agentName,
		functionCallID: functionCallID,
		actions:        actions,
		logScope:       newLogScope(turn.Logger(), "function_call_id", functionCallID),
	}
}

func (tc *ToolContext) Context() context.Context { return tc.turn.Context }

func (tc *ToolContext) SessionID() string { return tc.turn.SessionID }

func (tc *ToolContext) TurnID() string { return tc.turn.TurnID }

func (tc *ToolContext) Logger() logging.Logger { return tc.logScope.Logger() }

func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// AgentName returns the name of the agent whose turn invoked the tool.
func (tc *ToolContext) AgentName() string { return tc.agentName }

// Actions returns the staged actions of the turn.
func (tc *ToolContext) Actions() *TurnActions { return tc.actions }

// TaskState returns a preview of the session state including staged writes.
func (tc *ToolContext) TaskState() *TaskState {
	return tc.turn.State.Preview(tc.actions.StateDelta)
}

// SetUserLocation stages a new user location.
func (tc *ToolContext) SetUserLocation(location string) {
	tc.actions.StateDelta.UserLocation = &location
	tc.LogDebug("tool.state.stage", "field", "user_location")
}

// MarkObjectFound stages object_found=true together with where it was found.
func (tc *ToolContext) MarkObjectFound(location string) {
	found := true
	tc.actions.StateDelta.ObjectFound = &found
	tc.actions.StateDelta.ObjectLocation = &location
	tc.LogDebug("tool.state.stage", "field", "object_found")
}

// SetObjectImage stages a reference to the image of the object.
func (tc *ToolContext) SetObjectImage(ref string) {
	tc.actions.StateDelta.ObjectImage = &ref
	tc.LogDebug("tool.state.stage", "field", "object_image")
}

// RequestTransfer validates name against the session registry and stages the
// handoff. It returns the confirmation text for the user. An unknown name is a
// configuration error and stages nothing.
func (tc *ToolContext) RequestTransfer(name string) (string, error) {
	if _, err := tc.turn.State.Agents().Lookup(name); err != nil {
		tc.LogWarn("tool.transfer.rejected", "from_agent", tc.agentName, "to_agent", name)
		return "", err
	}
	tc.actions.TransferToAgent = name
	tc.LogInfo("tool.transfer.request", "from_agent", tc.agentName, "to_agent", name)
	return TransferConfirmation(name), nil
}

// LoadArtifact retrieves a stored artifact of the session.
func (tc *ToolContext) LoadArtifact(id string) ([]byte, error) {
	if tc.turn.Artifacts == nil {
		return nil, ErrNoArtifactStore
	}
	return tc.turn.Artifacts.Get(tc.SessionID(), id)
}

// ListArtifacts returns the artifact ids stored for the session.
func (tc *ToolContext) ListArtifacts() ([]string, error) {
	if tc.turn.Artifacts == nil {
		return nil, ErrNoArtifactStore
	}
	return tc.turn.Artifacts.List(tc.SessionID())
}
