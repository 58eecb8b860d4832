package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/artifact"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/perception"
)

type stubAgent struct {
	name   string
	record *core.Record
}

func (a *stubAgent) Name() string         { return a.name }
func (a *stubAgent) Description() string  { return "helps with " + a.name }
func (a *stubAgent) Record() *core.Record { return a.record }
func (a *stubAgent) Activate(*core.TurnContext) (*core.ActivationReport, error) {
	return &core.ActivationReport{Agent: a.name}, nil
}
func (a *stubAgent) HandleTurn(*core.TurnContext, *core.Item, core.ToolChoice) (*core.TurnResult, error) {
	return &core.TurnResult{}, nil
}

func newToolContext(t *testing.T, object string) (*core.ToolContext, *core.TaskState, *artifact.InMemoryStore) {
	t.Helper()
	reg, err := core.NewRegistry(
		&stubAgent{name: "Greeting", record: core.NewRecord("Greeting")},
		&stubAgent{name: "Finder", record: core.NewRecord("Finder")},
	)
	require.NoError(t, err)
	state, err := core.NewTaskState(object, reg)
	require.NoError(t, err)

	store := artifact.NewInMemoryStore()
	turn := core.NewTurnContext(context.Background(), "sess-1", state, store, 0, logging.NoOpLogger{})
	return core.NewToolContext(turn, "Greeting", "call-1", nil), state, store
}

// -------------------- FunctionTool --------------------

func TestFunctionToolValidation(t *testing.T) {
	tc, _, _ := newToolContext(t, "keys")

	_, err := NewUpdateUserLocationTool().Call(tc, map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)

	_, err = NewUpdateUserLocationTool().Call(tc, map[string]any{"location": ""})
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)
	assert.True(t, tc.Actions().StateDelta.IsEmpty())
}

func TestFunctionToolErrorNormalization(t *testing.T) {
	tc, _, _ := newToolContext(t, "keys")

	plain := NewFunctionTool("boom", "fails", map[string]any{"type": "object"},
		func(*core.ToolContext, map[string]any) (any, error) { return nil, errors.New("backend down") })
	_, err := plain.Call(tc, map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Equal(t, "backend down", toolErr.Message)

	cfg := NewFunctionTool("cfg", "misconfigured", map[string]any{"type": "object"},
		func(*core.ToolContext, map[string]any) (any, error) {
			return nil, &core.ConfigError{Op: "lookup", Err: core.ErrUnknownAgent}
		})
	_, err = cfg.Call(tc, map[string]any{})
	assert.True(t, core.IsConfigError(err))
}

func TestFunctionToolFromStruct(t *testing.T) {
	type args struct {
		Room string `json:"room" description:"Room name"`
	}
	ft := NewFunctionToolFromStruct("room", "Pick a room", args{}, func(_ *core.ToolContext, a map[string]any) (any, error) {
		return a["room"], nil
	})
	tc, _, _ := newToolContext(t, "keys")
	out, err := ft.Call(tc, map[string]any{"room": "hall"})
	require.NoError(t, err)
	assert.Equal(t, "hall", out)
}

func TestDefinitions(t *testing.T) {
	defs := Definitions(append(TaskStateTools(), NewTransferToAgentTool()))
	require.Len(t, defs, 5)
	assert.Equal(t, "function", defs[0].Type)
	assert.Equal(t, UpdateUserLocationName, defs[0].Function.Name)
	assert.Equal(t, TransferToAgentName, defs[4].Function.Name)
}

// -------------------- transfer_to_agent --------------------

func TestTransferToAgent(t *testing.T) {
	tc, state, _ := newToolContext(t, "keys")
	before := state.Snapshot()

	out, err := NewTransferToAgentTool().Call(tc, map[string]any{"agent_name": "Finder"})
	require.NoError(t, err)
	assert.Equal(t, "Transferring to Finder.", out)
	assert.Equal(t, "Finder", tc.Actions().TransferToAgent)
	assert.Equal(t, before, state.Snapshot())
}

func TestTransferToAgentUnknown(t *testing.T) {
	tc, state, _ := newToolContext(t, "keys")
	before := state.Snapshot()

	_, err := NewTransferToAgentTool().Call(tc, map[string]any{"agent_name": "unknown"})
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
	assert.ErrorIs(t, err, core.ErrUnknownAgent)
	assert.Empty(t, tc.Actions().TransferToAgent)
	assert.Equal(t, before, state.Snapshot())

	_, err = NewTransferToAgentTool().Call(tc, map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
}

func TestTransferToAgentDescriptionListsAgents(t *testing.T) {
	tr := NewTransferToAgentTool(&stubAgent{name: "Finder"})
	assert.Contains(t, tr.Description(), "Finder: helps with Finder")
}

// -------------------- task state tools --------------------

func TestTaskStateToolsStageOnly(t *testing.T) {
	tc, state, _ := newToolContext(t, "keys")

	_, err := NewUpdateUserLocationTool().Call(tc, map[string]any{"location": "kitchen"})
	require.NoError(t, err)
	_, err = NewRecordObjectFoundTool().Call(tc, map[string]any{"location": "on the counter"})
	require.NoError(t, err)
	_, err = NewSetObjectImageTool().Call(tc, map[string]any{"uri": "https://example.com/keys.jpg"})
	require.NoError(t, err)

	assert.Empty(t, state.UserLocation)
	assert.False(t, state.ObjectFound)

	summary, err := NewGetTaskStateTool().Call(tc, map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, summary, "user_location: kitchen")
	assert.Contains(t, summary, "object_found: true")
	assert.Contains(t, summary, "object_location: on the counter")

	state.Apply(tc.Actions().StateDelta)
	assert.Equal(t, "kitchen", state.UserLocation)
	assert.True(t, state.ObjectFound)
	assert.Equal(t, "https://example.com/keys.jpg", state.ObjectImage)
}

func TestSetObjectImageChecksArtifact(t *testing.T) {
	tc, _, store := newToolContext(t, "keys")

	_, err := NewSetObjectImageTool().Call(tc, map[string]any{"uri": core.ArtifactRef("missing")})
	require.Error(t, err)
	assert.Nil(t, tc.Actions().StateDelta.ObjectImage)

	require.NoError(t, store.Save("sess-1", "frame-1", []byte("jpeg")))
	_, err = NewSetObjectImageTool().Call(tc, map[string]any{"uri": core.ArtifactRef("frame-1")})
	require.NoError(t, err)
	assert.Equal(t, core.ArtifactRef("frame-1"), *tc.Actions().StateDelta.ObjectImage)
}

// -------------------- detect_objects --------------------

type bytesDetector struct {
	labels []string
	got    []byte
}

func (d *bytesDetector) Detect(context.Context, string) ([]string, error) {
	return nil, errors.New("path detection not expected")
}

func (d *bytesDetector) DetectImage(_ context.Context, data []byte) ([]string, error) {
	d.got = data
	return d.labels, nil
}

func TestDetectObjectsFound(t *testing.T) {
	tc, _, _ := newToolContext(t, "Keys")
	tc.SetUserLocation("hallway")

	var gotImage string
	det := perception.DetectorFunc(func(_ context.Context, image string) ([]string, error) {
		gotImage = image
		return []string{"shoe", "keys"}, nil
	})

	out, err := NewDetectObjectsTool(det).Call(tc, map[string]any{"image": "/tmp/frame.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/frame.jpg", gotImage)
	assert.Equal(t, true, out.(map[string]any)["found"])

	preview := tc.TaskState()
	assert.True(t, preview.ObjectFound)
	assert.Equal(t, "hallway", preview.ObjectLocation)
	assert.Equal(t, "/tmp/frame.jpg", preview.ObjectImage)
}

func TestDetectObjectsUsesAttachedArtifact(t *testing.T) {
	tc, _, store := newToolContext(t, "keys")
	require.NoError(t, store.Save("sess-1", "frame-7", []byte{1, 2, 3}))
	tc.SetObjectImage(core.ArtifactRef("frame-7"))

	det := &bytesDetector{labels: []string{"cup"}}
	out, err := NewDetectObjectsTool(det).Call(tc, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, det.got)
	assert.Equal(t, false, out.(map[string]any)["found"])
	assert.Nil(t, tc.Actions().StateDelta.ObjectFound)
}

func TestDetectObjectsErrors(t *testing.T) {
	tc, _, _ := newToolContext(t, "keys")

	_, err := NewDetectObjectsTool(perception.DetectorFunc(nil)).Call(tc, map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)

	failing := perception.DetectorFunc(func(context.Context, string) ([]string, error) {
		return nil, errors.New("timeout")
	})
	_, err = NewDetectObjectsTool(failing).Call(tc, map[string]any{"image": "a.jpg"})
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.True(t, tc.Actions().StateDelta.IsEmpty())
}
