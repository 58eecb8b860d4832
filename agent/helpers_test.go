package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/artifact"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
)

type fixture struct {
	state    *core.TaskState
	greeting *ModelAgent
	finder   *ModelAgent
	gLLM     *model.MockModel
	fLLM     *model.MockModel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gLLM := model.NewMockModel("mock-greeting", "mock")
	fLLM := model.NewMockModel("mock-finder", "mock")
	greeting := NewGreeting(gLLM)
	finder := NewModelAgent("Finder", fLLM, func(o *ModelAgentOptions) {
		o.Description = "searches the rooms"
	})

	reg, err := core.NewRegistry(greeting, finder)
	require.NoError(t, err)
	state, err := core.NewTaskState("keys", reg)
	require.NoError(t, err)

	return &fixture{state: state, greeting: greeting, finder: finder, gLLM: gLLM, fLLM: fLLM}
}

func (f *fixture) turn(maxModelCalls int) *core.TurnContext {
	return core.NewTurnContext(context.Background(), "sess-1", f.state, artifact.NewInMemoryStore(), maxModelCalls, logging.NoOpLogger{})
}

func userInput(text string) *core.Item {
	it := core.NewUserItem(text)
	return &it
}

func call(id, name, args string) core.FunctionCall {
	return core.FunctionCall{ID: id, Name: name, Arguments: args}
}
