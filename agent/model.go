package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/tool"
)

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Description string
	Instruction Instruction
	Tools       []tool.Tool
	// AllowTransfer offers transfer_to_agent to the model on ordinary turns.
	AllowTransfer bool
	// MaxHistoryItems bounds the record tail sent to the reply service;
	// zero sends the whole record.
	MaxHistoryItems int
	// MergeWindow bounds the items imported on activation.
	MergeWindow int
}

// ModelAgent answers turns with a reply service, executing tool calls until
// the model produces a plain reply or requests a transfer.
//
// Effects of a turn (new items and staged task state writes) are committed
// only after the turn finished successfully.
type ModelAgent struct {
	BaseAgent
	llm             model.Model
	instruction     Instruction
	tools           map[string]tool.Tool
	allowTransfer   bool
	maxHistoryItems int
}

// NewModelAgent creates a new model-based agent with sensible defaults:
// transfer enabled and a 20 item history window.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:     NewInstructionFromText(fmt.Sprintf("You are %s, a helpful assistant.", name)),
		AllowTransfer:   true,
		MaxHistoryItems: 20,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &ModelAgent{
		BaseAgent:       NewBaseAgent(name),
		llm:             llm,
		instruction:     opts.Instruction,
		tools:           make(map[string]tool.Tool, len(opts.Tools)),
		allowTransfer:   opts.AllowTransfer,
		maxHistoryItems: opts.MaxHistoryItems,
	}
	if opts.Description != "" {
		a.SetDescription(opts.Description)
	}
	a.SetMergeWindow(opts.MergeWindow)
	a.RegisterTools(opts.Tools...)
	return a
}

// RegisterTool adds a tool to the agent's capability set. Registering
// transfer_to_agent by hand is not needed; see ModelAgentOptions.AllowTransfer.
func (a *ModelAgent) RegisterTool(t tool.Tool) {
	a.tools[t.Name()] = t
}

// RegisterTools adds multiple tools to the agent's capability set.
func (a *ModelAgent) RegisterTools(tools ...tool.Tool) {
	for _, t := range tools {
		a.RegisterTool(t)
	}
}

// HasTool checks if a tool is registered with the agent.
func (a *ModelAgent) HasTool(name string) bool {
	_, exists := a.tools[name]
	return exists
}

// ListTools returns the names of all registered tools, sorted.
func (a *ModelAgent) ListTools() []string {
	names := make([]string, 0, len(a.tools))
	for name := range a.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Model returns the reply service of the agent.
func (a *ModelAgent) Model() model.Model { return a.llm }

// turnTools returns the tools offered this turn keyed by name, plus their
// declarations in a stable order.
func (a *ModelAgent) turnTools(tc *core.TurnContext) (map[string]tool.Tool, []model.ToolDefinition) {
	tools := make(map[string]tool.Tool, len(a.tools)+1)
	for name, t := range a.tools {
		tools[name] = t
	}
	if a.allowTransfer && tc.State != nil {
		var targets []core.Agent
		for _, name := range tc.State.Agents().Names() {
			if name == a.Name() {
				continue
			}
			if ag, err := tc.State.Agents().Lookup(name); err == nil {
				targets = append(targets, ag)
			}
		}
		tools[tool.TransferToAgentName] = tool.NewTransferToAgentTool(targets...)
	}

	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)
	ordered := make([]tool.Tool, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, tools[name])
	}
	return tools, tool.Definitions(ordered)
}

// HandleTurn runs one turn. input is appended first when present. With
// core.ToolChoiceNone the reply service is called once without tools and any
// call it still returns is dropped.
func (a *ModelAgent) HandleTurn(tc *core.TurnContext, input *core.Item, choice core.ToolChoice) (*core.TurnResult, error) {
	start := time.Now()
	tc.LogDebug("agent.turn.start", "agent", a.Name(), "tool_choice", string(choice))

	instructions, err := a.instruction.Resolve(tc)
	if err != nil {
		return nil, a.fail(tc, fmt.Errorf("resolve instruction: %w", err))
	}

	var staged []core.Item
	if input != nil {
		in := *input
		if in.ID == "" {
			in.ID = core.NewID()
		}
		staged = append(staged, in)
	}

	var (
		tools   map[string]tool.Tool
		defs    []model.ToolDefinition
		actions = &core.TurnActions{}
	)
	if choice != core.ToolChoiceNone {
		tools, defs = a.turnTools(tc)
	}

	for {
		if err := tc.Err(); err != nil {
			return nil, a.fail(tc, err)
		}
		if err := tc.Limiter.Increment(); err != nil {
			return nil, a.fail(tc, err)
		}

		req := model.Request{
			Instructions: instructions,
			Contents:     a.history(staged),
			Tools:        defs,
			ToolChoice:   choice,
		}
		respCh, errCh := a.llm.Generate(tc.Context, req)
		resp, err := model.Collect(tc.Context, respCh, errCh)
		if err != nil {
			return nil, a.fail(tc, err)
		}

		content := resp.Content
		content.Role = core.RoleAssistant
		calls := resp.FunctionCalls()
		if choice == core.ToolChoiceNone && len(calls) > 0 {
			tc.LogWarn("agent.turn.suppressed_calls", "agent", a.Name(), "calls", len(calls))
			content = withoutCalls(content)
			calls = nil
		}
		if len(content.Parts) > 0 {
			staged = append(staged, core.NewItem(a.Name(), &content))
		}
		if len(calls) == 0 {
			break
		}

		for _, call := range calls {
			result, err := a.callTool(tc, tools, actions, call)
			if err != nil && core.IsConfigError(err) {
				tc.LogError("agent.turn.config_error", "agent", a.Name(), "tool", call.Name, "error", err.Error())
				return nil, err
			}
			staged = append(staged, core.NewFunctionResponseItem(a.Name(), call.ID, call.Name, result, err))
		}

		if actions.TransferToAgent != "" {
			staged = append(staged, core.NewAssistantItem(a.Name(), core.TransferConfirmation(actions.TransferToAgent)))
			break
		}
	}

	if err := a.Record().Append(staged...); err != nil {
		return nil, a.fail(tc, err)
	}
	if tc.State != nil {
		tc.State.Apply(actions.StateDelta)
	}

	tc.LogInfo(
		"agent.turn.complete",
		"agent", a.Name(),
		"items", len(staged),
		"model_calls", tc.Limiter.Count(),
		"transfer_to", actions.TransferToAgent,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &core.TurnResult{Items: staged, TransferTo: actions.TransferToAgent}, nil
}

func (a *ModelAgent) fail(tc *core.TurnContext, err error) error {
	tc.LogError("agent.turn.failed", "agent", a.Name(), "error", err.Error())
	return &core.TurnError{Agent: a.Name(), Err: err}
}

// callTool executes one call against the shared turn actions. Unknown tools
// and undecodable arguments come back as tool errors for the model to see.
func (a *ModelAgent) callTool(tc *core.TurnContext, tools map[string]tool.Tool, actions *core.TurnActions, call core.FunctionCall) (any, error) {
	t, ok := tools[call.Name]
	if !ok {
		tc.LogWarn("agent.tool.unknown", "agent", a.Name(), "tool", call.Name)
		return nil, tool.NewToolError(call.Name, "tool not available", tool.CodeValidation)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return nil, tool.NewToolError(call.Name, fmt.Sprintf("invalid arguments: %v", err), tool.CodeValidation)
		}
	}

	toolCtx := core.NewToolContext(tc, a.Name(), call.ID, actions)
	result, err := t.Call(toolCtx, args)

	var toolErr *tool.ToolError
	if err != nil && !errors.As(err, &toolErr) && !core.IsConfigError(err) {
		err = &tool.ToolError{Tool: call.Name, Message: err.Error(), Code: tool.CodeExecution}
	}
	return result, err
}

// history builds the request contents: the record tail plus the items staged
// so far this turn. The latest instruction item is kept even when it falls
// outside the window.
func (a *ModelAgent) history(staged []core.Item) []core.Content {
	items := a.Record().Items()
	if a.maxHistoryItems > 0 && len(items) > a.maxHistoryItems {
		window := core.NewRecordFromItems(a.Name(), items).Truncate(a.maxHistoryItems).Items()
		if !hasInstruction(window) {
			for i := len(items) - 1; i >= 0; i-- {
				if items[i].IsInstruction() {
					window = append([]core.Item{items[i]}, window...)
					break
				}
			}
		}
		items = window
	}

	contents := make([]core.Content, 0, len(items)+len(staged))
	for _, it := range append(items, staged...) {
		if it.Content != nil {
			contents = append(contents, *it.Content)
		}
	}
	return contents
}

func hasInstruction(items []core.Item) bool {
	for _, it := range items {
		if it.IsInstruction() {
			return true
		}
	}
	return false
}

func withoutCalls(c core.Content) core.Content {
	parts := make([]core.Part, 0, len(c.Parts))
	for _, p := range c.Parts {
		if _, ok := p.(core.FunctionCallPart); ok {
			continue
		}
		parts = append(parts, p)
	}
	return core.Content{Role: c.Role, Parts: parts}
}
