package tool

import (
	"fmt"
	"strings"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/internal/util"
)

// TransferToAgentName is the function name of the handoff tool.
const TransferToAgentName = "transfer_to_agent"

type transferToAgentTool struct {
	description string
}

// NewTransferToAgentTool constructs the handoff tool. The description lists
// the agents the model may transfer to, so the names it produces resolve in
// the session registry.
func NewTransferToAgentTool(agents ...core.Agent) Tool {
	desc := "Transfer the conversation to another agent by name. Use when another agent is better suited to continue."
	if len(agents) > 0 {
		lines := make([]string, 0, len(agents))
		for _, a := range agents {
			if d := a.Description(); d != "" {
				lines = append(lines, fmt.Sprintf("%s: %s", a.Name(), d))
			} else {
				lines = append(lines, a.Name())
			}
		}
		desc += " Available agents:\n" + strings.Join(lines, "\n")
	}
	return &transferToAgentTool{description: desc}
}

func (t *transferToAgentTool) Name() string { return TransferToAgentName }

func (t *transferToAgentTool) Description() string { return t.description }

type transferArgs struct {
	AgentName string `json:"agent_name" description:"Name of the agent to transfer to"`
}

func (t *transferToAgentTool) Parameters() map[string]any {
	return util.CreateSchema(transferArgs{})
}

// Call stages the transfer. An unknown name surfaces as a *core.ConfigError
// and nothing is staged.
func (t *transferToAgentTool) Call(tc *core.ToolContext, args map[string]any) (any, error) {
	name, ok := stringArg(args, "agent_name")
	if !ok {
		return nil, NewToolError(TransferToAgentName, "field 'agent_name' must be a non-empty string", CodeValidation)
	}
	return tc.RequestTransfer(name)
}
