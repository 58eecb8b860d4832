package handoff

import (
	"fmt"

	"github.com/hupe1980/agentrelay/core"
)

// GroundingText renders the directive appended on every activation.
func GroundingText(agentName string, state *core.TaskState) string {
	return fmt.Sprintf("You are %s agent. Current user data is %s", agentName, state.Summarize())
}

// NewGroundingItem builds the system item carrying GroundingText, authored by
// the activated agent.
func NewGroundingItem(agentName string, state *core.TaskState) core.Item {
	return core.NewSystemItem(agentName, GroundingText(agentName, state))
}
