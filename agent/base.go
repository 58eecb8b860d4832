package agent

import (
	"fmt"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/handoff"
)

// BaseAgent bundles identity, the owned record and the activation lifecycle.
// Embed it in concrete agents and supply HandleTurn to satisfy core.Agent.
type BaseAgent struct {
	name        string
	description string
	record      *core.Record
	mergeWindow int
}

// NewBaseAgent constructs a BaseAgent with an empty record and generated
// description (customizable via SetDescription).
func NewBaseAgent(name string) BaseAgent {
	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Agent %s", name),
		record:      core.NewRecord(name),
		mergeWindow: handoff.DefaultMaxItems,
	}
}

// Name returns the registry name of this agent.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of this agent's purpose.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the agent's description. It is shown to other
// agents' models in the transfer tool.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }

// Record returns the agent's conversation record.
func (b *BaseAgent) Record() *core.Record { return b.record }

// SetMergeWindow changes how many items an activation imports; n <= 0
// restores the default.
func (b *BaseAgent) SetMergeWindow(n int) {
	if n <= 0 {
		n = handoff.DefaultMaxItems
	}
	b.mergeWindow = n
}

// Activate imports history from the previous agent, if any, and appends the
// grounding item. It runs on every activation, including re-entry of an agent
// that was active before.
func (b *BaseAgent) Activate(tc *core.TurnContext) (*core.ActivationReport, error) {
	tc.LogInfo("agent.activate.start", "agent", b.name)

	report := &core.ActivationReport{Agent: b.name}

	if prev, ok := tc.PreviousAgent(); ok {
		report.PreviousAgent = prev.Name()
		res, err := handoff.Merge(b.record, prev.Record(), func(o *handoff.Options) {
			o.MaxItems = b.mergeWindow
			o.Logger = tc.Logger()
		})
		if err != nil {
			return nil, fmt.Errorf("activate %s: %w", b.name, err)
		}
		report.Merged = len(res.Copied)
		report.Duplicates = res.Duplicates
		report.Anomalies = res.Anomalies
	}

	grounding := handoff.NewGroundingItem(b.name, tc.State)
	if err := b.record.Append(grounding); err != nil {
		return nil, fmt.Errorf("activate %s: %w", b.name, err)
	}
	report.GroundingID = grounding.ID

	tc.LogInfo(
		"agent.activate.complete",
		"agent", b.name,
		"prev_agent", report.PreviousAgent,
		"merged", report.Merged,
		"duplicates", report.Duplicates,
		"anomalies", report.Anomalies,
	)
	return report, nil
}
