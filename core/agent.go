package core

// ToolChoice controls whether a generated reply may call tools (including
// transfer_to_agent).
type ToolChoice string

const (
	// ToolChoiceAuto lets the model call tools. Used for ordinary turns.
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceNone forbids tool calls. Used for the reply that directly
	// follows an activation.
	ToolChoiceNone ToolChoice = "none"
)

// Agent is the capability every agent variant implements.
//
// Agents are stateless between turns apart from their Record. An instance is
// created at session start, registered once, and lives until the session ends;
// deactivated agents keep their record so a later activation of another agent
// can merge from it.
//
// Implementations must:
//   - Leave Record and TaskState untouched when HandleTurn returns an error
//   - Never request a transfer from a turn run with ToolChoiceNone
type Agent interface {
	Name() string
	Description() string
	Record() *Record

	// Activate runs when the session makes this agent current: it imports
	// history from the previous agent and appends the grounding item.
	Activate(tc *TurnContext) (*ActivationReport, error)

	// HandleTurn produces the agent's reply. input is nil for replies that
	// are not driven by new user input (the post-activation reply).
	HandleTurn(tc *TurnContext, input *Item, choice ToolChoice) (*TurnResult, error)
}

// ActivationReport describes what an activation did to the agent's record.
type ActivationReport struct {
	Agent         string
	PreviousAgent string // empty on first activation
	Merged        int    // items copied from the previous agent
	Duplicates    int    // window items skipped because their ID was present
	Anomalies     int    // malformed items (missing or repeated IDs)
	GroundingID   string // identifier of the appended grounding item
}

// TurnResult is what a committed turn produced.
type TurnResult struct {
	// Items appended to the agent's record, in order (input included).
	Items []Item
	// TransferTo names the agent to hand off to; empty when no transfer was
	// requested.
	TransferTo string
}
