package agent

import (
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/tool"
)

// GreetingName is the registry name of the entry agent.
const GreetingName = "Greeting"

const greetingInstruction = `You are a friendly voice assistant helping a user find their {{.object_to_find}}.
Greet the user, ask where they are and where they last saw it.
Keep answers short; they are spoken aloud.
Record the user's location and the object's location with your tools as soon as you learn them.`

// NewGreeting creates the entry agent with the task state tools. Further
// tools (for example detect_objects) can be passed through opts.
func NewGreeting(llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	fns := append([]func(o *ModelAgentOptions){func(o *ModelAgentOptions) {
		o.Description = "greets the user and collects where they are and what they lost"
		o.Instruction = NewInstructionFromText(greetingInstruction)
		o.Tools = tool.TaskStateTools()
	}}, optFns...)
	return NewModelAgent(GreetingName, llm, fns...)
}
