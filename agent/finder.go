package agent

import (
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/perception"
	"github.com/hupe1980/agentrelay/tool"
)

// FinderName is the registry name of the search agent.
const FinderName = "Finder"

const finderInstruction = `You guide the user through the search for their {{.object_to_find}}.
The user is in {{default "an unknown place" .user_location}}.
Suggest one place to look at a time and keep answers short; they are spoken aloud.
When the user shows you the scene, check it for the object before answering.
Once the object is found, record where it was and congratulate the user.`

// NewFinder creates the search agent. With a non-nil detector it can check
// attached camera frames with detect_objects.
func NewFinder(llm model.Model, detector perception.Detector, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	tools := tool.TaskStateTools()
	if detector != nil {
		tools = append(tools, tool.NewDetectObjectsTool(detector))
	}
	fns := append([]func(o *ModelAgentOptions){func(o *ModelAgentOptions) {
		o.Description = "helps the user search for the object, room by room"
		o.Instruction = NewInstructionFromText(finderInstruction)
		o.Tools = tools
	}}, optFns...)
	return NewModelAgent(FinderName, llm, fns...)
}
