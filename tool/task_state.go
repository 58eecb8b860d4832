package tool

import (
	"github.com/hupe1980/agentrelay/core"
)

// Names of the task state tools.
const (
	UpdateUserLocationName = "update_user_location"
	RecordObjectFoundName  = "record_object_found"
	SetObjectImageName     = "set_object_image"
	GetTaskStateName       = "get_task_state"
)

type userLocationArgs struct {
	Location string `json:"location" description:"Where the user is" minLength:"1"`
}

type objectLocationArgs struct {
	Location string `json:"location" description:"Where the object was found" minLength:"1"`
}

type objectImageArgs struct {
	URI string `json:"uri" description:"Image URI or artifact:// reference" minLength:"1"`
}

type noArgs struct{}

// NewUpdateUserLocationTool stages the user's current location.
func NewUpdateUserLocationTool() Tool {
	return NewFunctionToolFromStruct(
		UpdateUserLocationName,
		"Record where the user currently is, for example a room of the house.",
		userLocationArgs{},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			loc, _ := stringArg(args, "location")
			tc.SetUserLocation(loc)
			return map[string]any{"user_location": loc}, nil
		},
	)
}

// NewRecordObjectFoundTool marks the sought object as found at a location.
func NewRecordObjectFoundTool() Tool {
	return NewFunctionToolFromStruct(
		RecordObjectFoundName,
		"Record that the object the user is looking for has been found and where.",
		objectLocationArgs{},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			loc, _ := stringArg(args, "location")
			tc.MarkObjectFound(loc)
			return map[string]any{
				"object_found":    true,
				"object_location": loc,
				"object_to_find":  tc.TaskState().ObjectToFind(),
			}, nil
		},
	)
}

// NewSetObjectImageTool stores a reference (URI or artifact reference) to an
// image of the object.
func NewSetObjectImageTool() Tool {
	return NewFunctionToolFromStruct(
		SetObjectImageName,
		"Attach a reference to an image showing the object.",
		objectImageArgs{},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			uri, _ := stringArg(args, "uri")
			if id, ok := core.ParseArtifactRef(uri); ok {
				if _, err := tc.LoadArtifact(id); err != nil {
					return nil, err
				}
			}
			tc.SetObjectImage(uri)
			return map[string]any{"object_image": uri}, nil
		},
	)
}

// NewGetTaskStateTool returns the current task state summary, including
// writes staged earlier in the turn.
func NewGetTaskStateTool() Tool {
	return NewFunctionToolFromStruct(
		GetTaskStateName,
		"Return the current shared task state.",
		noArgs{},
		func(tc *core.ToolContext, _ map[string]any) (any, error) {
			return tc.TaskState().Summarize(), nil
		},
	)
}

// TaskStateTools returns every task state tool.
func TaskStateTools() []Tool {
	return []Tool{
		NewUpdateUserLocationTool(),
		NewRecordObjectFoundTool(),
		NewSetObjectImageTool(),
		NewGetTaskStateTool(),
	}
}
