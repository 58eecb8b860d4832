package tool

import (
	"fmt"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/internal/util"
	"github.com/hupe1980/agentrelay/perception"
)

// DetectObjectsName is the function name of the detection tool.
const DetectObjectsName = "detect_objects"

type detectObjectsTool struct {
	detector perception.Detector
}

// NewDetectObjectsTool runs the perception service on an image. When the
// sought object is among the labels the tool stages object_found and the
// image reference.
func NewDetectObjectsTool(detector perception.Detector) Tool {
	return &detectObjectsTool{detector: detector}
}

func (t *detectObjectsTool) Name() string { return DetectObjectsName }

func (t *detectObjectsTool) Description() string {
	return "Detect the objects visible in an image. Defaults to the image attached to the task."
}

type detectArgs struct {
	Image string `json:"image,omitempty" description:"Image path, URL or artifact:// reference"`
}

func (t *detectObjectsTool) Parameters() map[string]any {
	return util.CreateSchema(detectArgs{})
}

func (t *detectObjectsTool) Call(tc *core.ToolContext, args map[string]any) (any, error) {
	state := tc.TaskState()

	image, ok := stringArg(args, "image")
	if !ok {
		image = state.ObjectImage
	}
	if image == "" {
		return nil, NewToolError(DetectObjectsName, "no image given and none attached to the task", CodeValidation)
	}

	labels, err := t.detect(tc, image)
	if err != nil {
		return nil, &ToolError{Tool: DetectObjectsName, Message: err.Error(), Code: CodeExecution}
	}

	found := perception.Contains(labels, state.ObjectToFind())
	if found {
		where := state.UserLocation
		if where == "" {
			where = fmt.Sprintf("in image %s", image)
		}
		tc.MarkObjectFound(where)
		tc.SetObjectImage(image)
	}
	tc.LogDebug("tool.detect_objects", "labels", len(labels), "found", found)

	return map[string]any{
		"labels": labels,
		"found":  found,
	}, nil
}

// detect sends artifact bytes to image capable detectors and passes paths or
// URLs through unchanged.
func (t *detectObjectsTool) detect(tc *core.ToolContext, image string) ([]string, error) {
	if id, ok := core.ParseArtifactRef(image); ok {
		if imgDetector, ok := t.detector.(perception.ImageDetector); ok {
			data, err := tc.LoadArtifact(id)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", image, err)
			}
			return imgDetector.DetectImage(tc.Context(), data)
		}
	}
	return t.detector.Detect(tc.Context(), image)
}
