package agent

import (
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/internal/util"
)

// Provider supplies dynamic instruction text at runtime.
type Provider interface {
	Instruction(*core.TurnContext) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(*core.TurnContext) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(tc *core.TurnContext) (string, error) { return f(tc) }

// Instruction represents either a static instruction string or a dynamic provider.
//
// Static text may reference the task state as a template:
//
//	Help the user find their {{.object_to_find}}.
//	They are in {{default "an unknown place" .user_location}}.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(*core.TurnContext) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider or rendering
// the template as needed.
func (i Instruction) Resolve(tc *core.TurnContext) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(tc)
	}
	return util.RenderTemplate(i.text, templateVars(tc.State))
}

// templateVars exposes the task state fields under their summary keys.
// Absent fields are empty strings.
func templateVars(s *core.TaskState) map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return map[string]any{
		"object_to_find":  s.ObjectToFind(),
		"user_location":   s.UserLocation,
		"object_found":    s.ObjectFound,
		"object_location": s.ObjectLocation,
		"object_image":    s.ObjectImage,
		"prev_agent":      s.PrevAgent,
	}
}
