package core

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Summary sentinels rendered for absent optional fields.
const (
	NothingSentinel         = "nothing"
	UnknownSentinel         = "unknown"
	NoImageSentinel         = "no image"
	NoPreviousAgentSentinel = "no previous agent"
)

// TaskState is the single shared record of task progress for one session.
// The session owns it and hands the same pointer to every agent; it has no
// locking of its own because turns within a session are strictly ordered.
//
// Optional string fields use the empty string for "absent". PrevAgent is a
// non-owning handle: the name of the agent active before the current one,
// resolved through the registry.
type TaskState struct {
	objectToFind string
	agents       *Registry

	UserLocation   string
	ObjectFound    bool
	ObjectLocation string
	ObjectImage    string
	PrevAgent      string
}

// NewTaskState creates the state for a new session. The object to find is
// fixed for the lifetime of the session.
func NewTaskState(objectToFind string, agents *Registry) (*TaskState, error) {
	if objectToFind == "" {
		return nil, &ConfigError{Op: "new task state", Err: ErrMissingObject}
	}
	if agents == nil {
		return nil, &ConfigError{Op: "new task state", Err: ErrNoRegistry}
	}
	return &TaskState{objectToFind: objectToFind, agents: agents}, nil
}

// ObjectToFind returns the object sought in this session.
func (s *TaskState) ObjectToFind() string { return s.objectToFind }

// Agents returns the session's agent registry.
func (s *TaskState) Agents() *Registry { return s.agents }

// PreviousAgent resolves PrevAgent through the registry.
func (s *TaskState) PreviousAgent() (Agent, bool) {
	if s.PrevAgent == "" || s.agents == nil {
		return nil, false
	}
	a, err := s.agents.Lookup(s.PrevAgent)
	if err != nil {
		return nil, false
	}
	return a, true
}

// taskSummary fixes the field order of the rendered summary: keys are
// declared in lexical order.
type taskSummary struct {
	ObjectFound    bool   `yaml:"object_found"`
	ObjectImage    string `yaml:"object_image"`
	ObjectLocation string `yaml:"object_location"`
	ObjectToFind   string `yaml:"object_to_find"`
	PrevAgent      string `yaml:"prev_agent"`
	UserLocation   string `yaml:"user_location"`
}

// Summarize renders a stable YAML snapshot of every field, substituting the
// sentinels for absent values. Equal field values always produce byte-identical
// output.
func (s *TaskState) Summarize() string {
	sum := taskSummary{
		ObjectToFind:   orDefault(s.objectToFind, NothingSentinel),
		UserLocation:   orDefault(s.UserLocation, UnknownSentinel),
		ObjectFound:    s.ObjectFound,
		ObjectLocation: orDefault(s.ObjectLocation, UnknownSentinel),
		ObjectImage:    orDefault(s.ObjectImage, NoImageSentinel),
		PrevAgent:      orDefault(s.PrevAgent, NoPreviousAgentSentinel),
	}
	out, err := yaml.Marshal(sum)
	if err != nil {
		// unreachable for a flat struct of scalars
		return fmt.Sprintf("%+v", sum)
	}
	return string(out)
}

// Snapshot returns a value copy for logging and comparisons.
func (s *TaskState) Snapshot() TaskState { return *s }

// Apply commits a staged delta.
func (s *TaskState) Apply(d TaskStateDelta) {
	if d.UserLocation != nil {
		s.UserLocation = *d.UserLocation
	}
	if d.ObjectFound != nil {
		s.ObjectFound = *d.ObjectFound
	}
	if d.ObjectLocation != nil {
		s.ObjectLocation = *d.ObjectLocation
	}
	if d.ObjectImage != nil {
		s.ObjectImage = *d.ObjectImage
	}
}

// Preview returns a copy of the state with d applied, leaving s untouched.
func (s *TaskState) Preview(d TaskStateDelta) *TaskState {
	cp := *s
	cp.Apply(d)
	return &cp
}

// TaskStateDelta stages TaskState mutations made during a turn. A nil field
// means "unchanged". The delta is applied only when the turn commits.
type TaskStateDelta struct {
	UserLocation   *string
	ObjectFound    *bool
	ObjectLocation *string
	ObjectImage    *string
}

// IsEmpty reports whether the delta changes nothing.
func (d TaskStateDelta) IsEmpty() bool {
	return d.UserLocation == nil && d.ObjectFound == nil && d.ObjectLocation == nil && d.ObjectImage == nil
}

// Merge overlays o on d; fields set in o win.
func (d *TaskStateDelta) Merge(o TaskStateDelta) {
	if o.UserLocation != nil {
		d.UserLocation = o.UserLocation
	}
	if o.ObjectFound != nil {
		d.ObjectFound = o.ObjectFound
	}
	if o.ObjectLocation != nil {
		d.ObjectLocation = o.ObjectLocation
	}
	if o.ObjectImage != nil {
		d.ObjectImage = o.ObjectImage
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
