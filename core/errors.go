package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAgent is returned when a name is not present in the registry.
	ErrUnknownAgent = errors.New("unknown agent")
	// ErrDuplicateAgent is returned when two agents share a name.
	ErrDuplicateAgent = errors.New("duplicate agent name")
	// ErrInvalidAgent is returned for nil agents or agents without a name.
	ErrInvalidAgent = errors.New("invalid agent")
	// ErrMissingObject is returned when a TaskState is created without the
	// object to find.
	ErrMissingObject = errors.New("object to find is required")
	// ErrNoRegistry is returned when a TaskState is created without a registry.
	ErrNoRegistry = errors.New("agent registry is required")
	// ErrDuplicateItem is returned when an item identifier is already present
	// in a record.
	ErrDuplicateItem = errors.New("duplicate item id")
)

// ConfigError reports a configuration or programming mistake: an unknown agent
// name, a registry built with clashing names, a TaskState missing its required
// field. Configuration errors are fatal to the session initialization or to the
// turn that hit them and are never retried.
type ConfigError struct {
	Op   string // operation that failed, e.g. "transfer"
	Name string // offending name, if any
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("configuration error in %s: %v: %q", e.Op, e.Err, e.Name)
	}
	return fmt.Sprintf("configuration error in %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// TurnError reports a turn that failed because an external collaborator (the
// reply service, a tool backend) failed or the turn was cancelled. Record and
// TaskState are unchanged by a failed turn.
type TurnError struct {
	Agent string
	Err   error
}

func (e *TurnError) Error() string {
	return fmt.Sprintf("turn of agent %s failed: %v", e.Agent, e.Err)
}

func (e *TurnError) Unwrap() error { return e.Err }
