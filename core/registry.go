package core

import "sort"

// Registry is the fixed name to agent lookup of one session. It is built once
// and is read-only afterwards; there is no dynamic registration.
type Registry struct {
	agents map[string]Agent
}

// NewRegistry builds a registry. Nil agents, empty names and duplicate names
// are configuration errors.
func NewRegistry(agents ...Agent) (*Registry, error) {
	r := &Registry{agents: make(map[string]Agent, len(agents))}
	for _, a := range agents {
		if a == nil || a.Name() == "" {
			return nil, &ConfigError{Op: "new registry", Err: ErrInvalidAgent}
		}
		if _, dup := r.agents[a.Name()]; dup {
			return nil, &ConfigError{Op: "new registry", Name: a.Name(), Err: ErrDuplicateAgent}
		}
		r.agents[a.Name()] = a
	}
	return r, nil
}

// Lookup resolves a name. A miss is a configuration error wrapping
// ErrUnknownAgent.
func (r *Registry) Lookup(name string) (Agent, error) {
	a, ok := r.agents[name]
	if !ok {
		return nil, &ConfigError{Op: "lookup", Name: name, Err: ErrUnknownAgent}
	}
	return a, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.agents[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.agents))
	for n := range r.agents {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered agents.
func (r *Registry) Len() int { return len(r.agents) }
