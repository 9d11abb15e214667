package tool

import (
	"fmt"
	"sync"

	"github.com/hupe1980/agentrun/model"
)

// DuplicateToolError is returned when registering a name that already exists.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}

// UnknownToolError is returned when resolving a name absent from the registry.
// The Executor converts it into an error-tagged result rather than failing the run.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// Registry maps tool names to implementations. Registration order is retained
// so Definitions yields a stable sequence across a run, keeping model requests
// reproducible. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry constructs a registry, registering any given tools in order.
// It panics on duplicates, mirroring the must-succeed startup path; use
// Register directly when duplicate names must be handled gracefully.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a tool, failing with *DuplicateToolError if the name is taken.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return &DuplicateToolError{Name: name}
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Resolve returns the tool registered under name, failing with
// *UnknownToolError if absent.
func (r *Registry) Resolve(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}
	return t, nil
}

// Definitions returns the registered tools as model definitions in
// registration order, ready for inclusion in a model request.
func (r *Registry) Definitions() []model.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]model.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return defs
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
