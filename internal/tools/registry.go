package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cryptotools/internal/provider"
)

// Registry maps tool names to handlers. It is built once at startup and
// passed to the dispatch layer; there is no ambient global registry.
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool; duplicate names are rejected.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = tool
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		out = append(out, tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Execute runs the named tool against args.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	tool, exists := r.Get(name)
	if !exists {
		return nil, provider.Errorf(provider.KindNotFound, "unknown tool %q", name)
	}
	return tool.Execute(ctx, args)
}

// Schema is the discovery shape for one tool.
type Schema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  []ParameterDef `json:"parameters"`
}

// Schemas returns discovery metadata for every registered tool.
func (r *Registry) Schemas() []Schema {
	list := r.List()
	out := make([]Schema, 0, len(list))
	for _, tool := range list {
		out = append(out, Schema{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return out
}
