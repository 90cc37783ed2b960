package tools

import "context"

// Tool is one named, executable capability exposed through the dispatch
// surface.
type Tool interface {
	Name() string
	Description() string
	Parameters() []ParameterDef
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// ParameterDef describes one tool argument for discovery.
type ParameterDef struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "string" | "number" | "string_list"
	Description string `json:"description"`
	Required    bool   `json:"required"`
}
