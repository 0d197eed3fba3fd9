// Package agent implements the tool-calling orchestration loop: a bounded
// multi-turn exchange with a remote sampling provider, interleaving model
// requested tool invocations with locally executed tools until the model
// produces a final answer or the iteration bound is reached.
package agent

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/tmarsden/orc/internal/llm"
)

// ErrNoTools is returned when an allow-list resolves to zero registered
// tools. The loop cannot start without at least one declared tool.
var ErrNoTools = errors.New("no requested tools are registered")

// ToolFunc executes one tool invocation. The input is the opaque structured
// value supplied by the model; each tool decodes and validates it itself.
type ToolFunc func(ctx context.Context, input json.RawMessage) (string, error)

type registeredTool struct {
	decl llm.Tool
	run  ToolFunc
}

// Registry holds the fixed catalog of tool declarations and their local
// executors. The catalog is read-only after setup and safe to share across
// concurrent invocations.
type Registry struct {
	order []string
	tools map[string]registeredTool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]registeredTool)}
}

// Register adds a tool declaration together with its executor. Registering
// the same name twice replaces the executor but keeps the original position.
func (r *Registry) Register(decl llm.Tool, run ToolFunc) {
	if _, ok := r.tools[decl.Name]; !ok {
		r.order = append(r.order, decl.Name)
	}
	r.tools[decl.Name] = registeredTool{decl: decl, run: run}
}

// Filter returns the declarations whose name is both requested and known,
// in registration order. Unknown names are silently dropped. Returns
// ErrNoTools when nothing survives the filter.
func (r *Registry) Filter(names []string) ([]llm.Tool, error) {
	requested := make(map[string]bool, len(names))
	for _, name := range names {
		requested[name] = true
	}

	var filtered []llm.Tool
	for _, name := range r.order {
		if requested[name] {
			filtered = append(filtered, r.tools[name].decl)
		}
	}

	if len(filtered) == 0 {
		return nil, ErrNoTools
	}
	return filtered, nil
}

// Tools returns every registered declaration in registration order.
func (r *Registry) Tools() []llm.Tool {
	tools := make([]llm.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name].decl)
	}
	return tools
}

func (r *Registry) lookup(name string) (registeredTool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}
