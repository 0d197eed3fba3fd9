package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tmarsden/orc/internal/llm"
)

// Executor runs registered tools one at a time, converting every failure
// into an error-flagged result so the orchestration loop never aborts on a
// tool failure. The result is fed back into the conversation as ordinary
// content, letting the model react to bad input or unknown tools.
type Executor struct {
	registry *Registry
	logger   *slog.Logger
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{registry: registry, logger: logger}
}

// Execute runs one named tool against one input value. It never returns an
// error and never panics: unknown tools, invalid input, tool errors and
// panics all become results with IsError set.
func (e *Executor) Execute(ctx context.Context, name string, input json.RawMessage) (result llm.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool panicked", "tool", name, "panic", r)
			result = llm.ToolResult{
				Content: fmt.Sprintf("Error: tool %s panicked: %v", name, r),
				IsError: true,
			}
		}
	}()

	tool, ok := e.registry.lookup(name)
	if !ok {
		return llm.ToolResult{
			Content: fmt.Sprintf("Error: unknown tool %q", name),
			IsError: true,
		}
	}

	content, err := tool.run(ctx, input)
	if err != nil {
		return llm.ToolResult{
			Content: fmt.Sprintf("Error: %s", err),
			IsError: true,
		}
	}

	return llm.ToolResult{Content: content}
}
