package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tmarsden/orc/internal/llm"
)

// DefaultToolNames is the allow-list used when a caller does not request
// specific tools.
var DefaultToolNames = []string{"echo", "add"}

var echoTool = llm.Tool{
	Name:        "echo",
	Description: "Echoes back the input message",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"message": map[string]interface{}{
				"type":        "string",
				"description": "The message to echo back",
			},
		},
		"required": []string{"message"},
	},
	Annotations: llm.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
}

var addTool = llm.Tool{
	Name:        "add",
	Description: "Adds two numbers",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"a": map[string]interface{}{
				"type":        "number",
				"description": "First number",
			},
			"b": map[string]interface{}{
				"type":        "number",
				"description": "Second number",
			},
		},
		"required": []string{"a", "b"},
	},
	Annotations: llm.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
}

var getTimeTool = llm.Tool{
	Name:        "get_time",
	Description: "Returns the current time in RFC 3339 format",
	InputSchema: map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	},
	Annotations: llm.ToolAnnotations{ReadOnlyHint: true},
}

var printEnvTool = llm.Tool{
	Name:        "print_env",
	Description: "Prints all environment variables, helpful for debugging configuration",
	InputSchema: map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	},
	Annotations: llm.ToolAnnotations{ReadOnlyHint: true, OpenWorldHint: true},
}

func executeEchoTool(_ context.Context, input json.RawMessage) (string, error) {
	var params struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid echo tool input: %w", err)
	}
	return params.Message, nil
}

func executeAddTool(_ context.Context, input json.RawMessage) (string, error) {
	var params map[string]interface{}
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid add tool input: %w", err)
	}

	a, aOk := params["a"].(float64)
	b, bOk := params["b"].(float64)
	if !aOk || !bOk {
		return "", errors.New("Both a and b must be numbers")
	}

	return strconv.FormatFloat(a+b, 'f', -1, 64), nil
}

func executeGetTimeTool(_ context.Context, _ json.RawMessage) (string, error) {
	return time.Now().Format(time.RFC3339), nil
}

func executePrintEnvTool(_ context.Context, _ json.RawMessage) (string, error) {
	return strings.Join(os.Environ(), "\n"), nil
}

// DefaultRegistry returns the fixed catalog of bundled tools.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(echoTool, executeEchoTool)
	registry.Register(addTool, executeAddTool)
	registry.Register(getTimeTool, executeGetTimeTool)
	registry.Register(printEnvTool, executePrintEnvTool)
	return registry
}
