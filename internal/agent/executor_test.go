package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmarsden/orc/internal/llm"
)

func TestExecuteUnknownTool(t *testing.T) {
	executor := NewExecutor(DefaultRegistry(), nil)

	result := executor.Execute(context.Background(), "nope", json.RawMessage(`{}`))
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, `unknown tool "nope"`)
}

func TestExecuteRecoverFromPanic(t *testing.T) {
	registry := NewRegistry()
	registry.Register(llm.Tool{Name: "boom"}, func(context.Context, json.RawMessage) (string, error) {
		panic("kaboom")
	})
	executor := NewExecutor(registry, nil)

	result := executor.Execute(context.Background(), "boom", json.RawMessage(`{}`))
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "kaboom")
}

func TestExecuteToolErrorBecomesResult(t *testing.T) {
	registry := NewRegistry()
	registry.Register(llm.Tool{Name: "fail"}, func(context.Context, json.RawMessage) (string, error) {
		return "", errors.New("it broke")
	})
	executor := NewExecutor(registry, nil)

	result := executor.Execute(context.Background(), "fail", json.RawMessage(`{}`))
	assert.True(t, result.IsError)
	assert.Equal(t, "Error: it broke", result.Content)
}

func TestExecuteBundledTools(t *testing.T) {
	executor := NewExecutor(DefaultRegistry(), nil)

	tests := []struct {
		name        string
		tool        string
		input       string
		want        string
		wantErr     bool
		wantContain string
	}{
		{name: "echo", tool: "echo", input: `{"message":"hello"}`, want: "hello"},
		{name: "add integers", tool: "add", input: `{"a":2,"b":2}`, want: "4"},
		{name: "add decimals", tool: "add", input: `{"a":1.5,"b":2.25}`, want: "3.75"},
		{
			name:        "add non numeric",
			tool:        "add",
			input:       `{"a":"x","b":2}`,
			wantErr:     true,
			wantContain: "Both a and b must be numbers",
		},
		{
			name:        "add missing argument",
			tool:        "add",
			input:       `{"a":2}`,
			wantErr:     true,
			wantContain: "Both a and b must be numbers",
		},
		{
			name:        "malformed input",
			tool:        "echo",
			input:       `{`,
			wantErr:     true,
			wantContain: "invalid echo tool input",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := executor.Execute(context.Background(), tt.tool, json.RawMessage(tt.input))
			require.Equal(t, tt.wantErr, result.IsError, "content: %s", result.Content)
			if tt.wantErr {
				assert.Contains(t, result.Content, tt.wantContain)
			} else {
				assert.Equal(t, tt.want, result.Content)
			}
		})
	}
}
