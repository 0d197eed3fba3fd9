// Package llm defines the provider-neutral conversation model shared by the
// orchestration loop and the sampling channel adapters.
package llm

import (
	"context"
	"encoding/json"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentType is the discriminant of the ContentBlock tagged union.
type ContentType string

const (
	ContentTypeText       ContentType = "text"
	ContentTypeToolUse    ContentType = "tool_use"
	ContentTypeToolResult ContentType = "tool_result"
)

// ContentBlock is a single piece of turn content. Exactly one payload field
// is set, selected by Type.
type ContentBlock struct {
	Type       ContentType `json:"type"`
	Text       string      `json:"text,omitempty"`
	ToolUse    *ToolUse    `json:"tool_use,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

// ToolUse is a tool invocation requested by the model. Input is kept opaque
// because it originates from a remote, untrusted source; each tool decodes
// and validates it itself.
type ToolUse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResult answers exactly one ToolUse, identified by ToolUseID. Content
// is always textual in this design.
type ToolResult struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error,omitempty"`
}

// Message is one conversation turn.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ToolUses returns the tool invocation requests in the message, in block
// order.
func (m Message) ToolUses() []ToolUse {
	var uses []ToolUse
	for _, block := range m.Content {
		if block.Type == ContentTypeToolUse && block.ToolUse != nil {
			uses = append(uses, *block.ToolUse)
		}
	}
	return uses
}

// FirstText returns the first text block of the message, if any.
func (m Message) FirstText() (string, bool) {
	for _, block := range m.Content {
		if block.Type == ContentTypeText {
			return block.Text, true
		}
	}
	return "", false
}

// ToolAnnotations are advisory capability hints attached to a tool
// declaration. They inform the model and clients; nothing enforces them.
type ToolAnnotations struct {
	ReadOnlyHint    bool `json:"readOnlyHint,omitempty"`
	DestructiveHint bool `json:"destructiveHint,omitempty"`
	IdempotentHint  bool `json:"idempotentHint,omitempty"`
	OpenWorldHint   bool `json:"openWorldHint,omitempty"`
}

// Tool declares a callable tool to the model.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
	Annotations ToolAnnotations        `json:"annotations,omitempty"`
}

// ToolChoice controls whether the model may request tool calls in a round
// trip.
type ToolChoice string

const (
	ToolChoiceAuto ToolChoice = "auto"
	ToolChoiceNone ToolChoice = "none"
)

// StopReason classifies why generation ended for one round trip.
type StopReason string

const (
	StopReasonToolUse      StopReason = "tool_use"
	StopReasonEndTurn      StopReason = "end_turn"
	StopReasonMaxTokens    StopReason = "max_tokens"
	StopReasonStopSequence StopReason = "stop_sequence"
)

// Conversation is the full state sent on every round trip.
type Conversation struct {
	SystemPrompt string    `json:"system_prompt"`
	Messages     []Message `json:"messages"`
	Tools        []Tool    `json:"tools,omitempty"`
}

// GenConfig holds the generation parameters for one round trip.
type GenConfig struct {
	Model       string     `json:"model"`
	MaxTokens   int        `json:"max_tokens"`
	Temperature float64    `json:"temperature,omitempty"`
	TopP        *float64   `json:"top_p,omitempty"`
	TopK        *int       `json:"top_k,omitempty"`
	Stop        []string   `json:"stop,omitempty"`
	ToolChoice  ToolChoice `json:"tool_choice,omitempty"`
}

// TokenUsage reports token consumption for one round trip.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is one normalized round-trip result. Content is always a block
// list; adapters normalize single-block payloads before returning.
type Response struct {
	Message    Message    `json:"message"`
	StopReason StopReason `json:"stop_reason"`
	Usage      TokenUsage `json:"usage"`
}

// Provider is the remote sampling channel: one blocking request/response
// call to a process-external model provider.
type Provider interface {
	GenerateResponse(ctx context.Context, config GenConfig, conversation Conversation) (Response, error)
}
