package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/tmarsden/orc/internal/llm"
)

const (
	// DefaultMaxTokens bounds the provider's output per round trip.
	DefaultMaxTokens = 1000
	// DefaultMaxIterations bounds the number of remote round trips per
	// invocation.
	DefaultMaxIterations = 5
)

// protocolViolationAnswer terminates the loop when the provider signals
// tool use without providing any tool calls.
const protocolViolationAnswer = "Error: the model signaled tool use but provided no tool calls"

// Request is the caller-facing surface of one loop invocation.
type Request struct {
	// Prompt seeds the conversation as a single user turn.
	Prompt string `validate:"required"`
	// MaxTokens per round trip. Defaults to DefaultMaxTokens.
	MaxTokens int `validate:"omitempty,gt=0"`
	// MaxIterations bounds the remote round trips. Defaults to
	// DefaultMaxIterations.
	MaxIterations int `validate:"omitempty,gte=1"`
	// ToolNames is the allow-list of tools offered to the provider.
	// Defaults to DefaultToolNames.
	ToolNames []string
}

func (r *Request) applyDefaults() {
	if r.MaxTokens == 0 {
		r.MaxTokens = DefaultMaxTokens
	}
	if r.MaxIterations == 0 {
		r.MaxIterations = DefaultMaxIterations
	}
	if len(r.ToolNames) == 0 {
		r.ToolNames = DefaultToolNames
	}
}

// Result is the terminal outcome of one loop invocation.
type Result struct {
	// FinalAnswer is the textual answer. Every terminal outcome produces
	// one, except a failed round trip which surfaces as an error instead.
	FinalAnswer string
	// IterationsUsed counts the remote round trips consumed.
	IterationsUsed int
	// ToolCallAudit logs every tool call as "name(input) => result" in
	// execution order.
	ToolCallAudit []string
}

// Agent owns the orchestration loop. It is safe for concurrent use: all
// per-invocation state (history, iteration counter, audit trail) lives in
// Run's frame, and the registry is read-only.
type Agent struct {
	provider    llm.Provider
	registry    *Registry
	executor    *Executor
	model       string
	temperature float64
	logger      *slog.Logger
	validate    *validator.Validate
}

// Config configures an Agent.
type Config struct {
	// Provider is the remote sampling channel (required).
	Provider llm.Provider
	// Registry is the tool catalog. Defaults to DefaultRegistry.
	Registry *Registry
	// Model is passed through to the provider on every round trip.
	Model string
	// Temperature is passed through to the provider on every round trip.
	Temperature float64
	// Logger for structured progress logs. Defaults to slog.Default.
	Logger *slog.Logger
}

// New creates an Agent.
func New(cfg Config) *Agent {
	registry := cfg.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		provider:    cfg.Provider,
		registry:    registry,
		executor:    NewExecutor(registry, logger),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
		validate:    validator.New(),
	}
}

// Run performs one invocation of the orchestration loop: it seeds the
// conversation with the request prompt, exchanges round trips with the
// provider, executes requested tool calls locally, and returns the final
// answer together with the audit trail.
//
// Tool execution failures never abort the loop; they are fed back into the
// conversation as error-flagged results. A failed round trip aborts the
// invocation and is returned as an error.
func (a *Agent) Run(ctx context.Context, req Request) (*Result, error) {
	req.applyDefaults()
	if err := a.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	tools, err := a.registry.Filter(req.ToolNames)
	if err != nil {
		return nil, fmt.Errorf("resolving tools %v: %w", req.ToolNames, err)
	}

	logger := a.logger.With("invocation", gonanoid.Must(8))

	conversation := llm.Conversation{
		SystemPrompt: loopSystemPrompt,
		Tools:        tools,
		Messages: []llm.Message{
			{
				Role: llm.RoleUser,
				Content: []llm.ContentBlock{
					{Type: llm.ContentTypeText, Text: req.Prompt},
				},
			},
		},
	}

	result := &Result{}
	terminated := false

	for !terminated && result.IterationsUsed < req.MaxIterations {
		result.IterationsUsed++
		config := a.buildGenConfig(req, result.IterationsUsed == req.MaxIterations)

		resp, err := a.provider.GenerateResponse(ctx, config, conversation)
		if err != nil {
			return nil, fmt.Errorf("sampling round trip %d failed: %w", result.IterationsUsed, err)
		}

		logger.Debug("round trip complete",
			"iteration", result.IterationsUsed,
			"stop_reason", resp.StopReason,
			"input_tokens", resp.Usage.InputTokens,
			"output_tokens", resp.Usage.OutputTokens)

		if resp.StopReason != llm.StopReasonToolUse {
			result.FinalAnswer = finalAnswer(resp.Message)
			terminated = true
			continue
		}

		requests := resp.Message.ToolUses()
		if len(requests) == 0 {
			logger.Warn("tool-use stop reason without tool calls",
				"iteration", result.IterationsUsed)
			result.FinalAnswer = protocolViolationAnswer
			terminated = true
			continue
		}

		// The assistant turn is appended verbatim so the provider keeps
		// any reasoning text alongside its tool calls.
		conversation.Messages = append(conversation.Messages, resp.Message)

		// One result per request, in request order, collected into a
		// single results-only user turn.
		resultBlocks := make([]llm.ContentBlock, 0, len(requests))
		for _, use := range requests {
			toolResult := a.executor.Execute(ctx, use.Name, use.Input)
			toolResult.ToolUseID = use.ID

			result.ToolCallAudit = append(result.ToolCallAudit,
				fmt.Sprintf("%s(%s) => %s", use.Name, compactJSON(use.Input), toolResult.Content))
			logger.Debug("tool executed", "tool", use.Name, "is_error", toolResult.IsError)

			resultBlocks = append(resultBlocks, llm.ContentBlock{
				Type:       llm.ContentTypeToolResult,
				ToolResult: &toolResult,
			})
		}
		conversation.Messages = append(conversation.Messages, llm.Message{
			Role:    llm.RoleUser,
			Content: resultBlocks,
		})
	}

	if !terminated {
		result.FinalAnswer = fmt.Sprintf(
			"Reached the maximum of %d iterations before the model produced a final answer.",
			req.MaxIterations)
	}

	return result, nil
}

// finalAnswer extracts the first text block of the terminal assistant
// message, falling back to the serialized content when no text block
// exists.
func finalAnswer(msg llm.Message) string {
	if text, ok := msg.FirstText(); ok {
		return text
	}
	raw, err := json.Marshal(msg.Content)
	if err != nil {
		return fmt.Sprintf("%+v", msg.Content)
	}
	return string(raw)
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
