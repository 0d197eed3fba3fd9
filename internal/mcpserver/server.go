// Package mcpserver exposes the orchestration loop and the demo resource
// catalog over the Model Context Protocol on stdio.
package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/xeipuuv/gojsonschema"

	"github.com/tmarsden/orc/internal/agent"
	"github.com/tmarsden/orc/internal/catalog"
	"github.com/tmarsden/orc/internal/version"
)

// AskInput is the argument shape of the ask tool.
type AskInput struct {
	// Prompt is the task for the orchestration loop (required).
	Prompt string `json:"prompt"`
	// MaxTokens per sampling round trip.
	MaxTokens int `json:"maxTokens,omitempty"`
	// MaxIterations bounds the remote round trips.
	MaxIterations int `json:"maxIterations,omitempty"`
	// Tools is the allow-list of tool names offered to the model.
	Tools []string `json:"tools,omitempty"`
}

var askInputSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"prompt": map[string]interface{}{
			"type":        "string",
			"minLength":   1,
			"description": "The task for the agent to work on",
		},
		"maxTokens": map[string]interface{}{
			"type":        "integer",
			"minimum":     1,
			"description": "Maximum tokens per sampling round trip",
		},
		"maxIterations": map[string]interface{}{
			"type":        "integer",
			"minimum":     1,
			"description": "Maximum number of sampling round trips",
		},
		"tools": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Names of the tools the agent may call",
		},
	},
	"required":             []string{"prompt"},
	"additionalProperties": false,
}

// Config holds the dependencies of a Server.
type Config struct {
	// Agent runs ask invocations (required).
	Agent *agent.Agent
	// Registry supplies the bundled tool declarations exposed as MCP
	// tools. Defaults to agent.DefaultRegistry.
	Registry *agent.Registry
	// UpdateInterval for simulated resource updates. Defaults to
	// catalog.DefaultUpdateInterval.
	UpdateInterval time.Duration
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Server wires the agent, the bundled tools, and the resource catalog into
// one MCP server.
type Server struct {
	agent     *agent.Agent
	registry  *agent.Registry
	executor  *agent.Executor
	catalog   *catalog.Catalog
	mcpServer *mcp.Server
	askSchema *gojsonschema.Schema
	logger    *slog.Logger
}

// NewServer creates the server and registers its tools and resources.
// Callers must call Close when done with it.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Agent == nil {
		return nil, fmt.Errorf("agent is required")
	}
	registry := cfg.Registry
	if registry == nil {
		registry = agent.DefaultRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	askSchema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(askInputSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling ask input schema: %w", err)
	}

	s := &Server{
		agent:     cfg.Agent,
		registry:  registry,
		executor:  agent.NewExecutor(registry, logger),
		askSchema: askSchema,
		logger:    logger,
	}

	s.mcpServer = mcp.NewServer(
		&mcp.Implementation{
			Name:    "orc",
			Title:   "orc agent server",
			Version: version.Get(),
		},
		&mcp.ServerOptions{
			SubscribeHandler:   s.handleSubscribe,
			UnsubscribeHandler: s.handleUnsubscribe,
		},
	)

	s.catalog = catalog.New(catalog.Config{
		OnUpdate:       s.notifyResourceUpdated,
		UpdateInterval: cfg.UpdateInterval,
		Logger:         logger,
	})

	s.registerAskTool()
	s.registerBundledTools()
	s.registerResources()

	return s, nil
}

func (s *Server) registerAskTool() {
	tool := &mcp.Tool{
		Name:        "ask",
		Description: "Runs the tool-calling agent loop against a prompt and returns the final answer together with a trace of every tool call",
		InputSchema: askInputSchema,
	}
	s.mcpServer.AddTool(tool, s.handleAsk)
}

func (s *Server) handleAsk(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if msg, ok := s.validateAskArguments(req.Params.Arguments); !ok {
		return errorResult(msg), nil
	}

	var input AskInput
	if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
		return errorResult(fmt.Sprintf("invalid ask arguments: %s", err)), nil
	}

	result, err := s.agent.Run(ctx, agent.Request{
		Prompt:        input.Prompt,
		MaxTokens:     input.MaxTokens,
		MaxIterations: input.MaxIterations,
		ToolNames:     input.Tools,
	})
	if err != nil {
		s.logger.Error("ask invocation failed", "error", err)
		return errorResult(err.Error()), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatResult(result)}},
	}, nil
}

// validateAskArguments checks the raw arguments against the ask input
// schema, returning a joined message when validation fails.
func (s *Server) validateAskArguments(raw json.RawMessage) (string, bool) {
	res, err := s.askSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Sprintf("invalid ask arguments: %s", err), false
	}
	if res.Valid() {
		return "", true
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, desc := range res.Errors() {
		msgs = append(msgs, desc.String())
	}
	return "invalid ask arguments: " + strings.Join(msgs, "; "), false
}

// registerBundledTools exposes every tool in the registry directly, so MCP
// clients can call them without going through the agent.
func (s *Server) registerBundledTools() {
	for _, decl := range s.registry.Tools() {
		tool := &mcp.Tool{
			Name:        decl.Name,
			Description: decl.Description,
			InputSchema: decl.InputSchema,
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:    decl.Annotations.ReadOnlyHint,
				DestructiveHint: &decl.Annotations.DestructiveHint,
				IdempotentHint:  decl.Annotations.IdempotentHint,
				OpenWorldHint:   &decl.Annotations.OpenWorldHint,
			},
		}
		name := decl.Name
		s.mcpServer.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result := s.executor.Execute(ctx, name, req.Params.Arguments)
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: result.Content}},
				IsError: result.IsError,
			}, nil
		})
	}
}

func (s *Server) registerResources() {
	for _, resource := range s.catalog.Resources() {
		s.mcpServer.AddResource(&mcp.Resource{
			URI:      resource.URI,
			Name:     resource.Name,
			MIMEType: resource.MIMEType,
		}, s.handleReadResource)
	}
}

func (s *Server) handleReadResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	entries, err := s.catalog.Read(req.Params.URI)
	if err != nil {
		return nil, err
	}

	contents := make([]*mcp.ResourceContents, 0, len(entries))
	for _, entry := range entries {
		c := &mcp.ResourceContents{
			URI:      entry.URI,
			MIMEType: entry.MIMEType,
		}
		if entry.Blob != "" {
			blob, err := base64.StdEncoding.DecodeString(entry.Blob)
			if err != nil {
				return nil, fmt.Errorf("decoding blob for %s: %w", entry.URI, err)
			}
			c.Blob = blob
		} else {
			c.Text = entry.Text
		}
		contents = append(contents, c)
	}
	return &mcp.ReadResourceResult{Contents: contents}, nil
}

func (s *Server) handleSubscribe(_ context.Context, req *mcp.SubscribeRequest) error {
	return s.catalog.Subscribe(req.Params.URI)
}

func (s *Server) handleUnsubscribe(_ context.Context, req *mcp.UnsubscribeRequest) error {
	s.catalog.Unsubscribe(req.Params.URI)
	return nil
}

func (s *Server) notifyResourceUpdated(uri string) {
	err := s.mcpServer.ResourceUpdated(context.Background(), &mcp.ResourceUpdatedNotificationParams{URI: uri})
	if err != nil {
		s.logger.Debug("resource update notification failed", "uri", uri, "error", err)
	}
}

// Serve runs the server on stdio until the context is cancelled or the
// client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	defer s.catalog.Close()
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// Close stops the catalog's background notifier.
func (s *Server) Close() {
	s.catalog.Close()
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// FormatResult renders one loop outcome as a single text block: the audit
// trail in execution order, the final answer, and the iteration count.
func FormatResult(result *agent.Result) string {
	var b strings.Builder
	for _, line := range result.ToolCallAudit {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(result.FinalAnswer)
	fmt.Fprintf(&b, "\n\n[%d iteration(s) used]", result.IterationsUsed)
	return b.String()
}
