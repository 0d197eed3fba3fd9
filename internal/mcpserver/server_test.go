package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmarsden/orc/internal/agent"
	"github.com/tmarsden/orc/internal/llm"
)

// scriptedProvider returns a fixed sequence of responses.
type scriptedProvider struct {
	responses []llm.Response
	calls     int
}

func (p *scriptedProvider) GenerateResponse(_ context.Context, _ llm.GenConfig, _ llm.Conversation) (llm.Response, error) {
	resp := p.responses[min(p.calls, len(p.responses)-1)]
	p.calls++
	return resp, nil
}

func endTurn(text string) llm.Response {
	return llm.Response{
		Message: llm.Message{
			Role:    llm.RoleAssistant,
			Content: []llm.ContentBlock{{Type: llm.ContentTypeText, Text: text}},
		},
		StopReason: llm.StopReasonEndTurn,
	}
}

func newTestServer(t *testing.T, provider llm.Provider) *Server {
	t.Helper()
	a := agent.New(agent.Config{Provider: provider, Model: "test-model"})
	s, err := NewServer(Config{Agent: a, UpdateInterval: time.Hour})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestNewServerRequiresAgent(t *testing.T) {
	_, err := NewServer(Config{})
	assert.Error(t, err)
}

func TestHandleAskReturnsFinalAnswer(t *testing.T) {
	s := newTestServer(t, &scriptedProvider{responses: []llm.Response{endTurn("42")}})

	res, err := s.handleAsk(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(`{"prompt":"what is 6*7?"}`)},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, "42")
	assert.Contains(t, text, "[1 iteration(s) used]")
}

func TestHandleAskRejectsInvalidArguments(t *testing.T) {
	s := newTestServer(t, &scriptedProvider{responses: []llm.Response{endTurn("unused")}})

	tests := []struct {
		name string
		args string
	}{
		{name: "missing prompt", args: `{}`},
		{name: "empty prompt", args: `{"prompt":""}`},
		{name: "wrong type", args: `{"prompt":"x","maxIterations":"three"}`},
		{name: "unknown field", args: `{"prompt":"x","bogus":true}`},
		{name: "non positive iterations", args: `{"prompt":"x","maxIterations":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleAsk(context.Background(), &mcp.CallToolRequest{
				Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(tt.args)},
			})
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, "invalid ask arguments")
		})
	}
}

func TestHandleAskUnknownTools(t *testing.T) {
	s := newTestServer(t, &scriptedProvider{responses: []llm.Response{endTurn("unused")}})

	res, err := s.handleAsk(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(`{"prompt":"x","tools":["bogus"]}`)},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleReadResource(t *testing.T) {
	s := newTestServer(t, &scriptedProvider{responses: []llm.Response{endTurn("unused")}})

	res, err := s.handleReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "demo://resource/1"},
	})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "text/plain", res.Contents[0].MIMEType)
	assert.NotEmpty(t, res.Contents[0].Text)

	res, err = s.handleReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "demo://resource/2"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Contents[0].Blob)

	_, err = s.handleReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "demo://resource/0"},
	})
	assert.Error(t, err)
}

func TestSubscribeHandlers(t *testing.T) {
	s := newTestServer(t, &scriptedProvider{responses: []llm.Response{endTurn("unused")}})

	err := s.handleSubscribe(context.Background(), &mcp.SubscribeRequest{
		Params: &mcp.SubscribeParams{URI: "demo://resource/3"},
	})
	assert.NoError(t, err)

	err = s.handleSubscribe(context.Background(), &mcp.SubscribeRequest{
		Params: &mcp.SubscribeParams{URI: "demo://resource/9999"},
	})
	assert.Error(t, err)

	err = s.handleUnsubscribe(context.Background(), &mcp.UnsubscribeRequest{
		Params: &mcp.UnsubscribeParams{URI: "demo://resource/3"},
	})
	assert.NoError(t, err)
}

func TestFormatResult(t *testing.T) {
	text := FormatResult(&agent.Result{
		FinalAnswer:    "2 + 2 = 4",
		IterationsUsed: 2,
		ToolCallAudit:  []string{`add({"a":2,"b":2}) => 4`},
	})

	assert.Equal(t, "add({\"a\":2,\"b\":2}) => 4\n2 + 2 = 4\n\n[2 iteration(s) used]", text)
}
