package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements Provider on top of the Anthropic Messages
// API.
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider creates a provider using the given API key. baseURL
// may be empty to use the default endpoint.
func NewAnthropicProvider(apiKey string, baseURL string) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(5),
		option.WithRequestTimeout(5 * time.Minute),
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
	}
}

func convertTools(tools []Tool) []anthropic.ToolUnionParam {
	converted := make([]anthropic.ToolUnionParam, len(tools))
	for i, tool := range tools {
		param := anthropic.ToolParam{
			Name:        tool.Name,
			Description: anthropic.String(tool.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: tool.InputSchema["properties"],
				Required:   requiredFields(tool.InputSchema),
			},
		}
		converted[i] = anthropic.ToolUnionParam{OfTool: &param}
	}
	return converted
}

// requiredFields extracts the schema's required list, tolerating the
// []interface{} shape a JSON round trip produces.
func requiredFields(schema map[string]interface{}) []string {
	switch v := schema["required"].(type) {
	case []string:
		return v
	case []interface{}:
		fields := make([]string, 0, len(v))
		for _, field := range v {
			if name, ok := field.(string); ok {
				fields = append(fields, name)
			}
		}
		return fields
	}
	return nil
}

func convertMessages(messages []Message) ([]anthropic.MessageParam, error) {
	converted := make([]anthropic.MessageParam, len(messages))
	for i, msg := range messages {
		var blocks []anthropic.ContentBlockParamUnion

		for _, content := range msg.Content {
			switch content.Type {
			case ContentTypeText:
				blocks = append(blocks, anthropic.NewTextBlock(content.Text))
			case ContentTypeToolUse:
				if content.ToolUse != nil {
					blocks = append(blocks, anthropic.NewToolUseBlock(
						content.ToolUse.ID,
						content.ToolUse.Input,
						content.ToolUse.Name,
					))
				}
			case ContentTypeToolResult:
				if content.ToolResult != nil {
					blocks = append(blocks, anthropic.ContentBlockParamUnion{
						OfToolResult: &anthropic.ToolResultBlockParam{
							ToolUseID: content.ToolResult.ToolUseID,
							IsError:   anthropic.Bool(content.ToolResult.IsError),
							Content: []anthropic.ToolResultBlockParamContentUnion{
								{OfText: &anthropic.TextBlockParam{Text: content.ToolResult.Content}},
							},
						},
					})
				}
			default:
				return nil, fmt.Errorf("unknown content block type: %s", content.Type)
			}
		}

		if msg.Role == RoleUser {
			converted[i] = anthropic.NewUserMessage(blocks...)
		} else {
			converted[i] = anthropic.NewAssistantMessage(blocks...)
		}
	}
	return converted, nil
}

func convertStopReason(reason anthropic.StopReason) StopReason {
	switch reason {
	case anthropic.StopReasonToolUse:
		return StopReasonToolUse
	case anthropic.StopReasonEndTurn:
		return StopReasonEndTurn
	case anthropic.StopReasonMaxTokens:
		return StopReasonMaxTokens
	case anthropic.StopReasonStopSequence:
		return StopReasonStopSequence
	default:
		return StopReason(reason)
	}
}

// GenerateResponse implements Provider.
func (a *AnthropicProvider) GenerateResponse(ctx context.Context, config GenConfig, conversation Conversation) (Response, error) {
	messages, err := convertMessages(conversation.Messages)
	if err != nil {
		return Response{}, err
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(config.Model),
		MaxTokens:   int64(config.MaxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(config.Temperature),
	}

	if len(conversation.Tools) > 0 {
		params.Tools = convertTools(conversation.Tools)
	}
	if conversation.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: conversation.SystemPrompt}}
	}
	if config.TopP != nil {
		params.TopP = anthropic.Float(*config.TopP)
	}
	if config.TopK != nil {
		params.TopK = anthropic.Int(int64(*config.TopK))
	}
	if config.Stop != nil {
		params.StopSequences = config.Stop
	}
	switch config.ToolChoice {
	case ToolChoiceAuto:
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	case ToolChoiceNone:
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("error generating response: %w", err)
	}

	message := Message{Role: RoleAssistant}
	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			message.Content = append(message.Content, ContentBlock{
				Type: ContentTypeText,
				Text: variant.Text,
			})
		case anthropic.ToolUseBlock:
			message.Content = append(message.Content, ContentBlock{
				Type: ContentTypeToolUse,
				ToolUse: &ToolUse{
					ID:    variant.ID,
					Name:  variant.Name,
					Input: json.RawMessage(variant.JSON.Input.Raw()),
				},
			})
		}
	}

	if len(message.Content) == 0 {
		return Response{}, fmt.Errorf("no content in response")
	}

	return Response{
		Message:    message,
		StopReason: convertStopReason(resp.StopReason),
		Usage: TokenUsage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}
