// Package openai adapts the OpenAI Chat Completions API (with function/tool
// calling) to the model.Model interface. Conversation turns are converted to
// the SDK's message format and the reply is normalized back into content
// blocks plus a stop reason.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/agentrun/core"
	"github.com/hupe1980/agentrun/model"
	"github.com/openai/openai-go"
)

// Options configure the OpenAI model adapter. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal; extend via functional
// options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI model using the official client.
func New(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI model from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Send implements model.Model via a non-streaming completion. The Chat
// Completions API has no extended-thinking equivalent, so a requested
// reasoning mode is ignored rather than rejected.
func (m *Model) Send(ctx context.Context, req model.Request) (*model.Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:               m.opts.Model,
		Messages:            buildMessages(req.Messages),
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	if req.ModelID != "" {
		params.Model = req.ModelID
	}
	if req.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(req.MaxOutputTokens)
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api error: no choices returned")
	}

	choice := resp.Choices[0]
	blocks := make([]core.ContentBlock, 0, len(choice.Message.ToolCalls)+1)
	if choice.Message.Content != "" {
		blocks = append(blocks, core.TextBlock{Text: choice.Message.Content})
	}
	for _, tc := range choice.Message.ToolCalls {
		input := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil {
				return nil, fmt.Errorf("tool arguments for %q are not a JSON object: %w", tc.Function.Name, err)
			}
		}
		blocks = append(blocks, core.ToolUseBlock{ID: tc.ID, Name: tc.Function.Name, Input: input})
	}

	return &model.Response{
		Blocks:     blocks,
		StopReason: mapFinishReason(choice.FinishReason, len(choice.Message.ToolCalls) > 0),
	}, nil
}

// buildMessages converts conversation turns into OpenAI chat messages.
// Tool-result turns become one tool message per result, id-matched to the
// assistant tool calls that precede them.
func buildMessages(turns []core.Turn) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	for _, turn := range turns {
		switch turn.Role {
		case core.RoleUser:
			if text := joinText(turn); text != "" {
				messages = append(messages, openai.UserMessage(text))
			}
		case core.RoleAssistant:
			toolCalls := buildToolCalls(turn)
			if len(toolCalls) == 0 {
				if text := joinText(turn); text != "" {
					messages = append(messages, openai.AssistantMessage(text))
				}
				continue
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: toolCalls,
				},
			})
		case core.RoleTool:
			for _, r := range turn.ToolResults() {
				messages = append(messages, openai.ToolMessage(r.Output, r.ToolUseID))
			}
		}
	}
	return messages
}

// joinText concatenates the text blocks of a turn; thinking blocks have no
// Chat Completions representation and are dropped.
func joinText(turn core.Turn) string {
	var b strings.Builder
	for _, block := range turn.Blocks {
		if tb, ok := block.(core.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String()
}

func buildToolCalls(turn core.Turn) []openai.ChatCompletionMessageToolCallParam {
	var toolCalls []openai.ChatCompletionMessageToolCallParam
	for _, use := range turn.ToolUses() {
		args, err := json.Marshal(use.Input)
		if err != nil {
			args = []byte("{}")
		}
		toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
			ID:   use.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      use.Name,
				Arguments: string(args),
			},
		})
	}
	return toolCalls
}

// buildTools converts tool definitions to the OpenAI function-tool shape.
func buildTools(defs []model.ToolDefinition) []openai.ChatCompletionToolParam {
	tools := make([]openai.ChatCompletionToolParam, len(defs))
	for i, def := range defs {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  def.InputSchema,
			},
		}
	}
	return tools
}

func mapFinishReason(reason string, hasToolCalls bool) model.StopReason {
	switch reason {
	case "tool_calls":
		return model.StopToolUse
	case "stop":
		// Some models report "stop" even when tool calls are present.
		if hasToolCalls {
			return model.StopToolUse
		}
		return model.StopEndTurn
	default:
		return model.StopOther
	}
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}
