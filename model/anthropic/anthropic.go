// Package anthropic adapts the Anthropic Messages API to the model.Model
// interface. Responses are consumed over the SDK's streaming transport and
// accumulated into one fully assembled turn before returning, so long
// generations avoid request timeouts without exposing chunking to the loop.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/hupe1980/agentrun/core"
	"github.com/hupe1980/agentrun/model"
)

// Options configures the Anthropic model adapter.
type Options struct {
	Model          anthropic.Model
	MaxTokens      int64
	APIKey         string
	Streaming      bool  // Assemble the response from the streaming transport
	ThinkingBudget int64 // Token budget when extended thinking is requested
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic model using the official client.
func New(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic model from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:          anthropic.ModelClaude3_7SonnetLatest,
		MaxTokens:      4096,
		Streaming:      true,
		ThinkingBudget: 2048,
	}
}

// Send implements model.Model. It converts the normalized request into
// Messages API parameters, performs one (optionally streamed) call, and
// returns the assembled response with a normalized stop reason.
func (m *Model) Send(ctx context.Context, req model.Request) (*model.Response, error) {
	params := anthropic.MessageNewParams{
		Model:     m.opts.Model,
		MaxTokens: m.opts.MaxTokens,
		Messages:  buildMessages(req.Messages),
	}
	if req.ModelID != "" {
		params.Model = anthropic.Model(req.ModelID)
	}
	if req.MaxOutputTokens > 0 {
		params.MaxTokens = req.MaxOutputTokens
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}
	if req.Reasoning != model.ReasoningOff {
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(m.opts.ThinkingBudget)
	}

	var (
		resp *anthropic.Message
		err  error
	)
	if m.opts.Streaming {
		resp, err = m.accumulateStream(ctx, params)
	} else {
		resp, err = m.client.Messages.New(ctx, params)
	}
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	blocks, err := convertContent(resp.Content)
	if err != nil {
		return nil, err
	}

	return &model.Response{
		Blocks:     blocks,
		StopReason: mapStopReason(resp.StopReason),
	}, nil
}

// accumulateStream consumes the event stream into a complete message. Partial
// deltas are a transport detail; callers only ever see the final message.
func (m *Model) accumulateStream(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	stream := m.client.Messages.NewStreaming(ctx, params)
	message := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			return nil, fmt.Errorf("accumulate stream event: %w", err)
		}
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	return &message, nil
}

// convertContent maps SDK content blocks onto the closed core variant set.
func convertContent(content []anthropic.ContentBlockUnion) ([]core.ContentBlock, error) {
	var blocks []core.ContentBlock
	for _, block := range content {
		switch block.Type {
		case "thinking":
			tb := block.AsThinking()
			blocks = append(blocks, core.ThinkingBlock{Text: tb.Thinking, Signature: tb.Signature})
		case "text":
			tb := block.AsText()
			if tb.Text != "" {
				blocks = append(blocks, core.TextBlock{Text: tb.Text})
			}
		case "tool_use":
			tb := block.AsToolUse()
			input := map[string]any{}
			if tb.Input != nil {
				raw, err := json.Marshal(tb.Input)
				if err != nil {
					return nil, fmt.Errorf("marshal tool input: %w", err)
				}
				if err := json.Unmarshal(raw, &input); err != nil {
					return nil, fmt.Errorf("tool input for %q is not a JSON object: %w", tb.Name, err)
				}
			}
			blocks = append(blocks, core.ToolUseBlock{ID: tb.ID, Name: tb.Name, Input: input})
		}
	}
	return blocks, nil
}

// buildMessages converts conversation turns to Anthropic message format.
// Tool-result turns travel as user messages carrying tool_result blocks,
// per the Messages API wire contract.
func buildMessages(turns []core.Turn) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	for _, turn := range turns {
		switch turn.Role {
		case core.RoleUser:
			var content []anthropic.ContentBlockParamUnion
			for _, b := range turn.Blocks {
				if tb, ok := b.(core.TextBlock); ok && tb.Text != "" {
					content = append(content, anthropic.NewTextBlock(tb.Text))
				}
			}
			if len(content) > 0 {
				messages = append(messages, anthropic.NewUserMessage(content...))
			}
		case core.RoleAssistant:
			content := buildAssistantContent(turn.Blocks)
			if len(content) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(content...))
			}
		case core.RoleTool:
			var content []anthropic.ContentBlockParamUnion
			for _, r := range turn.ToolResults() {
				content = append(content, anthropic.NewToolResultBlock(r.ToolUseID, r.Output, r.IsError))
			}
			if len(content) > 0 {
				messages = append(messages, anthropic.NewUserMessage(content...))
			}
		}
	}
	return messages
}

func buildAssistantContent(blocks []core.ContentBlock) []anthropic.ContentBlockParamUnion {
	var content []anthropic.ContentBlockParamUnion
	for _, b := range blocks {
		switch block := b.(type) {
		case core.ThinkingBlock:
			// Unsigned traces cannot be replayed; the API rejects them.
			if block.Signature != "" {
				content = append(content, anthropic.NewThinkingBlock(block.Signature, block.Text))
			}
		case core.TextBlock:
			if block.Text != "" {
				content = append(content, anthropic.NewTextBlock(block.Text))
			}
		case core.ToolUseBlock:
			content = append(content, anthropic.NewToolUseBlock(block.ID, block.Input, block.Name))
		}
	}
	return content
}

// buildTools converts tool definitions to the Anthropic tool parameter shape.
func buildTools(defs []model.ToolDefinition) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, len(defs))
	for i, def := range defs {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if props, ok := def.InputSchema["properties"]; ok {
			inputSchema.Properties = props
		}
		if required, ok := def.InputSchema["required"]; ok {
			inputSchema.Required = requiredStrings(required)
		}
		tools[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        def.Name,
				Description: anthropic.String(def.Description),
				InputSchema: inputSchema,
			},
		}
	}
	return tools
}

func requiredStrings(required any) []string {
	switch req := required.(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func mapStopReason(reason anthropic.StopReason) model.StopReason {
	switch reason {
	case anthropic.StopReasonEndTurn:
		return model.StopEndTurn
	case anthropic.StopReasonToolUse:
		return model.StopToolUse
	default:
		return model.StopOther
	}
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          string(m.opts.Model),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}
