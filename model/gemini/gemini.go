// Package gemini adapts the Google Gemini API (generative-ai-go) to the
// model.Model interface. Gemini function calls carry no correlation ids, so
// the adapter synthesizes one per call and maps ids back to function names
// when replaying results.
package gemini

import (
	"context"
	"fmt"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/hupe1980/agentrun/core"
	"github.com/hupe1980/agentrun/model"
	"google.golang.org/api/option"
)

// Options configures the Gemini model adapter.
type Options struct {
	Model     string
	APIKey    string
	MaxTokens int32
}

// Model wraps the Gemini API behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// New creates a new Gemini model. The client owns a connection and should be
// closed via Close when the run ends.
func New(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:     "gemini-1.5-pro",
		MaxTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini init: missing API key")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &Model{client: client, opts: opts}, nil
}

// Close releases the underlying client connection.
func (m *Model) Close() error { return m.client.Close() }

// Send implements model.Model over a multi-turn chat session: all but the
// last turn become session history, the last turn is the sent message.
func (m *Model) Send(ctx context.Context, req model.Request) (*model.Response, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("gemini: empty message history")
	}

	name := m.opts.Model
	if req.ModelID != "" {
		name = req.ModelID
	}
	gm := m.client.GenerativeModel(name)
	maxTokens := m.opts.MaxTokens
	if req.MaxOutputTokens > 0 {
		maxTokens = int32(req.MaxOutputTokens)
	}
	gm.SetMaxOutputTokens(maxTokens)
	if len(req.Tools) > 0 {
		gm.Tools = buildTools(req.Tools)
	}

	// Synthesized ids are only meaningful within this request; rebuild the
	// id -> function name mapping from the assistant turns each call.
	idToName := collectCallNames(req.Messages)

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, turn := range req.Messages {
		if content := convertTurn(turn, idToName); content != nil {
			contents = append(contents, content)
		}
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("gemini: no sendable content in history")
	}

	chat := gm.StartChat()
	chat.History = contents[:len(contents)-1]
	last := contents[len(contents)-1]

	resp, err := chat.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini api error: empty response")
	}

	candidate := resp.Candidates[0]
	var blocks []core.ContentBlock
	hasCalls := false
	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			if p != "" {
				blocks = append(blocks, core.TextBlock{Text: string(p)})
			}
		case genai.FunctionCall:
			hasCalls = true
			blocks = append(blocks, core.ToolUseBlock{
				ID:    "call_" + uuid.NewString(),
				Name:  p.Name,
				Input: p.Args,
			})
		}
	}

	stop := model.StopOther
	switch {
	case hasCalls:
		stop = model.StopToolUse
	case candidate.FinishReason == genai.FinishReasonStop:
		stop = model.StopEndTurn
	}

	return &model.Response{Blocks: blocks, StopReason: stop}, nil
}

// collectCallNames indexes tool-use ids to function names across the history.
func collectCallNames(turns []core.Turn) map[string]string {
	names := make(map[string]string)
	for _, turn := range turns {
		if turn.Role != core.RoleAssistant {
			continue
		}
		for _, use := range turn.ToolUses() {
			names[use.ID] = use.Name
		}
	}
	return names
}

// convertTurn maps one conversation turn onto a Gemini content entry.
func convertTurn(turn core.Turn, idToName map[string]string) *genai.Content {
	switch turn.Role {
	case core.RoleUser:
		if text := turn.FirstText(); text != "" {
			return &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(text)}}
		}
	case core.RoleAssistant:
		var parts []genai.Part
		for _, block := range turn.Blocks {
			switch b := block.(type) {
			case core.TextBlock:
				if b.Text != "" {
					parts = append(parts, genai.Text(b.Text))
				}
			case core.ToolUseBlock:
				parts = append(parts, genai.FunctionCall{Name: b.Name, Args: b.Input})
			}
		}
		if len(parts) > 0 {
			return &genai.Content{Role: "model", Parts: parts}
		}
	case core.RoleTool:
		var parts []genai.Part
		for _, r := range turn.ToolResults() {
			response := map[string]any{"output": r.Output}
			if r.IsError {
				response["error"] = true
			}
			parts = append(parts, genai.FunctionResponse{
				Name:     idToName[r.ToolUseID],
				Response: response,
			})
		}
		if len(parts) > 0 {
			return &genai.Content{Role: "function", Parts: parts}
		}
	}
	return nil
}

// buildTools converts tool definitions to Gemini function declarations.
func buildTools(defs []model.ToolDefinition) []*genai.Tool {
	declarations := make([]*genai.FunctionDeclaration, len(defs))
	for i, def := range defs {
		declarations[i] = &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  buildSchema(def.InputSchema),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

// buildSchema converts a JSON-schema-subset object into a genai.Schema.
func buildSchema(schema map[string]any) *genai.Schema {
	out := &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}

	if props, ok := schema["properties"].(map[string]any); ok {
		for name, raw := range props {
			prop, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			typ, _ := prop["type"].(string)
			desc, _ := prop["description"].(string)
			out.Properties[name] = &genai.Schema{Type: schemaType(typ), Description: desc}
		}
	}

	switch req := schema["required"].(type) {
	case []string:
		out.Required = req
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}
	return out
}

func schemaType(jsonType string) genai.Type {
	switch jsonType {
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "gemini",
		SupportsTools: true,
	}
}
