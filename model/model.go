package model

import (
	"context"

	"github.com/hupe1980/agentrun/core"
)

// StopReason is the backend's signal for why generation ended. Anything a
// provider reports beyond "done" or "wants tools" is normalized to StopOther
// and treated defensively by the loop.
type StopReason string

const (
	// StopEndTurn means the model is finished and will issue no further tool
	// calls this run.
	StopEndTurn StopReason = "end_turn"
	// StopToolUse means the response contains tool-use blocks demanding
	// results before the conversation can continue.
	StopToolUse StopReason = "tool_use"
	// StopOther is any other backend-specific terminal signal.
	StopOther StopReason = "other"
)

// ReasoningMode selects extended thinking behavior for backends that support it.
type ReasoningMode string

const (
	// ReasoningOff disables extended thinking.
	ReasoningOff ReasoningMode = ""
	// ReasoningAdaptive lets the backend decide how much to think per turn.
	ReasoningAdaptive ReasoningMode = "adaptive"
)

// ToolDefinition declaratively exposes a callable tool to the model. The
// serialized shape {name, description, input_schema} is exactly what is
// transmitted to the backend per request.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"` // JSON-schema-subset object
}

// Request captures the normalized model input produced by the loop.
type Request struct {
	ModelID         string           `json:"model_id,omitempty"` // Provider model override; adapters default it
	MaxOutputTokens int64            `json:"max_output_tokens,omitempty"`
	Reasoning       ReasoningMode    `json:"reasoning_mode,omitempty"`
	Tools           []ToolDefinition `json:"tools,omitempty"`
	Messages        []core.Turn      `json:"messages"`
}

// Response is one fully assembled model turn: ordered content blocks plus the
// normalized stop reason.
type Response struct {
	Blocks     []core.ContentBlock `json:"blocks"`
	StopReason StopReason          `json:"stop_reason"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "anthropic", "openai", "gemini", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the agent loop requires to drive generation.
// Send blocks until the complete response is available; transport failures
// (network, rate limit, malformed reply) surface as errors and any retry
// policy belongs to the adapter, not the loop.
type Model interface {
	Send(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}
