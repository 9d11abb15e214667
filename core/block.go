package core

// ContentBlock represents a polymorphic fragment of turn content. Concrete
// block types implement the unexported isBlock marker enabling a closed set,
// so consumption sites can switch exhaustively over the four variants.
type ContentBlock interface{ isBlock() }

// ThinkingBlock is a reasoning trace emitted by the model before its answer.
// It is carried verbatim in the history but never contains tool traffic.
// Signature is an opaque provider token that lets adapters replay the trace
// on subsequent calls; backends without signed traces leave it empty.
type ThinkingBlock struct {
	Text      string // Raw reasoning text
	Signature string // Opaque provider verification token, may be empty
}

// isBlock implements the ContentBlock interface for ThinkingBlock.
func (ThinkingBlock) isBlock() {}

// TextBlock is a plain text content segment.
type TextBlock struct {
	Text string // Plain UTF-8 text
}

// isBlock implements the ContentBlock interface for TextBlock.
func (TextBlock) isBlock() {}

// ToolUseBlock is a model-issued request to execute a named tool.
// The ID is opaque, generated by the backend, and unique within its turn.
type ToolUseBlock struct {
	ID    string         `json:"id"`    // Correlation id echoed by the matching result
	Name  string         `json:"name"`  // Registered tool name
	Input map[string]any `json:"input"` // Structured arguments (JSON object)
}

// isBlock implements the ContentBlock interface for ToolUseBlock.
func (ToolUseBlock) isBlock() {}

// ToolResultBlock carries the outcome of a single tool invocation back to the
// model. ToolUseID must echo the originating ToolUseBlock.ID exactly; that
// binding is the correlation invariant the loop preserves.
type ToolResultBlock struct {
	ToolUseID string `json:"tool_use_id"`
	Output    string `json:"output"`
	IsError   bool   `json:"is_error"`
}

// isBlock implements the ContentBlock interface for ToolResultBlock.
func (ToolResultBlock) isBlock() {}
