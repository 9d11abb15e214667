// Package tool implements the function / tool calling subsystem that lets the
// agent loop invoke structured capabilities (APIs, computations, side-effects)
// with schema validated arguments, consistent error handling and a hard
// never-raise execution boundary: a misbehaving tool becomes an error-tagged
// result surfaced to the model, never an aborted run.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrun/internal/util"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tools are registered with a Registry at startup and dispatched by the
// Executor when the model requests them. Implementations should:
//   - Provide clear, descriptive names and descriptions (snake_case names recommended)
//   - Define a proper JSON schema for their input
//   - Handle errors gracefully
//   - Be safe for concurrent use; any shared state a tool mutates must be
//     serialized by the tool itself (the Executor provides no mutual exclusion)
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is provided to the LLM to help it decide when and how to use the tool.
	Description() string

	// InputSchema returns a JSON-schema-subset object describing the expected
	// input format. The schema is transmitted to the model with each request.
	InputSchema() map[string]any

	// Call executes the tool against validated arguments and returns the
	// result as a string payload for the model.
	Call(ctx context.Context, args map[string]any) (string, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`    // Name of the tool that failed
	Message string `json:"message"` // Error message
	Code    string `json:"code"`    // Error code for categorization
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
