package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrun/internal/util"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a tool.
//
// Responsibilities:
//   - Holds a lightweight JSON-Schema-like input specification
//   - Validates model supplied arguments against that schema before execution
//   - Normalizes error handling so callers receive *ToolError with consistent codes:
//     VALIDATION_ERROR -> schema / argument mismatch
//     EXECUTION_ERROR  -> underlying function returned an error (non-ToolError)
//     (custom codes preserved if the function returns *ToolError directly)
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use by multiple goroutines. Closures that capture shared
// state must serialize their own access.
type FunctionTool struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, args map[string]any) (string, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and function.
//
// Example:
//
//	echoTool := NewFunctionTool(
//	  "echo",
//	  "Echo the given message back",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "message": map[string]any{"type": "string", "description": "Text to echo"},
//	    },
//	    "required": []string{"message"},
//	  },
//	  func(_ context.Context, args map[string]any) (string, error) {
//	    return args["message"].(string), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	schema map[string]any,
	fn func(ctx context.Context, args map[string]any) (string, error),
) *FunctionTool {
	return &FunctionTool{name: name, description: description, schema: schema, fn: fn}
}

// NewFunctionToolFromStruct derives the input schema from a struct using
// reflection, equivalent to util.StructSchema(structType). A convenience for
// simple argument containers.
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(ctx context.Context, args map[string]any) (string, error),
) *FunctionTool {
	return NewFunctionTool(name, description, util.StructSchema(structType), fn)
}

// Name returns the unique tool name used in tool-use blocks and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// InputSchema returns the (minimal) JSON schema describing expected arguments.
func (t *FunctionTool) InputSchema() map[string]any { return t.schema }

// Call validates the provided args against the declared schema then invokes
// the underlying function. Validation or execution failures are wrapped (or
// passed through) as *ToolError for uniform downstream handling.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (string, error) {
	if err := util.ValidateArguments(args, t.schema); err != nil {
		return "", &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    "VALIDATION_ERROR",
		}
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			return "", toolErr
		}
		return "", &ToolError{Tool: t.name, Message: err.Error(), Code: "EXECUTION_ERROR"}
	}
	return result, nil
}
