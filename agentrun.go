// Package agentrun provides a high-level façade over the agent loop, tool
// registry and model adapters for driving a tool-using conversation with an
// LLM backend. Most applications interact with this package by:
//  1. Constructing a model adapter (model/anthropic, model/openai, model/gemini
//     or any model.Model implementation)
//  2. Registering tools in a tool.Registry (toolkit ships demo tools)
//  3. Calling Run with a free-text task
//
// The façade delegates orchestration to agent.Loop while keeping one-shot
// usage concise. Defaults are safe for local development; production callers
// typically supply a structured logger and tuned limits via option functions.
package agentrun

import (
	"context"

	"github.com/hupe1980/agentrun/agent"
	"github.com/hupe1980/agentrun/core"
	"github.com/hupe1980/agentrun/model"
	"github.com/hupe1980/agentrun/tool"
)

// Run executes a single task through a fresh loop over the given model and
// registry, returning the structured run outcome.
func Run(
	ctx context.Context,
	m model.Model,
	registry *tool.Registry,
	task string,
	optFns ...func(o *agent.Options),
) (*core.RunResult, error) {
	return agent.New(m, registry, optFns...).Run(ctx, task)
}
