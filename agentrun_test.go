package agentrun

import (
	"context"
	"testing"

	"github.com/hupe1980/agentrun/agent"
	"github.com/hupe1980/agentrun/core"
	"github.com/hupe1980/agentrun/model"
	"github.com/hupe1980/agentrun/toolkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_WithToolkit(t *testing.T) {
	m := model.NewScriptedModel(
		model.ToolUseResponse(
			core.ToolUseBlock{Name: "calculate", Input: map[string]any{"expression": "2**10"}},
		),
		model.TextResponse("2 to the power of 10 is 1024."),
	)

	store := toolkit.NewNoteStore()
	result, err := Run(context.Background(), m, toolkit.NewRegistry(store), "what is 2**10?",
		func(o *agent.Options) {
			o.MaxTurns = 4
		},
	)
	require.NoError(t, err)
	assert.Equal(t, core.TerminationModelDone, result.Reason)
	assert.Equal(t, "2 to the power of 10 is 1024.", result.FinalText)
	assert.Equal(t, 2, result.TurnsTaken)

	// The calculator's output was fed back verbatim in the tool-result turn.
	reqs := m.Requests()
	require.Len(t, reqs, 2)
	final := reqs[1].Messages[len(reqs[1].Messages)-1]
	results := final.ToolResults()
	require.Len(t, results, 1)
	assert.Equal(t, "1024", results[0].Output)
	assert.False(t, results[0].IsError)
}
