package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hupe1980/agentrun/core"
	"github.com/hupe1980/agentrun/model"
	"github.com/hupe1980/agentrun/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	return tool.NewRegistry(
		tool.NewFunctionTool("echo", "Echo the message back",
			map[string]any{
				"type":       "object",
				"properties": map[string]any{"message": map[string]any{"type": "string"}},
				"required":   []string{"message"},
			},
			func(_ context.Context, args map[string]any) (string, error) {
				return args["message"].(string), nil
			}),
		tool.NewFunctionTool("fail", "Always fails",
			map[string]any{"type": "object", "properties": map[string]any{}},
			func(_ context.Context, _ map[string]any) (string, error) {
				return "", errors.New("deliberate failure")
			}),
	)
}

func TestLoop_Run_EndTurnFirstRound(t *testing.T) {
	m := model.NewScriptedModel(model.TextResponse("All done."))
	loop := New(m, testRegistry(t))

	result, err := loop.Run(context.Background(), "say hello")
	require.NoError(t, err)
	assert.Equal(t, "All done.", result.FinalText)
	assert.Equal(t, 1, result.TurnsTaken)
	assert.Equal(t, core.TerminationModelDone, result.Reason)
	assert.True(t, result.Completed())
	assert.NotEmpty(t, result.RunID)
}

func TestLoop_Run_ToolRoundThenDone(t *testing.T) {
	m := model.NewScriptedModel(
		model.ToolUseResponse(
			core.ToolUseBlock{ID: "tu_1", Name: "echo", Input: map[string]any{"message": "one"}},
			core.ToolUseBlock{ID: "tu_2", Name: "echo", Input: map[string]any{"message": "two"}},
			core.ToolUseBlock{ID: "tu_3", Name: "echo", Input: map[string]any{"message": "three"}},
		),
		model.TextResponse("Summarized."),
	)

	var turns []core.Turn
	loop := New(m, testRegistry(t), func(o *Options) {
		o.Observer = func(turn core.Turn) { turns = append(turns, turn) }
	})

	result, err := loop.Run(context.Background(), "echo three things")
	require.NoError(t, err)
	assert.Equal(t, "Summarized.", result.FinalText)
	assert.Equal(t, core.TerminationModelDone, result.Reason)

	// Exactly two model calls: the tool round and the final answer.
	assert.Equal(t, 2, m.Calls())
	assert.Equal(t, 2, result.TurnsTaken)

	// Conversation shape: user, assistant(tool_use), tool results, assistant(text).
	require.Len(t, turns, 4)
	assert.Equal(t, core.RoleUser, turns[0].Role)
	assert.Equal(t, core.RoleAssistant, turns[1].Role)
	assert.Equal(t, core.RoleTool, turns[2].Role)
	assert.Equal(t, core.RoleAssistant, turns[3].Role)

	// One result per call, correlated and in invocation order.
	calls := turns[1].ToolUses()
	results := turns[2].ToolResults()
	require.Len(t, results, len(calls))
	for i, call := range calls {
		assert.Equal(t, call.ID, results[i].ToolUseID)
		assert.False(t, results[i].IsError)
		assert.Equal(t, call.Input["message"], results[i].Output)
	}
}

func TestLoop_Run_SecondRequestCarriesFullHistory(t *testing.T) {
	m := model.NewScriptedModel(
		model.ToolUseResponse(core.ToolUseBlock{ID: "tu_1", Name: "echo", Input: map[string]any{"message": "hi"}}),
		model.TextResponse("done"),
	)
	loop := New(m, testRegistry(t))

	_, err := loop.Run(context.Background(), "task")
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	assert.Len(t, reqs[0].Messages, 1)
	require.Len(t, reqs[1].Messages, 3)

	// The earlier request's messages are a prefix of the later one.
	for i, turn := range reqs[0].Messages {
		assert.Equal(t, turn.Role, reqs[1].Messages[i].Role)
		assert.Equal(t, len(turn.Blocks), len(reqs[1].Messages[i].Blocks))
	}
	assert.Equal(t, core.RoleTool, reqs[1].Messages[2].Role)
}

func TestLoop_Run_ToolErrorFeedsBackAndContinues(t *testing.T) {
	m := model.NewScriptedModel(
		model.ToolUseResponse(core.ToolUseBlock{ID: "tu_1", Name: "fail"}),
		model.TextResponse("recovered"),
	)

	var turns []core.Turn
	loop := New(m, testRegistry(t), func(o *Options) {
		o.Observer = func(turn core.Turn) { turns = append(turns, turn) }
	})

	result, err := loop.Run(context.Background(), "try it")
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.FinalText)

	results := turns[2].ToolResults()
	require.Len(t, results, 1)
	assert.True(t, results[0].IsError)
	assert.Contains(t, results[0].Output, "deliberate failure")
}

func TestLoop_Run_UnknownToolContinues(t *testing.T) {
	m := model.NewScriptedModel(
		model.ToolUseResponse(core.ToolUseBlock{ID: "tu_1", Name: "ghost"}),
		model.TextResponse("moved on"),
	)

	var turns []core.Turn
	loop := New(m, testRegistry(t), func(o *Options) {
		o.Observer = func(turn core.Turn) { turns = append(turns, turn) }
	})

	result, err := loop.Run(context.Background(), "call a ghost")
	require.NoError(t, err)
	assert.Equal(t, core.TerminationModelDone, result.Reason)

	results := turns[2].ToolResults()
	require.Len(t, results, 1)
	assert.True(t, results[0].IsError)
	assert.Equal(t, "tu_1", results[0].ToolUseID)
}

func TestLoop_Run_NoToolCallsGuard(t *testing.T) {
	// Stop reason claims a tool round but no tool-use blocks are present.
	m := model.NewScriptedModel(model.Response{
		Blocks:     []core.ContentBlock{core.TextBlock{Text: "thinking out loud"}},
		StopReason: model.StopToolUse,
	})
	loop := New(m, testRegistry(t))

	result, err := loop.Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, core.TerminationNoToolCalls, result.Reason)
	assert.False(t, result.Completed())
	assert.Empty(t, result.FinalText)
}

func TestLoop_Run_MaxTurnsGuard(t *testing.T) {
	responses := make([]model.Response, 8)
	for i := range responses {
		responses[i] = model.ToolUseResponse(
			core.ToolUseBlock{ID: fmt.Sprintf("tu_%d", i), Name: "echo", Input: map[string]any{"message": "again"}},
		)
	}
	m := model.NewScriptedModel(responses...)
	loop := New(m, testRegistry(t), func(o *Options) {
		o.MaxTurns = 3
	})

	result, err := loop.Run(context.Background(), "loop forever")
	require.NoError(t, err)
	assert.Equal(t, core.TerminationMaxTurns, result.Reason)
	assert.Equal(t, 3, result.TurnsTaken)
	assert.Equal(t, 3, m.Calls())
	assert.False(t, result.Completed())
}

func TestLoop_Run_BackendError(t *testing.T) {
	m := model.NewScriptedModel() // exhausted immediately
	loop := New(m, testRegistry(t))

	result, err := loop.Run(context.Background(), "task")
	assert.Nil(t, result)
	require.Error(t, err)

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Contains(t, backendErr.Error(), "exhausted")
}

func TestLoop_Run_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := model.NewScriptedModel(model.TextResponse("never seen"))
	loop := New(m, testRegistry(t))

	result, err := loop.Run(ctx, "task")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)

	var backendErr *BackendError
	assert.False(t, errors.As(err, &backendErr), "cancellation must not be wrapped as backend failure")
}

func TestLoop_Run_RequestCarriesToolDefinitions(t *testing.T) {
	m := model.NewScriptedModel(model.TextResponse("ok"))
	loop := New(m, testRegistry(t), func(o *Options) {
		o.ModelID = "custom-model"
		o.MaxOutputTokens = 1024
	})

	_, err := loop.Run(context.Background(), "task")
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "custom-model", reqs[0].ModelID)
	assert.Equal(t, int64(1024), reqs[0].MaxOutputTokens)

	names := make([]string, 0, len(reqs[0].Tools))
	for _, def := range reqs[0].Tools {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{"echo", "fail"}, names)
	assert.True(t, strings.HasPrefix(reqs[0].Messages[0].FirstText(), "task"))
}
