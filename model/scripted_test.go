package model

import (
	"context"
	"testing"

	"github.com/hupe1980/agentrun/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptedModel_ReplaysInOrder(t *testing.T) {
	m := NewScriptedModel(
		ToolUseResponse(core.ToolUseBlock{Name: "lookup", Input: map[string]any{"q": "x"}}),
		TextResponse("final answer"),
	)

	first, err := m.Send(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, StopToolUse, first.StopReason)
	require.Len(t, first.Blocks, 1)
	call, ok := first.Blocks[0].(core.ToolUseBlock)
	require.True(t, ok)
	assert.Equal(t, "lookup", call.Name)
	assert.NotEmpty(t, call.ID, "generated call ids must be non-empty")

	second, err := m.Send(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, StopEndTurn, second.StopReason)
	assert.Equal(t, "final answer", textOf(t, second))
}

func textOf(t *testing.T, resp *Response) string {
	t.Helper()
	for _, b := range resp.Blocks {
		if text, ok := b.(core.TextBlock); ok {
			return text.Text
		}
	}
	return ""
}

func TestScriptedModel_RecordsRequests(t *testing.T) {
	m := NewScriptedModel(TextResponse("ok"))

	req := Request{
		ModelID: "m-1",
		Tools:   []ToolDefinition{{Name: "echo"}},
		Messages: []core.Turn{
			core.NewUserTurn("hello"),
		},
	}
	_, err := m.Send(context.Background(), req)
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "m-1", reqs[0].ModelID)
	assert.Equal(t, "echo", reqs[0].Tools[0].Name)
	assert.Equal(t, 1, m.Calls())
}

func TestScriptedModel_Exhausted(t *testing.T) {
	m := NewScriptedModel(TextResponse("only one"))

	_, err := m.Send(context.Background(), Request{})
	require.NoError(t, err)

	_, err = m.Send(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exhausted")
}

func TestScriptedModel_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewScriptedModel(TextResponse("never"))
	_, err := m.Send(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, m.Calls(), "a canceled call is not recorded")
}
