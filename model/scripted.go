package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hupe1980/agentrun/core"
)

// ScriptedModel is a lightweight in-memory Model useful for tests & examples.
// It replays a fixed sequence of responses, one per Send call, and records
// every request it receives so tests can assert on the transmitted history.
type ScriptedModel struct {
	mu        sync.Mutex
	responses []Response
	requests  []Request
	next      int
}

// NewScriptedModel constructs a ScriptedModel replaying the given responses in order.
func NewScriptedModel(responses ...Response) *ScriptedModel {
	return &ScriptedModel{responses: responses}
}

// TextResponse builds an end-turn response carrying a single text block.
func TextResponse(text string) Response {
	return Response{
		Blocks:     []core.ContentBlock{core.TextBlock{Text: text}},
		StopReason: StopEndTurn,
	}
}

// ToolUseResponse builds a tool-use response invoking the named tools with
// the paired inputs. Generated call ids are unique per invocation.
func ToolUseResponse(calls ...core.ToolUseBlock) Response {
	blocks := make([]core.ContentBlock, len(calls))
	for i, c := range calls {
		if c.ID == "" {
			c.ID = "toolu_" + uuid.NewString()
		}
		blocks[i] = c
	}
	return Response{Blocks: blocks, StopReason: StopToolUse}
}

// Send implements Model, returning the next scripted response.
func (m *ScriptedModel) Send(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.next >= len(m.responses) {
		return nil, fmt.Errorf("scripted model exhausted after %d responses", len(m.responses))
	}
	resp := m.responses[m.next]
	m.next++
	return &resp, nil
}

// Requests returns a copy of every request received so far, in call order.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]Request, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}

// Calls returns the number of Send invocations so far.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Info implements Model.
func (m *ScriptedModel) Info() Info {
	return Info{Name: "scripted", Provider: "test", SupportsTools: true}
}
