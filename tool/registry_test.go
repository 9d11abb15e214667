package tool

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedTool(name string) *FunctionTool {
	return NewFunctionTool(name, "Tool "+name,
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any) (string, error) {
			return name, nil
		})
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(namedTool("alpha")))
	assert.Equal(t, 1, r.Len())

	resolved, err := r.Resolve("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", resolved.Name())
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := NewRegistry(namedTool("alpha"))
	err := r.Register(namedTool("alpha"))
	require.Error(t, err)

	var dupErr *DuplicateToolError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "alpha", dupErr.Name)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_UnknownName(t *testing.T) {
	r := NewRegistry(namedTool("alpha"))
	_, err := r.Resolve("missing")
	require.Error(t, err)

	var unkErr *UnknownToolError
	require.ErrorAs(t, err, &unkErr)
	assert.Equal(t, "missing", unkErr.Name)
	assert.Contains(t, err.Error(), "missing")
}

func TestRegistry_DefinitionsStableOrder(t *testing.T) {
	names := []string{"zeta", "alpha", "mid"}
	tools := make([]Tool, len(names))
	for i, n := range names {
		tools[i] = namedTool(n)
	}
	r := NewRegistry(tools...)

	// Registration order, not map iteration order, and stable across calls.
	for range 5 {
		defs := r.Definitions()
		require.Len(t, defs, len(names))
		for i, n := range names {
			assert.Equal(t, n, defs[i].Name)
			assert.Equal(t, "Tool "+n, defs[i].Description)
		}
	}
}

func TestNewRegistry_PanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry(namedTool("alpha"), namedTool("alpha"))
	})
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 50 {
			_ = r.Register(namedTool(fmt.Sprintf("tool_%d", i)))
		}
	}()
	for range 50 {
		_ = r.Definitions()
		_, _ = r.Resolve("tool_0")
	}
	<-done
	assert.Equal(t, 50, r.Len())
}
