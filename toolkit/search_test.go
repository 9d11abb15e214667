package toolkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchWeb(t *testing.T) {
	hit := SearchWeb("What are the causes of climate change?")
	assert.Contains(t, hit, "long-term shifts in global temperatures")

	// Matching is case-insensitive on the query side.
	assert.Equal(t, hit, SearchWeb("CLIMATE CHANGE impacts"))

	miss := SearchWeb("quantum basket weaving")
	assert.Contains(t, miss, "No specific results found")
	assert.Contains(t, miss, "quantum basket weaving")
}

func TestSearchWebTool_Call(t *testing.T) {
	search := NewSearchWebTool()

	out, err := search.Call(context.Background(), map[string]any{"query": "go programming concurrency"})
	require.NoError(t, err)
	assert.Contains(t, out, "goroutines")

	_, err = search.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
}

func TestNewRegistry_ToolOrder(t *testing.T) {
	registry := NewRegistry(NewNoteStore())

	defs := registry.Definitions()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	assert.Equal(t, []string{"search_web", "calculate", "take_note", "list_notes"}, names)
}
