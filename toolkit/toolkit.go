package toolkit

import "github.com/hupe1980/agentrun/tool"

// NewRegistry builds a registry with the full built-in toolset in a fixed
// order (search_web, calculate, take_note, list_notes). The note tools share
// the given store; pass a fresh store per run for isolated sessions.
func NewRegistry(store *NoteStore) *tool.Registry {
	return tool.NewRegistry(
		NewSearchWebTool(),
		NewCalculatorTool(),
		NewTakeNoteTool(store),
		NewListNotesTool(store),
	)
}
