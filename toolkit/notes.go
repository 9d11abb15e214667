package toolkit

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/agentrun/tool"
)

// NoteStore is an in-memory note map owned by the run/session that created
// it. It is injected into the note tools at registration time instead of
// living in ambient global state, and serializes its own access since tool
// batches may execute concurrently.
type NoteStore struct {
	mu     sync.Mutex
	titles []string // insertion order for stable listings
	notes  map[string]string
}

// NewNoteStore constructs an empty note store.
func NewNoteStore() *NoteStore {
	return &NoteStore{notes: make(map[string]string)}
}

// Save stores content under title, overwriting an existing note of the same
// title without changing its listing position.
func (s *NoteStore) Save(title, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.notes[title]; !exists {
		s.titles = append(s.titles, title)
	}
	s.notes[title] = content
}

// List renders all notes as "- title: content" lines in insertion order.
func (s *NoteStore) List() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.titles) == 0 {
		return "No notes saved yet."
	}
	lines := make([]string, len(s.titles))
	for i, title := range s.titles {
		lines[i] = fmt.Sprintf("- %s: %s", title, s.notes[title])
	}
	return strings.Join(lines, "\n")
}

// Len returns the number of stored notes.
func (s *NoteStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.titles)
}

// NewTakeNoteTool returns the take_note tool bound to the given store.
func NewTakeNoteTool(store *NoteStore) *tool.FunctionTool {
	return tool.NewFunctionTool(
		"take_note",
		"Save a note with a title and content for later reference.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":   map[string]any{"type": "string", "description": "A short title for the note."},
				"content": map[string]any{"type": "string", "description": "The body of the note."},
			},
			"required": []string{"title", "content"},
		},
		func(_ context.Context, args map[string]any) (string, error) {
			title, _ := args["title"].(string)
			content, _ := args["content"].(string)
			store.Save(title, content)
			return fmt.Sprintf("Note '%s' saved successfully.", title), nil
		},
	)
}

// NewListNotesTool returns the list_notes tool bound to the given store.
// Listing is read-only and idempotent.
func NewListNotesTool(store *NoteStore) *tool.FunctionTool {
	return tool.NewFunctionTool(
		"list_notes",
		"List all notes that have been saved in this session.",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{},
			"required":   []string{},
		},
		func(_ context.Context, _ map[string]any) (string, error) {
			return store.List(), nil
		},
	)
}
