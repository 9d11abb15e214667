package core

import "sync"

// Conversation is the ordered, append-only log of turns for a single run.
// It is safe for concurrent access and never mutates or removes an appended
// turn; History returns a fresh copy so callers cannot rewrite state either.
type Conversation struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewConversation constructs an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{turns: make([]Turn, 0, 8)}
}

// Append adds a turn to the end of the history.
func (c *Conversation) Append(turn Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, turn)
}

// History returns the turns in append order, starting with the seed user turn.
// The returned slice is a copy; the backing history cannot be altered through it.
func (c *Conversation) History() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h := make([]Turn, len(c.turns))
	copy(h, c.turns)
	return h
}

// Len returns the number of appended turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Last returns the most recently appended turn and true, or a zero Turn and
// false when the conversation is still empty.
func (c *Conversation) Last() (Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.turns) == 0 {
		return Turn{}, false
	}
	return c.turns[len(c.turns)-1], true
}
