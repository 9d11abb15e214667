package core

// Role identifies the author of a turn.
type Role string

const (
	// RoleUser marks the seed task turn.
	RoleUser Role = "user"
	// RoleAssistant marks a model-produced turn.
	RoleAssistant Role = "assistant"
	// RoleTool marks a tool-result batch turn answering the preceding
	// assistant turn's tool-use blocks.
	RoleTool Role = "tool"
)

// Turn holds role + ordered content blocks. Turns are immutable once appended
// to a Conversation; constructors copy their block slices to enforce that.
type Turn struct {
	Role   Role           `json:"role"`
	Blocks []ContentBlock `json:"blocks"`
}

// NewUserTurn wraps free text as a user turn.
func NewUserTurn(text string) Turn {
	return Turn{Role: RoleUser, Blocks: []ContentBlock{TextBlock{Text: text}}}
}

// NewAssistantTurn wraps model output blocks (thinking, text, tool use) as an
// assistant turn, preserving block order.
func NewAssistantTurn(blocks []ContentBlock) Turn {
	copied := make([]ContentBlock, len(blocks))
	copy(copied, blocks)
	return Turn{Role: RoleAssistant, Blocks: copied}
}

// NewToolResultTurn wraps a batch of tool results as a single tool turn.
func NewToolResultTurn(results []ToolResultBlock) Turn {
	blocks := make([]ContentBlock, len(results))
	for i, r := range results {
		blocks[i] = r
	}
	return Turn{Role: RoleTool, Blocks: blocks}
}

// FirstText returns the text of the first TextBlock, or "" if none exists.
func (t Turn) FirstText() string {
	for _, b := range t.Blocks {
		if tb, ok := b.(TextBlock); ok {
			return tb.Text
		}
	}
	return ""
}

// ToolUses returns the tool-use blocks of the turn in emission order.
func (t Turn) ToolUses() []ToolUseBlock {
	var uses []ToolUseBlock
	for _, b := range t.Blocks {
		if tu, ok := b.(ToolUseBlock); ok {
			uses = append(uses, tu)
		}
	}
	return uses
}

// ToolResults returns the tool-result blocks of the turn in emission order.
func (t Turn) ToolResults() []ToolResultBlock {
	var results []ToolResultBlock
	for _, b := range t.Blocks {
		if tr, ok := b.(ToolResultBlock); ok {
			results = append(results, tr)
		}
	}
	return results
}
