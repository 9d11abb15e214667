// Package core provides the foundational conversation types used by AgentRun.
// It defines the core abstractions for:
//
//   - ContentBlock (closed tagged variant over assistant / tool content)
//   - Turn (one atomic unit of conversation history)
//   - Conversation (append-only message history for a single run)
//   - RunResult (structured terminal outcome of an agent run)
//
// The package intentionally keeps implementation concerns (model adapters,
// tool execution, loop orchestration) out of scope, exposing small immutable
// value types the rest of the module builds on.
package core
