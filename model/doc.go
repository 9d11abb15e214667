// Package model defines the provider-neutral contract between the agent loop
// and an LLM inference backend. A Model receives the full conversation
// history, the registered tool definitions and generation settings, and must
// yield one fully assembled response per call: adapters that consume a
// streaming transport accumulate partial deltas internally before returning,
// so incremental delivery never leaks into the orchestration logic.
//
// Concrete adapters live in the subpackages anthropic, openai and gemini.
// ScriptedModel is an in-memory implementation for tests and examples.
package model
