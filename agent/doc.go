// Package agent contains the orchestration loop that drives a conversational
// exchange between a model backend and registered tools. The package focuses
// on three concerns:
//
//  1. The request/dispatch/feedback cycle (call model, run tools, feed results back)
//  2. Preserving the correlation invariant between tool-use blocks and their results
//  3. Termination and failure handling (natural completion, guards, backend errors)
//
// Design principles:
//   - One in-flight model call at a time; full ordering between rounds
//   - Batch dispatch: every tool call of a turn is executed and answered
//     together before the next model call is issued
//   - Tool failures are data (error-tagged results for the model), backend
//     failures are errors (propagated to the caller)
//
// The package keeps model specifics, tool implementations and presentation in
// their respective packages; the loop sees only the model.Model and
// tool.Registry abstractions.
package agent
