package core

// TerminationReason describes why an agent run stopped.
type TerminationReason string

const (
	// TerminationModelDone means the model signaled natural completion.
	TerminationModelDone TerminationReason = "model_done"
	// TerminationNoToolCalls means the backend claimed tool use but supplied
	// no tool-use blocks; the run aborts instead of spinning forever.
	TerminationNoToolCalls TerminationReason = "no_tool_calls_produced"
	// TerminationMaxTurns means the configured model-call bound was exceeded.
	TerminationMaxTurns TerminationReason = "max_turns_exceeded"
)

// RunResult is the structured terminal outcome of a run. It is returned for
// both successful and aborted runs; only backend failures escape as errors.
type RunResult struct {
	RunID      string            `json:"run_id"`
	FinalText  string            `json:"final_text"`
	TurnsTaken int               `json:"turns_taken"` // Number of model calls issued
	Reason     TerminationReason `json:"terminated_reason"`
}

// Completed reports whether the run ended with the model's own completion
// signal rather than a guard abort.
func (r RunResult) Completed() bool { return r.Reason == TerminationModelDone }
