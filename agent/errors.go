package agent

import "fmt"

// BackendError wraps a transport or model-call failure. The loop does not
// retry; it surfaces the failure to the caller as a run failure. Retry
// policy, if any, belongs to the model adapter.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("model backend failure: %v", e.Err)
}

// Unwrap exposes the underlying transport error for errors.Is / errors.As.
func (e *BackendError) Unwrap() error { return e.Err }
