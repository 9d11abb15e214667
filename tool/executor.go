package tool

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/hupe1980/agentrun/core"
	"github.com/hupe1980/agentrun/logging"
)

// ExecutorOptions configure batch dispatch behavior.
type ExecutorOptions struct {
	// Timeout bounds each individual tool call. A call exceeding it yields an
	// error-tagged result instead of hanging the run. Zero disables the bound.
	Timeout time.Duration
	// MaxParallel caps concurrent calls within a batch. 0 or <1 executes the
	// batch sequentially.
	MaxParallel int
	// Logger receives structured execution events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Executor dispatches tool-use blocks against a Registry and captures each
// outcome as a ToolResultBlock. It never returns an error to its caller: an
// unknown name, a validation failure, a handler error, a panic or a timeout
// all become ToolResult{IsError: true} with a human-readable message. Results
// of a batch are returned in invocation order regardless of completion order.
type Executor struct {
	registry *Registry
	opts     ExecutorOptions
}

// NewExecutor constructs an Executor over the given registry.
func NewExecutor(registry *Registry, optFns ...func(o *ExecutorOptions)) *Executor {
	opts := ExecutorOptions{
		Timeout: 30 * time.Second,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Executor{registry: registry, opts: opts}
}

// Run executes a single tool-use block and returns its id-correlated result.
func (e *Executor) Run(ctx context.Context, call core.ToolUseBlock) core.ToolResultBlock {
	logger := e.opts.Logger
	logger.Debug("tool.call.start", "tool", call.Name, "tool_use_id", call.ID)
	start := time.Now()

	impl, err := e.registry.Resolve(call.Name)
	if err != nil {
		logger.Warn("tool.call.unknown", "tool", call.Name, "tool_use_id", call.ID)
		return errorResult(call.ID, err.Error())
	}

	output, err := e.invoke(ctx, impl, call)
	if err != nil {
		logger.Error("tool.call.error", "tool", call.Name, "tool_use_id", call.ID, "error", err.Error())
		return errorResult(call.ID, err.Error())
	}

	logger.Info("tool.call.success", "tool", call.Name, "tool_use_id", call.ID,
		"duration_ms", time.Since(start).Milliseconds())
	return core.ToolResultBlock{ToolUseID: call.ID, Output: output}
}

// RunBatch executes every call of one assistant turn and returns exactly one
// result per call, index-aligned with the input. With MaxParallel > 1 calls
// run concurrently; results are still written back by index so ordering is
// part of the batch contract even though correlation is formally by id.
func (e *Executor) RunBatch(ctx context.Context, calls []core.ToolUseBlock) []core.ToolResultBlock {
	n := len(calls)
	results := make([]core.ToolResultBlock, n)
	if n == 0 {
		return results
	}

	maxPar := e.opts.MaxParallel
	if maxPar <= 1 || n == 1 {
		for i, call := range calls {
			results[i] = e.Run(ctx, call)
		}
		return results
	}
	if maxPar > n {
		maxPar = n
	}

	batchStart := time.Now()
	sem := make(chan struct{}, maxPar)
	var wg sync.WaitGroup
	for i := range calls {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, call core.ToolUseBlock) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = e.Run(ctx, call)
		}(i, calls[i])
	}
	wg.Wait()

	e.opts.Logger.Debug("tool.batch.complete",
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)
	return results
}

// invoke runs the tool body with panic recovery and the per-call timeout. The
// handler runs in its own goroutine; on timeout the goroutine is abandoned
// and its eventual result discarded, so a hanging tool cannot stall the loop.
func (e *Executor) invoke(ctx context.Context, impl Tool, call core.ToolUseBlock) (string, error) {
	callCtx := ctx
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	type outcome struct {
		output string
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.opts.Logger.Error("tool.call.panic", "tool", call.Name, "recover", r,
					"stack", string(debug.Stack()))
				done <- outcome{err: fmt.Errorf("tool %q panicked: %v", call.Name, r)}
			}
		}()
		output, err := impl.Call(callCtx, call.Input)
		done <- outcome{output: output, err: err}
	}()

	select {
	case o := <-done:
		return o.output, o.err
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return "", fmt.Errorf("tool %q canceled: %v", call.Name, ctx.Err())
		}
		return "", fmt.Errorf("tool %q timed out after %s", call.Name, e.opts.Timeout)
	}
}

func errorResult(toolUseID, message string) core.ToolResultBlock {
	return core.ToolResultBlock{ToolUseID: toolUseID, Output: message, IsError: true}
}
