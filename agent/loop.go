package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/agentrun/core"
	"github.com/hupe1980/agentrun/logging"
	"github.com/hupe1980/agentrun/model"
	"github.com/hupe1980/agentrun/tool"
)

// state is the loop's lifecycle phase. Transitions:
//
//	running -> awaiting_tool_results -> running (tool round)
//	running -> done                            (model signaled completion)
//	running -> aborted                         (guard tripped)
type state string

const (
	stateRunning           state = "running"
	stateAwaitingToolCalls state = "awaiting_tool_results"
	stateDone              state = "done"
	stateAborted           state = "aborted"
)

// Options configure a Loop.
type Options struct {
	// MaxTurns bounds the number of model calls per run. Exceeding it aborts
	// the run with TerminationMaxTurns instead of looping forever.
	MaxTurns int
	// ModelID overrides the adapter's default model.
	ModelID string
	// MaxOutputTokens caps generation length per model call.
	MaxOutputTokens int64
	// Reasoning selects extended thinking on backends that support it.
	Reasoning model.ReasoningMode
	// ToolTimeout bounds each individual tool call.
	ToolTimeout time.Duration
	// MaxParallelTools caps concurrent tool execution within one turn's
	// batch. <=1 runs the batch sequentially.
	MaxParallelTools int
	// Logger receives structured loop events. Defaults to NoOpLogger.
	Logger logging.Logger
	// Observer, if set, is invoked with every turn as it is appended to the
	// conversation (seed user turn included). Presentation hook only; the
	// turn is already committed when the callback fires.
	Observer func(core.Turn)
}

// Loop orchestrates one conversational run: call the model, inspect the stop
// condition, dispatch tool calls, feed results back, repeat until terminal.
// A Loop is stateless between runs and safe to reuse sequentially; each Run
// owns a fresh conversation.
type Loop struct {
	model    model.Model
	registry *tool.Registry
	executor *tool.Executor
	opts     Options
}

// New constructs a Loop over the given model and tool registry.
func New(m model.Model, registry *tool.Registry, optFns ...func(o *Options)) *Loop {
	opts := Options{
		MaxTurns:        16,
		MaxOutputTokens: 4096,
		ToolTimeout:     30 * time.Second,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	executor := tool.NewExecutor(registry, func(o *tool.ExecutorOptions) {
		o.Timeout = opts.ToolTimeout
		o.MaxParallel = opts.MaxParallelTools
		o.Logger = opts.Logger
	})

	return &Loop{model: m, registry: registry, executor: executor, opts: opts}
}

// Run drives the loop to completion for a free-text task. It always returns a
// structured RunResult for model-level outcomes (done or aborted by a guard);
// only cancellation and backend failures surface as errors, and neither
// leaves a partial turn in the conversation.
func (l *Loop) Run(ctx context.Context, task string) (*core.RunResult, error) {
	runID := uuid.NewString()
	logger := l.opts.Logger
	defs := l.registry.Definitions()

	conv := core.NewConversation()
	l.append(conv, core.NewUserTurn(task))

	logger.Info("loop.run.start", "run_id", runID, "model", l.model.Info().Name, "tools", len(defs))

	current := stateRunning
	turnsTaken := 0

	for current == stateRunning {
		if err := ctx.Err(); err != nil {
			logger.Warn("loop.run.canceled", "run_id", runID, "turns", turnsTaken)
			return nil, err
		}

		if turnsTaken >= l.opts.MaxTurns {
			logger.Warn("loop.run.turn_limit", "run_id", runID, "max_turns", l.opts.MaxTurns)
			l.transition(runID, &current, stateAborted)
			return l.result(runID, "", turnsTaken, core.TerminationMaxTurns), nil
		}

		resp, err := l.model.Send(ctx, model.Request{
			ModelID:         l.opts.ModelID,
			MaxOutputTokens: l.opts.MaxOutputTokens,
			Reasoning:       l.opts.Reasoning,
			Tools:           defs,
			Messages:        conv.History(),
		})
		if err != nil {
			if ctx.Err() != nil {
				// Canceled mid-call; no partial turn was appended.
				logger.Warn("loop.run.canceled", "run_id", runID, "turns", turnsTaken)
				return nil, ctx.Err()
			}
			logger.Error("loop.model.error", "run_id", runID, "turn", turnsTaken, "error", err.Error())
			return nil, &BackendError{Err: err}
		}
		turnsTaken++

		assistantTurn := core.NewAssistantTurn(resp.Blocks)
		l.append(conv, assistantTurn)

		if resp.StopReason == model.StopEndTurn {
			l.transition(runID, &current, stateDone)
			logger.Info("loop.run.done", "run_id", runID, "turns", turnsTaken)
			return l.result(runID, assistantTurn.FirstText(), turnsTaken, core.TerminationModelDone), nil
		}

		// Anything other than end_turn is treated as a tool round; a claimed
		// tool round without tool-use blocks is a backend contract violation.
		calls := assistantTurn.ToolUses()
		if len(calls) == 0 {
			logger.Error("loop.run.protocol_violation", "run_id", runID,
				"stop_reason", string(resp.StopReason))
			l.transition(runID, &current, stateAborted)
			return l.result(runID, "", turnsTaken, core.TerminationNoToolCalls), nil
		}

		l.transition(runID, &current, stateAwaitingToolCalls)
		logger.Debug("loop.tools.dispatch", "run_id", runID, "turn", turnsTaken, "count", len(calls))

		if err := ctx.Err(); err != nil {
			logger.Warn("loop.run.canceled", "run_id", runID, "turns", turnsTaken)
			return nil, err
		}

		results := l.executor.RunBatch(ctx, calls)
		resultTurn := core.NewToolResultTurn(results)
		l.append(conv, resultTurn)

		for i, call := range calls {
			l.observeToolResult(call, results[i])
		}

		l.transition(runID, &current, stateRunning)
	}

	// Unreachable: every transition above returns.
	return l.result(runID, "", turnsTaken, core.TerminationModelDone), nil
}

// transition moves the loop to the next lifecycle state, logging the edge.
func (l *Loop) transition(runID string, current *state, next state) {
	l.opts.Logger.Debug("loop.state", "run_id", runID, "from", string(*current), "to", string(next))
	*current = next
}

func (l *Loop) append(conv *core.Conversation, turn core.Turn) {
	conv.Append(turn)
	if l.opts.Observer != nil {
		l.opts.Observer(turn)
	}
}

func (l *Loop) observeToolResult(call core.ToolUseBlock, result core.ToolResultBlock) {
	if result.IsError {
		l.opts.Logger.Warn("loop.tool.result_error", "tool", call.Name,
			"tool_use_id", call.ID, "output", result.Output)
	}
}

func (l *Loop) result(runID, finalText string, turns int, reason core.TerminationReason) *core.RunResult {
	return &core.RunResult{
		RunID:      runID,
		FinalText:  finalText,
		TurnsTaken: turns,
		Reason:     reason,
	}
}
