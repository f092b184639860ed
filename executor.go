package stageflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/stageflow/either"
	"github.com/xraph/stageflow/hook"
	"github.com/xraph/stageflow/id"
	"github.com/xraph/stageflow/middleware"
)

// runEnv carries the per-execution state shared by the sequential
// executor paths. Branch and detached goroutines never touch it; they
// receive only the run ID.
type runEnv struct {
	run *Run
}

// ExecuteWithRun runs the workflow and returns the result together with
// the Run record describing the execution.
//
// Execution order: validations, guards, payload construction, sequential
// activities, conditional activities, features in registration order,
// finally activities, result selection. The first Left anywhere before
// the finally phase aborts the main pipeline; finally activities still
// run whenever the payload was constructed.
func (w *Workflow[R, P, S, E]) ExecuteWithRun(ctx context.Context, req R) (either.Either[E, S], *Run) {
	run := newRun(w.name)
	env := &runEnv{run: run}
	info := &hook.RunInfo{RunID: run.ID, Workflow: w.name, StartedAt: run.StartedAt}

	w.hooks.EmitRunStarted(ctx, info)
	w.logger.Debug("run started",
		slog.String("workflow", w.name),
		slog.String("run_id", run.ID.String()),
	)

	if cause, failed := w.runRequestPhase(ctx, env, req); failed {
		return w.fail(ctx, info, env, cause), run
	}

	payload := w.payloadFactory(req)

	payload, mainCause, mainFailed := w.runMain(ctx, env, payload)

	// The payload exists, so finally activities run regardless of how
	// the main pipeline ended.
	finCause, finFailed := w.runFinally(ctx, env, payload, mainFailed)

	switch {
	case mainFailed:
		return w.fail(ctx, info, env, mainCause), run
	case finFailed:
		return w.fail(ctx, info, env, finCause), run
	}

	run.finish(RunStateCompleted)
	w.hooks.EmitRunCompleted(ctx, info, run.Elapsed())
	w.logger.Debug("run completed",
		slog.String("workflow", w.name),
		slog.String("run_id", run.ID.String()),
		slog.Duration("elapsed", run.Elapsed()),
	)
	return either.Right[E](w.resultSelector(payload)), run
}

func (w *Workflow[R, P, S, E]) fail(ctx context.Context, info *hook.RunInfo, env *runEnv, cause E) either.Either[E, S] {
	env.run.finish(RunStateFailed)
	w.hooks.EmitRunFailed(ctx, info, cause)
	w.logger.Debug("run failed",
		slog.String("workflow", w.name),
		slog.String("run_id", env.run.ID.String()),
		slog.Any("cause", cause),
	)
	return either.Left[E, S](cause)
}

// runRequestPhase runs all validations, then all guards, against the
// request. The payload does not exist yet; a failure here means the
// finally phase never runs.
func (w *Workflow[R, P, S, E]) runRequestPhase(ctx context.Context, env *runEnv, req R) (E, bool) {
	for _, v := range w.validations {
		if cause, stop := w.cancelled(ctx); stop {
			return cause, true
		}
		run := v.run
		cause, failed := w.invokeCheck(ctx, env, KindValidation, v.name, func(ctx context.Context) (E, bool) {
			if c, some := run(ctx, req).Get(); some {
				return c, true
			}
			var zero E
			return zero, false
		})
		if failed {
			return cause, true
		}
	}
	for _, g := range w.guards {
		if cause, stop := w.cancelled(ctx); stop {
			return cause, true
		}
		run := g.run
		cause, failed := w.invokeCheck(ctx, env, KindGuard, g.name, func(ctx context.Context) (E, bool) {
			if c, bad := run(ctx, req).Left(); bad {
				return c, true
			}
			var zero E
			return zero, false
		})
		if failed {
			return cause, true
		}
	}
	var zero E
	return zero, false
}

// runMain executes sequential activities, conditional activities, and
// features. It returns the payload as far as it got, so the finally
// phase observes the last good state.
func (w *Workflow[R, P, S, E]) runMain(ctx context.Context, env *runEnv, payload P) (P, E, bool) {
	for _, a := range w.activities {
		if cause, stop := w.cancelled(ctx); stop {
			return payload, cause, true
		}
		res := w.runActivity(ctx, env, KindActivity, a.name, payload, a.run)
		if cause, failed := res.Left(); failed {
			return payload, cause, true
		}
		payload = res.MustRight()
	}

	for _, c := range w.conditionals {
		if cause, stop := w.cancelled(ctx); stop {
			return payload, cause, true
		}
		if !c.when(payload) {
			w.skip(ctx, env, KindActivity, c.name)
			continue
		}
		res := w.runActivity(ctx, env, KindActivity, c.name, payload, c.run)
		if cause, failed := res.Left(); failed {
			return payload, cause, true
		}
		payload = res.MustRight()
	}

	for _, f := range w.features {
		if cause, stop := w.cancelled(ctx); stop {
			return payload, cause, true
		}
		if f.condition != nil && !f.condition(payload) {
			w.skip(ctx, env, f.kind, f.name)
			continue
		}
		res := w.executors[f.kind](ctx, env, f, payload)
		if cause, failed := res.Left(); failed {
			return payload, cause, true
		}
		if f.shouldMerge {
			payload = res.MustRight()
		}
	}

	var zero E
	return payload, zero, false
}

// runFinally executes every finally activity in registration order,
// continuing past failures. A successful finally activity's payload
// feeds the next one. The first finally error is returned only when the
// main pipeline succeeded; otherwise it is surfaced through the
// FinallyErrored hook and logged, and the pipeline error wins.
func (w *Workflow[R, P, S, E]) runFinally(ctx context.Context, env *runEnv, payload P, mainFailed bool) (E, bool) {
	var first E
	var reported bool
	for _, f := range w.finals {
		res := w.runActivity(ctx, env, KindFinally, f.name, payload, f.run)
		cause, failed := res.Left()
		if !failed {
			payload = res.MustRight()
			continue
		}
		if !mainFailed && !reported {
			first, reported = cause, true
			continue
		}
		info := &hook.StageInfo{RunID: env.run.ID, Workflow: w.name, Stage: f.name, Kind: string(KindFinally)}
		w.hooks.EmitFinallyErrored(ctx, info, cause)
		w.logger.Warn("finally error suppressed",
			slog.String("workflow", w.name),
			slog.String("stage", f.name),
			slog.Any("cause", cause),
		)
	}
	return first, reported
}

// cancelled checks the context between sequential stages. Without an
// error adapter there is no way to express cancellation in the domain
// error type, so the check is skipped and cancellation stays cooperative.
func (w *Workflow[R, P, S, E]) cancelled(ctx context.Context) (E, bool) {
	if w.errAdapter == nil {
		var zero E
		return zero, false
	}
	if err := ctx.Err(); err != nil {
		return w.errAdapter(err), true
	}
	var zero E
	return zero, false
}

func (w *Workflow[R, P, S, E]) skip(ctx context.Context, env *runEnv, kind Kind, name string) {
	info := &hook.StageInfo{RunID: env.run.ID, Workflow: w.name, Stage: name, Kind: string(kind)}
	w.hooks.EmitStageSkipped(ctx, info)
	w.logger.Debug("stage skipped",
		slog.String("workflow", w.name),
		slog.String("stage", name),
	)
}

// runActivity executes one activity on the sequential path: middleware,
// stage hooks, and the run's stage counter.
func (w *Workflow[R, P, S, E]) runActivity(ctx context.Context, env *runEnv, kind Kind, name string, payload P, act Activity[P, E]) either.Either[E, P] {
	env.run.Stages++
	return w.invokeActivity(ctx, env.run.ID, kind, name, payload, act)
}

// invokeActivity executes one activity through the middleware chain and
// stage hooks without touching the run record, so it is safe to call
// from branch and detached goroutines.
func (w *Workflow[R, P, S, E]) invokeActivity(ctx context.Context, runID id.RunID, kind Kind, name string, payload P, act Activity[P, E]) either.Either[E, P] {
	var out either.Either[E, P]
	cause, failed := w.invokeStage(ctx, runID, kind, name, func(ctx context.Context) (E, bool) {
		out = act(ctx, payload)
		if c, bad := out.Left(); bad {
			return c, true
		}
		var zero E
		return zero, false
	})
	if failed {
		return either.Left[E, P](cause)
	}
	return out
}

// invokeCheck is invokeStage on the sequential path, counting the stage
// against the run.
func (w *Workflow[R, P, S, E]) invokeCheck(ctx context.Context, env *runEnv, kind Kind, name string, body func(context.Context) (E, bool)) (E, bool) {
	env.run.Stages++
	return w.invokeStage(ctx, env.run.ID, kind, name, body)
}

// invokeStage runs one stage body through the middleware chain and
// notifies stage hooks. The body reports a domain error directly;
// middleware-origin errors (panics, deadlines, rate-limit waits) go
// through the error adapter.
func (w *Workflow[R, P, S, E]) invokeStage(ctx context.Context, runID id.RunID, kind Kind, name string, body func(context.Context) (E, bool)) (E, bool) {
	info := &hook.StageInfo{RunID: runID, Workflow: w.name, Stage: name, Kind: string(kind)}
	start := time.Now()

	var cause E
	var failed bool
	if w.chain == nil {
		cause, failed = body(ctx)
	} else {
		st := &middleware.Stage{Workflow: w.name, Name: name, Kind: string(kind), RunID: runID}
		err := w.chain(ctx, st, func(ctx context.Context) error {
			c, bad := body(ctx)
			if bad {
				cause, failed = c, true
				return &middleware.StageError{Cause: c}
			}
			return nil
		})
		if err != nil && !failed {
			// The error did not originate from the stage body: a panic,
			// a deadline, a rate-limit wait, or an error fabricated by
			// caller middleware. Translate it.
			cause, failed = w.errAdapter(err), true
		}
	}

	if failed {
		w.hooks.EmitStageFailed(ctx, info, cause)
		return cause, true
	}
	w.hooks.EmitStageCompleted(ctx, info, time.Since(start))
	var zero E
	return zero, false
}
