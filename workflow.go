package stageflow

import (
	"context"
	"log/slog"

	"github.com/xraph/stageflow/either"
	"github.com/xraph/stageflow/hook"
	"github.com/xraph/stageflow/middleware"
)

// featureExec runs one feature against the current payload and returns
// the feature's outcome. Executors are selected by Kind from the
// workflow's executor table.
type featureExec[P, E any] func(ctx context.Context, env *runEnv, f *feature[P, E], payload P) either.Either[E, P]

// Workflow is an immutable, reusable execution pipeline built by a
// Builder. A single Workflow may be executed any number of times
// concurrently; each Execute call gets its own Run record and payload.
type Workflow[R, P, S, E any] struct {
	name           string
	payloadFactory PayloadFactory[R, P]
	resultSelector ResultSelector[P, S]

	validations  []namedValidation[R, E]
	guards       []namedGuard[R, E]
	activities   []namedActivity[P, E]
	conditionals []conditionalActivity[P, E]
	features     []*feature[P, E]
	finals       []namedActivity[P, E]

	executors map[Kind]featureExec[P, E]

	logger      *slog.Logger
	hooks       *hook.Registry
	chain       middleware.Middleware
	errAdapter  ErrorAdapter[E]
	maxParallel int
}

// Name returns the workflow name given to New.
func (w *Workflow[R, P, S, E]) Name() string { return w.name }

// Execute runs the workflow against a request and returns either the
// domain error that aborted it or the selected success value.
func (w *Workflow[R, P, S, E]) Execute(ctx context.Context, req R) either.Either[E, S] {
	res, _ := w.ExecuteWithRun(ctx, req)
	return res
}
