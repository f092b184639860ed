// Package middleware provides composable middleware for stage execution.
// Middleware wraps activity calls synchronously and can modify execution
// (recover from panics, enforce deadlines, log, add tracing, etc.).
package middleware

import (
	"context"
	"fmt"

	"github.com/xraph/stageflow/id"
)

// Stage describes the stage being executed: which workflow, which run,
// the stage name, and its kind (activity, group, parallel branch, ...).
type Stage struct {
	Workflow string
	Name     string
	Kind     string
	RunID    id.RunID
}

// Handler is the terminal function that executes the stage logic.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler with cross-cutting logic.
// It receives the current context, the stage being executed, and the
// next handler to call. Middleware MUST call next to continue the chain
// (unless short-circuiting on error).
//
// A domain error latches: once the stage body has produced one, the
// stage fails with that cause even if middleware swallows or replaces
// the [StageError] on the way out. Middleware can observe, wrap, and
// short-circuit; it cannot rescue a failed stage.
type Middleware func(ctx context.Context, s *Stage, next Handler) error

// StageError carries a domain error (the engine's opaque E) across the
// error-shaped middleware boundary. The engine wraps an activity's Left
// case in a StageError before handing it to the chain, and unwraps it on
// the way out; middleware can treat it as an ordinary error.
type StageError struct {
	// Cause is the caller-defined domain error value.
	Cause any
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage failed: %v", e.Cause)
}

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recover, timeout) executes as:
//
//	logging → recover → timeout → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, s *Stage, next Handler) error {
		// Build the chain from the end backwards.
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, s, prev)
			}
		}
		return h(ctx)
	}
}
