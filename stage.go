package stageflow

import (
	"context"

	"github.com/xraph/stageflow/either"
)

// Unit is the empty value carried by a successful guard result.
type Unit = struct{}

// Activity transforms a payload into either a domain error or the next
// payload. Activities must treat the payload they receive as immutable and
// return a new value; parallel branches read the same snapshot concurrently.
type Activity[P, E any] func(ctx context.Context, payload P) either.Either[E, P]

// Validation inspects the request before a payload exists. Some(err)
// aborts the run; the payload is never constructed and finally never runs.
type Validation[R, E any] func(ctx context.Context, req R) either.Option[E]

// Guard inspects the request after all validations, as a separate phase.
// A Left aborts the run exactly like a failed validation.
type Guard[R, E any] func(ctx context.Context, req R) either.Either[E, Unit]

// Predicate gates a conditional activity or feature. It is evaluated
// against the payload at the moment the stage is reached, not at
// registration time.
type Predicate[P any] func(payload P) bool

// PayloadFactory constructs the initial working state from the request,
// once per execution, after all validations and guards pass.
type PayloadFactory[R, P any] func(req R) P

// ResultSelector converts the final payload into the success value.
type ResultSelector[P, S any] func(payload P) S

// ErrorAdapter translates engine-origin errors (cancellation, middleware
// panics, rate-limit waits) into the caller's domain error type. Without
// one, cancellation is purely cooperative: the engine never aborts a run
// on its own.
type ErrorAdapter[E any] func(err error) E

// namedActivity pairs an activity with the stage name used in logs,
// hooks, and middleware.
type namedActivity[P, E any] struct {
	name string
	run  Activity[P, E]
}

type namedValidation[R, E any] struct {
	name string
	run  Validation[R, E]
}

type namedGuard[R, E any] struct {
	name string
	run  Guard[R, E]
}

// conditionalActivity fires only when its predicate holds at execution time.
type conditionalActivity[P, E any] struct {
	name string
	when Predicate[P]
	run  Activity[P, E]
}
