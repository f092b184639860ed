package stageflow

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/xraph/stageflow/hook"
	"github.com/xraph/stageflow/middleware"
)

// Builder accumulates stage and feature descriptors in call order and
// freezes them into an executable Workflow. All registration methods
// return the builder for chaining. A Builder is not safe for concurrent
// use; the Workflow it builds is.
type Builder[R, P, S, E any] struct {
	name           string
	payloadFactory PayloadFactory[R, P]
	resultSelector ResultSelector[P, S]

	validations  []namedValidation[R, E]
	guards       []namedGuard[R, E]
	activities   []namedActivity[P, E]
	conditionals []conditionalActivity[P, E]
	features     []*feature[P, E]
	finals       []namedActivity[P, E]

	logger      *slog.Logger
	hooks       *hook.Registry
	mw          []middleware.Middleware
	errAdapter  ErrorAdapter[E]
	maxParallel int

	// err records the first registration mistake, surfaced by Build.
	err error
}

// New creates a workflow builder. The payload factory builds the initial
// working state from the request once per execution; the result selector
// converts the final payload into the success value.
//
// All four type parameters must be named at the call site:
//
//	b := stageflow.New[Order, Checkout, Receipt, CheckoutError](
//	    "checkout", newCheckout, selectReceipt)
func New[R, P, S, E any](
	name string,
	factory PayloadFactory[R, P],
	selector ResultSelector[P, S],
) *Builder[R, P, S, E] {
	return &Builder[R, P, S, E]{
		name:           name,
		payloadFactory: factory,
		resultSelector: selector,
	}
}

// registrationError records a nil stage function for the given stage.
func (b *Builder[R, P, S, E]) registrationError(kind Kind, name string) {
	if b.err == nil {
		b.err = fmt.Errorf("%w: %s %q", ErrNilStage, kind, name)
	}
}

// Validate registers a validation that runs against the request before
// the payload exists. Validations run in registration order; the first
// Some aborts the run without constructing the payload.
func (b *Builder[R, P, S, E]) Validate(name string, v Validation[R, E]) *Builder[R, P, S, E] {
	if v == nil {
		b.registrationError(KindValidation, name)
		return b
	}
	b.validations = append(b.validations, namedValidation[R, E]{name: name, run: v})
	return b
}

// Guard registers a guard. Guards run after all validations, as a
// separate phase, and abort the run exactly like a failed validation.
func (b *Builder[R, P, S, E]) Guard(name string, g Guard[R, E]) *Builder[R, P, S, E] {
	if g == nil {
		b.registrationError(KindGuard, name)
		return b
	}
	b.guards = append(b.guards, namedGuard[R, E]{name: name, run: g})
	return b
}

// Do registers a sequential activity.
func (b *Builder[R, P, S, E]) Do(name string, a Activity[P, E]) *Builder[R, P, S, E] {
	if a == nil {
		b.registrationError(KindActivity, name)
		return b
	}
	b.activities = append(b.activities, namedActivity[P, E]{name: name, run: a})
	return b
}

// DoAll registers several sequential activities at once. They are named
// by their position in the activity list.
func (b *Builder[R, P, S, E]) DoAll(activities ...Activity[P, E]) *Builder[R, P, S, E] {
	for _, a := range activities {
		b.Do(fmt.Sprintf("activity:%d", len(b.activities)), a)
	}
	return b
}

// DoIf registers a conditional activity. The predicate is evaluated
// against the payload when the stage is reached, so earlier activities
// decide whether it fires.
func (b *Builder[R, P, S, E]) DoIf(name string, when Predicate[P], a Activity[P, E]) *Builder[R, P, S, E] {
	if when == nil || a == nil {
		b.registrationError(KindActivity, name)
		return b
	}
	b.conditionals = append(b.conditionals, conditionalActivity[P, E]{name: name, when: when, run: a})
	return b
}

// Group registers a gated sequential sub-pipeline. When cond is nil the
// group always runs; its resulting payload always replaces the enclosing
// payload on success.
func (b *Builder[R, P, S, E]) Group(name string, cond Predicate[P], activities ...Activity[P, E]) *Builder[R, P, S, E] {
	named, ok := b.nameChain(KindGroup, name, activities)
	if !ok {
		return b
	}
	b.features = append(b.features, &feature[P, E]{
		name:        name,
		kind:        KindGroup,
		condition:   cond,
		shouldMerge: true,
		activities:  named,
	})
	return b
}

// Detach registers a fire-and-forget activity chain. The chain is spawned
// onto its own goroutine and the pipeline proceeds immediately with the
// unmodified payload; errors from the chain never reach the caller. The
// outcome is observable only through the hook.DetachedSpawned extension
// point, which receives a Handle for the spawned chain.
func (b *Builder[R, P, S, E]) Detach(name string, cond Predicate[P], activities ...Activity[P, E]) *Builder[R, P, S, E] {
	named, ok := b.nameChain(KindDetached, name, activities)
	if !ok {
		return b
	}
	b.features = append(b.features, &feature[P, E]{
		name:       name,
		kind:       KindDetached,
		condition:  cond,
		activities: named,
	})
	return b
}

// Parallel registers a fan-out feature: every branch runs concurrently
// against the identical pre-parallel payload snapshot, the executor waits
// for all of them, and on success the merge function combines the branch
// results into the next payload. When branches fail, the error of the
// lowest-index failing branch becomes the feature's error and all branch
// edits are discarded.
func (b *Builder[R, P, S, E]) Parallel(name string, cond Predicate[P], merge MergeFunc[P], branches ...Branch[P, E]) *Builder[R, P, S, E] {
	if !b.checkBranches(KindParallel, name, branches) {
		return b
	}
	b.features = append(b.features, &feature[P, E]{
		name:        name,
		kind:        KindParallel,
		condition:   cond,
		shouldMerge: true,
		branches:    slices.Clone(branches),
		merge:       merge,
	})
	return b
}

// ParallelDetach registers a fire-and-forget fan-out: every branch is
// spawned onto its own goroutine and the pipeline proceeds immediately
// with the unmodified payload. Each branch gets its own Handle through
// hook.DetachedSpawned.
func (b *Builder[R, P, S, E]) ParallelDetach(name string, cond Predicate[P], branches ...Branch[P, E]) *Builder[R, P, S, E] {
	if !b.checkBranches(KindParallelDetached, name, branches) {
		return b
	}
	b.features = append(b.features, &feature[P, E]{
		name:      name,
		kind:      KindParallelDetached,
		condition: cond,
		branches:  slices.Clone(branches),
	})
	return b
}

// Finally registers a cleanup activity. Finally activities run exactly
// once per execution in which the payload was constructed, in
// registration order, even when the main pipeline or an earlier finally
// activity failed.
func (b *Builder[R, P, S, E]) Finally(name string, a Activity[P, E]) *Builder[R, P, S, E] {
	if a == nil {
		b.registrationError(KindFinally, name)
		return b
	}
	b.finals = append(b.finals, namedActivity[P, E]{name: name, run: a})
	return b
}

// checkBranches validates every activity of every branch; a nil anywhere
// latches ErrNilStage so Build fails instead of Execute crashing inside a
// branch goroutine.
func (b *Builder[R, P, S, E]) checkBranches(kind Kind, name string, branches []Branch[P, E]) bool {
	for _, br := range branches {
		for _, a := range br.activities {
			if a == nil {
				b.registrationError(kind, name)
				return false
			}
		}
	}
	return true
}

// nameChain validates and names a feature's activity chain.
func (b *Builder[R, P, S, E]) nameChain(kind Kind, name string, activities []Activity[P, E]) ([]namedActivity[P, E], bool) {
	named := make([]namedActivity[P, E], 0, len(activities))
	for i, a := range activities {
		if a == nil {
			b.registrationError(kind, name)
			return nil, false
		}
		named = append(named, namedActivity[P, E]{name: fmt.Sprintf("%s:%d", name, i), run: a})
	}
	return named, true
}

// WithLogger sets the structured logger for the workflow. Defaults to
// slog.Default().
func (b *Builder[R, P, S, E]) WithLogger(l *slog.Logger) *Builder[R, P, S, E] {
	b.logger = l
	return b
}

// WithHooks sets the extension registry notified of run and stage
// lifecycle events.
func (b *Builder[R, P, S, E]) WithHooks(reg *hook.Registry) *Builder[R, P, S, E] {
	b.hooks = reg
	return b
}

// WithErrorAdapter sets the translator for engine-origin errors
// (cancellation, middleware panics, rate-limit waits) into the domain
// error type. With an adapter installed the engine also stops starting
// new stages once the context is cancelled; without one, cancellation is
// purely cooperative.
func (b *Builder[R, P, S, E]) WithErrorAdapter(adapt ErrorAdapter[E]) *Builder[R, P, S, E] {
	b.errAdapter = adapt
	return b
}

// Use installs middleware around every activity-bearing stage execution.
// Middleware are applied in the given order, first middleware outermost.
// Requires an error adapter (WithErrorAdapter) so middleware-origin
// failures can be expressed as domain errors.
func (b *Builder[R, P, S, E]) Use(mws ...middleware.Middleware) *Builder[R, P, S, E] {
	b.mw = append(b.mw, mws...)
	return b
}

// MaxParallel bounds how many branches of a parallel feature execute
// concurrently. Zero (the default) means no bound.
func (b *Builder[R, P, S, E]) MaxParallel(n int) *Builder[R, P, S, E] {
	b.maxParallel = n
	return b
}

// Build freezes the registered stages into an immutable, reusable
// Workflow that may be executed many times concurrently.
func (b *Builder[R, P, S, E]) Build() (*Workflow[R, P, S, E], error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.payloadFactory == nil {
		return nil, ErrNoPayloadFactory
	}
	if b.resultSelector == nil {
		return nil, ErrNoResultSelector
	}
	for _, f := range b.features {
		if f.kind != KindParallel {
			continue
		}
		if f.merge == nil {
			return nil, fmt.Errorf("%w: %q", ErrNoMerge, f.name)
		}
		if len(f.branches) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoBranches, f.name)
		}
	}
	if len(b.mw) > 0 && b.errAdapter == nil {
		return nil, ErrNoErrorAdapter
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	var chain middleware.Middleware
	if len(b.mw) > 0 {
		chain = middleware.Chain(b.mw...)
	}

	w := &Workflow[R, P, S, E]{
		name:           b.name,
		payloadFactory: b.payloadFactory,
		resultSelector: b.resultSelector,
		validations:    slices.Clone(b.validations),
		guards:         slices.Clone(b.guards),
		activities:     slices.Clone(b.activities),
		conditionals:   slices.Clone(b.conditionals),
		features:       slices.Clone(b.features),
		finals:         slices.Clone(b.finals),
		logger:         logger,
		hooks:          b.hooks,
		chain:          chain,
		errAdapter:     b.errAdapter,
		maxParallel:    b.maxParallel,
	}
	w.executors = map[Kind]featureExec[P, E]{
		KindGroup:            w.execGroup,
		KindContext:          w.execContext,
		KindDetached:         w.execDetached,
		KindParallel:         w.execParallel,
		KindParallelDetached: w.execParallelDetached,
	}
	return w, nil
}

// MustBuild is like Build but panics on error. Use for workflows wired
// statically at program start.
func (b *Builder[R, P, S, E]) MustBuild() *Workflow[R, P, S, E] {
	w, err := b.Build()
	if err != nil {
		panic(err)
	}
	return w
}
