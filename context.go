package stageflow

import (
	"context"

	"github.com/xraph/stageflow/either"
)

// Scoped pairs the pipeline payload with feature-local state for the
// duration of a context feature. The local half never leaves the feature.
type Scoped[P, L any] struct {
	Payload P
	Local   L
}

// ContextActivity transforms a (payload, local state) pair inside a
// context feature. Like Activity, it must return new values rather than
// mutate its inputs.
type ContextActivity[P, L, E any] func(ctx context.Context, payload P, local L) either.Either[E, Scoped[P, L]]

// LocalStateFactory builds the feature-local state from the payload at
// the moment the context feature starts.
type LocalStateFactory[P, L any] func(payload P) L

// WithContext registers a context feature: a gated sequential sub-pipeline
// whose activities operate on a (payload, local state) pair. The local
// state is created by the factory when the feature starts and discarded
// when it ends; only the payload half merges back into the pipeline.
//
// The local state type L is erased here by closing over the factory and
// the typed activities, so the executor needs no runtime type inspection.
//
// This is a package-level generic function because Go does not allow
// generic methods on non-generic receiver types.
func WithContext[R, P, S, E, L any](
	b *Builder[R, P, S, E],
	name string,
	cond Predicate[P],
	factory LocalStateFactory[P, L],
	activities ...ContextActivity[P, L, E],
) *Builder[R, P, S, E] {
	if factory == nil {
		b.registrationError(KindContext, name)
		return b
	}
	for _, act := range activities {
		if act == nil {
			b.registrationError(KindContext, name)
			return b
		}
	}

	scoped := func(ctx context.Context, payload P) either.Either[E, P] {
		cur := Scoped[P, L]{Payload: payload, Local: factory(payload)}
		for _, act := range activities {
			res := act(ctx, cur.Payload, cur.Local)
			if cause, ok := res.Left(); ok {
				return either.Left[E, P](cause)
			}
			cur = res.MustRight()
		}
		// The local state goes out of scope here; only the payload survives.
		return either.Right[E](cur.Payload)
	}

	b.features = append(b.features, &feature[P, E]{
		name:        name,
		kind:        KindContext,
		condition:   cond,
		shouldMerge: true,
		scoped:      scoped,
	})
	return b
}
