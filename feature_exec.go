package stageflow

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/xraph/stageflow/either"
	"github.com/xraph/stageflow/hook"
	"github.com/xraph/stageflow/id"
)

// execGroup runs a gated sequential sub-pipeline. Each activity counts
// as a stage of the run.
func (w *Workflow[R, P, S, E]) execGroup(ctx context.Context, env *runEnv, f *feature[P, E], payload P) either.Either[E, P] {
	for _, a := range f.activities {
		res := w.runActivity(ctx, env, KindGroup, a.name, payload, a.run)
		if res.IsLeft() {
			return res
		}
		payload = res.MustRight()
	}
	return either.Right[E](payload)
}

// execContext runs a context feature. The local state was erased into a
// plain activity at registration time, so the feature executes as a
// single stage.
func (w *Workflow[R, P, S, E]) execContext(ctx context.Context, env *runEnv, f *feature[P, E], payload P) either.Either[E, P] {
	return w.runActivity(ctx, env, KindContext, f.name, payload, f.scoped)
}

// execDetached spawns the chain onto its own goroutine and returns the
// payload unchanged immediately. The chain runs on a context detached
// from the run's cancellation; its outcome is observable only through
// the Handle delivered to hook.DetachedSpawned.
func (w *Workflow[R, P, S, E]) execDetached(ctx context.Context, env *runEnv, f *feature[P, E], payload P) either.Either[E, P] {
	env.run.Stages++
	w.spawnChain(ctx, env.run.ID, f.kind, f.name, f.activities, payload)
	return either.Right[E](payload)
}

// execParallel fans the pre-feature payload snapshot out to every branch
// concurrently, waits for all of them, and merges the branch results.
// Branches are not cancelled when a sibling fails: the merge contract
// needs every result, and the failure policy needs deterministic
// ordering, so each branch runs to its own conclusion. When branches
// fail, the lowest-index failure wins and all branch edits are discarded.
func (w *Workflow[R, P, S, E]) execParallel(ctx context.Context, env *runEnv, f *feature[P, E], payload P) either.Either[E, P] {
	runID := env.run.ID
	results := make([]either.Either[E, P], len(f.branches))

	var g errgroup.Group
	if w.maxParallel > 0 {
		g.SetLimit(w.maxParallel)
	}
	for i, br := range f.branches {
		chain := nameBranch(f.name, br)
		g.Go(func() error {
			results[i] = w.runChain(ctx, runID, KindParallel, chain, payload)
			return nil
		})
	}
	_ = g.Wait()
	env.run.Stages += len(f.branches)

	merged := make([]P, len(results))
	for i, res := range results {
		if cause, failed := res.Left(); failed {
			return either.Left[E, P](cause)
		}
		merged[i] = res.MustRight()
	}
	return either.Right[E](f.merge(payload, merged))
}

// execParallelDetached spawns every branch onto its own goroutine and
// returns the payload unchanged immediately. Each branch gets its own
// Handle through hook.DetachedSpawned.
func (w *Workflow[R, P, S, E]) execParallelDetached(ctx context.Context, env *runEnv, f *feature[P, E], payload P) either.Either[E, P] {
	for _, br := range f.branches {
		env.run.Stages++
		chain := nameBranch(f.name, br)
		w.spawnChain(ctx, env.run.ID, KindParallelDetached, f.name+"/"+br.name, chain, payload)
	}
	return either.Right[E](payload)
}

// spawnChain starts a detached chain, delivering its Handle to the
// DetachedSpawned hook before the goroutine starts so an extension can
// register interest without racing the chain's completion.
func (w *Workflow[R, P, S, E]) spawnChain(ctx context.Context, runID id.RunID, kind Kind, name string, chain []namedActivity[P, E], payload P) {
	h := newHandle[P, E](name)
	info := &hook.StageInfo{RunID: runID, Workflow: w.name, Stage: name, Kind: string(kind)}
	w.hooks.EmitDetachedSpawned(ctx, info, h)

	// Detached work outlives the run; it must not die with the run's ctx.
	bg := context.WithoutCancel(ctx)
	go func() {
		h.complete(w.runChain(bg, runID, kind, chain, payload))
	}()
}

// runChain folds a payload through an activity chain without touching
// the run record; safe from branch and detached goroutines.
func (w *Workflow[R, P, S, E]) runChain(ctx context.Context, runID id.RunID, kind Kind, chain []namedActivity[P, E], payload P) either.Either[E, P] {
	for _, a := range chain {
		res := w.invokeActivity(ctx, runID, kind, a.name, payload, a.run)
		if res.IsLeft() {
			return res
		}
		payload = res.MustRight()
	}
	return either.Right[E](payload)
}

// nameBranch names each branch activity by feature, branch, and position.
func nameBranch[P, E any](feature string, br Branch[P, E]) []namedActivity[P, E] {
	named := make([]namedActivity[P, E], len(br.activities))
	for i, a := range br.activities {
		named[i] = namedActivity[P, E]{name: fmt.Sprintf("%s/%s:%d", feature, br.name, i), run: a}
	}
	return named
}
