package stageflow

// Kind identifies the stage variety reported to hooks and middleware and
// used to dispatch feature execution.
type Kind string

const (
	// KindValidation is a request validation stage.
	KindValidation Kind = "validation"
	// KindGuard is a request guard stage.
	KindGuard Kind = "guard"
	// KindActivity is a sequential or conditional activity stage.
	KindActivity Kind = "activity"
	// KindFinally is a finally activity stage.
	KindFinally Kind = "finally"
	// KindGroup is a gated sequential sub-pipeline.
	KindGroup Kind = "group"
	// KindContext is a group whose activities carry feature-local state.
	KindContext Kind = "context"
	// KindDetached is a fire-and-forget activity chain.
	KindDetached Kind = "detached"
	// KindParallel is a fan-out of branches joined by a merge.
	KindParallel Kind = "parallel"
	// KindParallelDetached is a fire-and-forget fan-out.
	KindParallelDetached Kind = "parallel_detached"
)

// feature is a higher-order stage descriptor: a gating condition, a merge
// policy, and the work to run. Exactly one of activities, branches, or
// scoped is populated, depending on the kind. Features are built through
// the Builder registration methods and are immutable after Build.
type feature[P, E any] struct {
	name        string
	kind        Kind
	condition   Predicate[P]
	shouldMerge bool

	activities []namedActivity[P, E] // group, detached
	branches   []Branch[P, E]        // parallel, parallel detached
	merge      MergeFunc[P]          // parallel
	scoped     Activity[P, E]        // context: type-erased payload+local chain
}

// Branch is one named sub-pipeline of a parallel or parallel-detached
// feature. All branches of a feature observe the identical pre-feature
// payload snapshot.
type Branch[P, E any] struct {
	name       string
	activities []Activity[P, E]
}

// NewBranch creates a parallel branch from an ordered activity chain.
func NewBranch[P, E any](name string, activities ...Activity[P, E]) Branch[P, E] {
	return Branch[P, E]{name: name, activities: activities}
}

// Name returns the branch name.
func (b Branch[P, E]) Name() string { return b.name }
