package hook

import (
	"context"
	"time"

	"github.com/xraph/stageflow/id"
)

// RunInfo describes a single workflow execution. It is passed to run-level
// hooks. The engine's generic payload and error types do not appear here;
// failure causes are surfaced as opaque values.
type RunInfo struct {
	RunID     id.RunID
	Workflow  string
	StartedAt time.Time
}

// StageInfo describes one stage of a run: a validation, guard, activity,
// feature, feature branch, or finally activity.
type StageInfo struct {
	RunID    id.RunID
	Workflow string
	Stage    string
	Kind     string
}

// Handle observes a detached unit of work. The workflow never joins on
// detached work; a Handle is the only way to learn its outcome. After Done
// is closed, Failed and Cause may be read.
type Handle interface {
	// Stage returns the name of the detached stage that spawned the work.
	Stage() string
	// Done is closed when the detached chain finishes, whatever the outcome.
	Done() <-chan struct{}
	// Failed reports whether the detached chain ended in an error.
	// Valid only after Done is closed.
	Failed() bool
	// Cause returns the opaque domain error of a failed chain, or nil.
	// Valid only after Done is closed.
	Cause() any
}

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Run lifecycle hooks
// ──────────────────────────────────────────────────

// RunStarted is called when a workflow execution begins.
type RunStarted interface {
	OnRunStarted(ctx context.Context, run *RunInfo) error
}

// RunCompleted is called after a workflow execution finishes successfully.
type RunCompleted interface {
	OnRunCompleted(ctx context.Context, run *RunInfo, elapsed time.Duration) error
}

// RunFailed is called when a workflow execution ends in a domain error.
// The cause is the caller-defined error value, opaque to the engine.
type RunFailed interface {
	OnRunFailed(ctx context.Context, run *RunInfo, cause any) error
}

// ──────────────────────────────────────────────────
// Stage lifecycle hooks
// ──────────────────────────────────────────────────

// StageCompleted is called after a stage finishes successfully.
type StageCompleted interface {
	OnStageCompleted(ctx context.Context, stage *StageInfo, elapsed time.Duration) error
}

// StageFailed is called when a stage produces a domain error.
type StageFailed interface {
	OnStageFailed(ctx context.Context, stage *StageInfo, cause any) error
}

// StageSkipped is called when a feature's condition evaluates false and
// the feature is skipped without touching the payload.
type StageSkipped interface {
	OnStageSkipped(ctx context.Context, stage *StageInfo) error
}

// DetachedSpawned is called when a detached (or parallel-detached) chain
// is spawned. The handle lets the extension observe the outcome of work
// the workflow itself never waits for.
type DetachedSpawned interface {
	OnDetachedSpawned(ctx context.Context, stage *StageInfo, h Handle) error
}

// FinallyErrored is called when a finally activity produces an error that
// is not propagated to the caller (because an earlier pipeline error wins,
// or because a prior finally error was already recorded).
type FinallyErrored interface {
	OnFinallyErrored(ctx context.Context, stage *StageInfo, cause any) error
}
