package hook

import (
	"context"
	"log/slog"
	"time"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type runStartedEntry struct {
	name string
	hook RunStarted
}

type runCompletedEntry struct {
	name string
	hook RunCompleted
}

type runFailedEntry struct {
	name string
	hook RunFailed
}

type stageCompletedEntry struct {
	name string
	hook StageCompleted
}

type stageFailedEntry struct {
	name string
	hook StageFailed
}

type stageSkippedEntry struct {
	name string
	hook StageSkipped
}

type detachedSpawnedEntry struct {
	name string
	hook DetachedSpawned
}

type finallyErroredEntry struct {
	name string
	hook FinallyErrored
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
//
// Register all extensions before the first Execute; the registry is not
// synchronized for concurrent registration.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	runStarted      []runStartedEntry
	runCompleted    []runCompletedEntry
	runFailed       []runFailedEntry
	stageCompleted  []stageCompletedEntry
	stageFailed     []stageFailedEntry
	stageSkipped    []stageSkippedEntry
	detachedSpawned []detachedSpawnedEntry
	finallyErrored  []finallyErroredEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(RunStarted); ok {
		r.runStarted = append(r.runStarted, runStartedEntry{name, h})
	}
	if h, ok := e.(RunCompleted); ok {
		r.runCompleted = append(r.runCompleted, runCompletedEntry{name, h})
	}
	if h, ok := e.(RunFailed); ok {
		r.runFailed = append(r.runFailed, runFailedEntry{name, h})
	}
	if h, ok := e.(StageCompleted); ok {
		r.stageCompleted = append(r.stageCompleted, stageCompletedEntry{name, h})
	}
	if h, ok := e.(StageFailed); ok {
		r.stageFailed = append(r.stageFailed, stageFailedEntry{name, h})
	}
	if h, ok := e.(StageSkipped); ok {
		r.stageSkipped = append(r.stageSkipped, stageSkippedEntry{name, h})
	}
	if h, ok := e.(DetachedSpawned); ok {
		r.detachedSpawned = append(r.detachedSpawned, detachedSpawnedEntry{name, h})
	}
	if h, ok := e.(FinallyErrored); ok {
		r.finallyErrored = append(r.finallyErrored, finallyErroredEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// EmitRunStarted notifies all extensions that implement RunStarted.
func (r *Registry) EmitRunStarted(ctx context.Context, run *RunInfo) {
	if r == nil {
		return
	}
	for _, e := range r.runStarted {
		if err := e.hook.OnRunStarted(ctx, run); err != nil {
			r.logHookError("OnRunStarted", e.name, err)
		}
	}
}

// EmitRunCompleted notifies all extensions that implement RunCompleted.
func (r *Registry) EmitRunCompleted(ctx context.Context, run *RunInfo, elapsed time.Duration) {
	if r == nil {
		return
	}
	for _, e := range r.runCompleted {
		if err := e.hook.OnRunCompleted(ctx, run, elapsed); err != nil {
			r.logHookError("OnRunCompleted", e.name, err)
		}
	}
}

// EmitRunFailed notifies all extensions that implement RunFailed.
func (r *Registry) EmitRunFailed(ctx context.Context, run *RunInfo, cause any) {
	if r == nil {
		return
	}
	for _, e := range r.runFailed {
		if err := e.hook.OnRunFailed(ctx, run, cause); err != nil {
			r.logHookError("OnRunFailed", e.name, err)
		}
	}
}

// EmitStageCompleted notifies all extensions that implement StageCompleted.
func (r *Registry) EmitStageCompleted(ctx context.Context, stage *StageInfo, elapsed time.Duration) {
	if r == nil {
		return
	}
	for _, e := range r.stageCompleted {
		if err := e.hook.OnStageCompleted(ctx, stage, elapsed); err != nil {
			r.logHookError("OnStageCompleted", e.name, err)
		}
	}
}

// EmitStageFailed notifies all extensions that implement StageFailed.
func (r *Registry) EmitStageFailed(ctx context.Context, stage *StageInfo, cause any) {
	if r == nil {
		return
	}
	for _, e := range r.stageFailed {
		if err := e.hook.OnStageFailed(ctx, stage, cause); err != nil {
			r.logHookError("OnStageFailed", e.name, err)
		}
	}
}

// EmitStageSkipped notifies all extensions that implement StageSkipped.
func (r *Registry) EmitStageSkipped(ctx context.Context, stage *StageInfo) {
	if r == nil {
		return
	}
	for _, e := range r.stageSkipped {
		if err := e.hook.OnStageSkipped(ctx, stage); err != nil {
			r.logHookError("OnStageSkipped", e.name, err)
		}
	}
}

// EmitDetachedSpawned notifies all extensions that implement DetachedSpawned.
func (r *Registry) EmitDetachedSpawned(ctx context.Context, stage *StageInfo, h Handle) {
	if r == nil {
		return
	}
	for _, e := range r.detachedSpawned {
		if err := e.hook.OnDetachedSpawned(ctx, stage, h); err != nil {
			r.logHookError("OnDetachedSpawned", e.name, err)
		}
	}
}

// EmitFinallyErrored notifies all extensions that implement FinallyErrored.
func (r *Registry) EmitFinallyErrored(ctx context.Context, stage *StageInfo, cause any) {
	if r == nil {
		return
	}
	for _, e := range r.finallyErrored {
		if err := e.hook.OnFinallyErrored(ctx, stage, cause); err != nil {
			r.logHookError("OnFinallyErrored", e.name, err)
		}
	}
}

// logHookError logs a hook failure. Hook errors never affect the run. The
// logger defaults lazily so a zero-value Registry works like NewRegistry(nil).
func (r *Registry) logHookError(hookName, extName string, err error) {
	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("extension hook error",
		slog.String("hook", hookName),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
