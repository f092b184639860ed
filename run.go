package stageflow

import (
	"time"

	"github.com/xraph/stageflow/id"
)

// RunState is the lifecycle state of a workflow execution.
type RunState string

const (
	// RunStateRunning means the execution is in progress.
	RunStateRunning RunState = "running"
	// RunStateCompleted means the execution finished with a success value.
	RunStateCompleted RunState = "completed"
	// RunStateFailed means the execution ended in a domain error.
	RunStateFailed RunState = "failed"
)

// Run records one execution of a workflow. ExecuteWithRun returns it
// alongside the result; hooks receive the same identifiers through
// RunInfo and StageInfo.
//
// Stages counts the sequential stages that actually executed:
// validations, guards, activities, features, branches of synchronous
// parallel features, and finally activities. Detached work is counted
// when spawned, not when it finishes.
type Run struct {
	ID          id.RunID
	Workflow    string
	State       RunState
	StartedAt   time.Time
	CompletedAt *time.Time
	Stages      int
}

func newRun(workflow string) *Run {
	return &Run{
		ID:        id.NewRunID(),
		Workflow:  workflow,
		State:     RunStateRunning,
		StartedAt: time.Now(),
	}
}

func (r *Run) finish(state RunState) {
	now := time.Now()
	r.State = state
	r.CompletedAt = &now
}

// Elapsed returns the wall time of the run, up to now while running.
func (r *Run) Elapsed() time.Duration {
	if r.CompletedAt != nil {
		return r.CompletedAt.Sub(r.StartedAt)
	}
	return time.Since(r.StartedAt)
}
