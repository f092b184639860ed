// Package hook defines the extension system for stageflow.
//
// Extensions are notified of run and stage lifecycle events and can react
// to them — recording metrics, emitting audit logs, observing detached
// work, etc. Each lifecycle hook is a separate interface so extensions opt
// in only to the events they care about.
//
// # Implementing an Extension
//
//	type Audit struct{}
//
//	func (Audit) Name() string { return "audit" }
//
//	// Opt in to specific hooks by implementing their interfaces.
//	func (Audit) OnStageFailed(ctx context.Context, s *hook.StageInfo, cause any) error {
//	    log.Printf("stage %s of %s failed: %v", s.Stage, s.Workflow, cause)
//	    return nil
//	}
//
// # Run Lifecycle Hooks
//
//   - [RunStarted] — a workflow execution began
//   - [RunCompleted] — the execution produced a success value
//   - [RunFailed] — the execution produced a domain error
//
// # Stage Lifecycle Hooks
//
//   - [StageCompleted] — a stage finished successfully
//   - [StageFailed] — a stage produced a domain error
//   - [StageSkipped] — a feature's condition gated it off
//   - [DetachedSpawned] — fire-and-forget work was spawned; the hook
//     receives a [Handle] to optionally observe its outcome
//   - [FinallyErrored] — a finally activity failed without becoming the
//     run's returned error
//
// The [Registry] fans out each event to all registered extensions that
// implement the corresponding hook interface. Hook errors are logged and
// never affect the run.
package hook
