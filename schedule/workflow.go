package schedule

import (
	"context"
	"fmt"

	"github.com/xraph/stageflow"
)

// AddWorkflow registers a workflow to execute on a cron schedule. The
// request factory builds a fresh request for every firing; the run's
// result is observable only through the workflow's own hooks and logs.
//
// This is a package-level generic function because Go does not allow
// generic methods on non-generic receiver types.
func AddWorkflow[R, P, S, E any](
	s *Scheduler,
	name, expr string,
	wf *stageflow.Workflow[R, P, S, E],
	request func() R,
) error {
	if wf == nil {
		return fmt.Errorf("schedule: nil workflow for entry %q", name)
	}
	if request == nil {
		return fmt.Errorf("schedule: nil request factory for entry %q", name)
	}
	return s.Add(name, expr, func(ctx context.Context) {
		wf.Execute(ctx, request())
	})
}
