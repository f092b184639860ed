package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Recover returns middleware that recovers from panics in the handler chain.
// Panics are converted to errors and logged with a stack trace. The
// resulting error is not a [StageError]; the workflow's error adapter
// translates it into the caller's domain error type.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, s *Stage, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("stage panicked",
					slog.String("workflow", s.Workflow),
					slog.String("stage", s.Name),
					slog.String("run_id", s.RunID.String()),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				retErr = fmt.Errorf("panic in stage %s: %v", s.Name, r)
			}
		}()
		return next(ctx)
	}
}
