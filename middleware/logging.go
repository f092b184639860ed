package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Logging returns middleware that logs stage start and completion.
// Domain errors carried in a [StageError] are logged with their cause.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, s *Stage, next Handler) error {
		logger.Debug("stage started",
			slog.String("workflow", s.Workflow),
			slog.String("stage", s.Name),
			slog.String("kind", s.Kind),
			slog.String("run_id", s.RunID.String()),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			var se *StageError
			cause := any(err)
			if errors.As(err, &se) {
				cause = se.Cause
			}
			logger.Error("stage failed",
				slog.String("workflow", s.Workflow),
				slog.String("stage", s.Name),
				slog.String("run_id", s.RunID.String()),
				slog.Duration("elapsed", elapsed),
				slog.Any("error", cause),
			)
		} else {
			logger.Debug("stage completed",
				slog.String("workflow", s.Workflow),
				slog.String("stage", s.Name),
				slog.String("run_id", s.RunID.String()),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
