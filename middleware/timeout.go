package middleware

import (
	"context"
	"time"
)

// Timeout returns middleware that enforces a per-stage execution deadline.
// A context.WithTimeout wraps each handler call; when the deadline is
// exceeded the context is cancelled and a cooperative activity should
// return its own domain error. A zero duration disables the deadline.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, _ *Stage, next Handler) error {
		if d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		return next(ctx)
	}
}
