package middleware

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimit returns middleware that waits for a token from the given
// limiter before each stage execution. The limiter is shared across all
// stages and runs of the workflow it is installed on, bounding the rate
// at which the pipeline hits downstream systems.
//
// If the context is cancelled while waiting, the wait error is returned;
// the workflow's error adapter translates it into the caller's domain
// error type.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(ctx context.Context, s *Stage, next Handler) error {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait for stage %s: %w", s.Name, err)
		}
		return next(ctx)
	}
}
