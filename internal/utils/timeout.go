package utils

import (
	"context"
	"time"
)

// DefaultDBTimeout bounds a single repository call. The reschedule
// transaction holds a row lock for the whole window, so it stays short.
const DefaultDBTimeout = 5 * time.Second

// WithDBTimeout derives the per-query context every repository method runs
// under. A sooner deadline already on ctx takes precedence.
func WithDBTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DefaultDBTimeout)
}
