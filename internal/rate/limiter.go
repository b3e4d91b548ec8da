package rate

import (
	"context"
	"time"
)

// Limiter decides whether another event for key fits in the current window.
// When it does not, the returned duration is how long until it will.
type Limiter interface {
	Allow(ctx context.Context, key string, now time.Time) (bool, time.Duration, error)
}
