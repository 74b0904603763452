package ratelimit

import (
	"context"
	"time"
)

// Store counts hits per key in fixed windows. The first hit of a key opens a window of the
// given length; Hit reports the count so far and how long until the window resets.
type Store interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}
