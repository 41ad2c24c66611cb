package app

import (
	"context"
	"errors"
	"time"

	"github.com/freshlane/trade-api/internal/domain"
)

const (
	conflictRetryAttempts = 3
	conflictRetryBackoff  = 25 * time.Millisecond
)

// withConflictRetry re-runs fn when it fails with ErrConcurrencyConflict.
// Only that error is retried; business-rule violations surface immediately.
func withConflictRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < conflictRetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * conflictRetryBackoff):
			}
		}
		err = fn(ctx)
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}
