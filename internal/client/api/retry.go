package api

import (
	"context"
	"time"
)

// waitFn is a test seam for the inter-attempt wait.
var waitFn = wait

// wait blocks for d or until ctx is done, whichever comes first. The wait is
// timer-based so concurrent operations keep running.
func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry runs fn and, on failure, re-runs it up to retries more times, waiting
// delay before the first retry and doubling the delay after each one. No
// jitter. Every failure is retried regardless of kind; the total number of
// attempts is retries+1. The final error is returned unchanged, except when
// ctx ends during a wait, in which case ctx.Err() wins.
func Retry(ctx context.Context, retries int, delay time.Duration, fn func() error) error {
	for {
		err := fn()
		if err == nil {
			return nil
		}
		if retries <= 0 {
			return err
		}
		if werr := waitFn(ctx, delay); werr != nil {
			return werr
		}
		retries--
		delay *= 2
	}
}
