package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// Pinger is anything that can be probed for reachability; the upstream store
// API client satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UpstreamCheck returns a readiness CheckFunc probing p. A storefront that
// cannot reach the store API cannot price, browse, or submit anything, so it
// should not take traffic.
func UpstreamCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}

// GoroutineCountCheck returns a liveness CheckFunc that fails when the
// goroutine count exceeds threshold, catching leaked request goroutines.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(_ context.Context) error {
		if count := runtime.NumGoroutine(); count > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", count, threshold)
		}
		return nil
	}
}
