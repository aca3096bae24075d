package tour

import (
	"context"
	"time"
)

// Await polls probe at the given interval until it reports true or ctx is
// done. Callers always bound it with a deadline; a target that never appears
// is a normal outcome, not a hang. The probe also runs once immediately so an
// already-present target returns without a tick.
func Await(ctx context.Context, interval time.Duration, probe func() bool) error {
	if probe() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if probe() {
				return nil
			}
		}
	}
}
