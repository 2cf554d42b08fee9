// Package timeout bounds the wall-clock time of a symbolic computation.
// Pathological inputs (deeply nested powers, huge polynomial expansions) can
// hang a rewrite loop; front ends wrap engine calls in Run so a stuck request
// costs a goroutine rather than the process.
package timeout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Bounds for user-supplied timeouts.
const (
	Default = 3 * time.Second
	Min     = 100 * time.Millisecond
	Max     = 30 * time.Second
)

// ErrTimeout is returned when the computation outlives its deadline.
var ErrTimeout = errors.New("computation timed out")

// Validate normalizes a user-supplied timeout. Zero means unset and maps to
// Default; a negative value disables enforcement; anything else must lie
// within [Min, Max].
func Validate(d time.Duration) (time.Duration, error) {
	switch {
	case d == 0:
		return Default, nil
	case d < 0:
		return 0, nil
	case d < Min:
		return 0, domain.InputErrorf("timeout too small (min %s, got %s)", Min, d)
	case d > Max:
		return 0, domain.InputErrorf("timeout too large (max %s, got %s)", Max, d)
	}
	return d, nil
}

// Run executes fn with a deadline of d layered onto ctx. When the deadline
// passes the call returns ErrTimeout immediately; the computation itself
// cannot be killed and finishes in the background, its result discarded.
// d <= 0 runs fn synchronously with no guard.
func Run[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if d <= 0 {
		return fn(ctx)
	}

	runCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(runCtx)
		done <- outcome{value: v, err: err}
	}()

	select {
	case out := <-done:
		if errors.Is(out.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, fmt.Errorf("%w: operation exceeded %s timeout", ErrTimeout, d)
		}
		return out.value, out.err
	case <-runCtx.Done():
		if ctx.Err() != nil {
			// The caller went away; that is cancellation, not a timeout.
			return zero, ctx.Err()
		}
		return zero, fmt.Errorf("%w: operation exceeded %s timeout", ErrTimeout, d)
	}
}
