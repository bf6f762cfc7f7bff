// Package governor bounds concurrent lint subprocess executions.
//
// A fixed pool of permits is modeled as a buffered channel owned by an
// explicit Governor object. At most capacity lint subprocesses run at any
// instant; the permit is held for the full duration of one invocation and
// released unconditionally, including when the work times out. Overload
// (no permit ever granted) is reported distinctly from timeout (permit
// granted, work cancelled).
package governor

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Defaults matching the service's documented limits.
const (
	DefaultCapacity = 10
	DefaultTimeout  = 60 * time.Second
)

// ErrOverloaded is returned when every permit is taken and the governor
// is configured to fail fast instead of queueing.
var ErrOverloaded = errors.New("too many concurrent lint requests")

// TimeoutError reports that a permit was granted but the governed work
// did not finish before the deadline and was cancelled.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("lint request timed out after %s", e.Timeout)
}

// Governor is the admission controller for lint invocations.
type Governor struct {
	permits chan struct{}
	timeout time.Duration
	wait    bool
}

// New creates a governor with the given permit count and per-run
// deadline. When wait is true, callers block for a permit until their
// context is cancelled; otherwise exhaustion returns ErrOverloaded
// immediately.
func New(capacity int, timeout time.Duration, wait bool) *Governor {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Governor{
		permits: make(chan struct{}, capacity),
		timeout: timeout,
		wait:    wait,
	}
}

// Capacity returns the size of the permit pool.
func (g *Governor) Capacity() int {
	return cap(g.permits)
}

// Timeout returns the per-run deadline.
func (g *Governor) Timeout() time.Duration {
	return g.timeout
}

// InFlight returns the number of permits currently held.
func (g *Governor) InFlight() int {
	return len(g.permits)
}

// Run acquires a permit, executes fn under the configured deadline, and
// releases the permit. fn receives a context that is cancelled when the
// deadline expires or the caller's ctx is cancelled; fn must honor it so
// the underlying subprocess is not left running.
func (g *Governor) Run(ctx context.Context, fn func(context.Context) error) error {
	if err := g.acquire(ctx); err != nil {
		return err
	}
	defer g.release()

	runCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err := fn(runCtx)
	if runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return &TimeoutError{Timeout: g.timeout}
	}
	return err
}

func (g *Governor) acquire(ctx context.Context) error {
	if g.wait {
		select {
		case g.permits <- struct{}{}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	select {
	case g.permits <- struct{}{}:
		return nil
	default:
		return ErrOverloaded
	}
}

func (g *Governor) release() {
	<-g.permits
}
