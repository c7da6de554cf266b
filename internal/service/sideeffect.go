// Package service implements the business logic of the capability core.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SideEffectRunner executes best-effort side effects (notification dispatch,
// realtime push) detached from the request that triggered them. Each effect
// runs on a fresh context with a bounded timeout, so cancellation of the
// inbound request after the ledger mutation committed cannot roll anything
// back, and a stalled effect cannot stall the request path. Failures are
// observed through the error callback and never propagate.
type SideEffectRunner struct {
	timeout time.Duration
	logger  *slog.Logger
	onError func(op string, err error)
	wg      sync.WaitGroup
}

// NewSideEffectRunner creates a runner with the given per-effect timeout.
// A zero timeout defaults to 5 seconds.
func NewSideEffectRunner(timeout time.Duration, logger *slog.Logger) *SideEffectRunner {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SideEffectRunner{timeout: timeout, logger: logger}
}

// SetErrorCallback replaces the default logging callback. Intended for tests
// that assert side-effect failures are observed.
func (r *SideEffectRunner) SetErrorCallback(fn func(op string, err error)) {
	r.onError = fn
}

// Go runs fn on its own goroutine with a bounded timeout. requestID ties the
// effect's failure log back to the originating operation.
func (r *SideEffectRunner) Go(op, requestID string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			r.fail(op, requestID, err)
		}
	}()
}

// Wait blocks until all in-flight effects complete. Used at shutdown and in
// tests that need deterministic ordering.
func (r *SideEffectRunner) Wait() {
	r.wg.Wait()
}

func (r *SideEffectRunner) fail(op, requestID string, err error) {
	if r.onError != nil {
		r.onError(op, err)
		return
	}
	r.logger.Warn("side effect failed", "op", op, "request_id", requestID, "error", err)
}
