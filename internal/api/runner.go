package api

import (
	"context"
	"fmt"
	"sync"
)

// ErrRunInProgress indicates a scrape run is already active
var ErrRunInProgress = fmt.Errorf("a scrape run is already in progress")

// Runner serializes scrape runs. The portal session owns a server-side
// month cursor, so only one collection sequence may be active at a time;
// both the scheduler and the manual trigger go through here.
type Runner struct {
	mu  sync.Mutex
	run func(ctx context.Context) error
}

// NewRunner wraps a scrape-run function with mutual exclusion
func NewRunner(run func(ctx context.Context) error) *Runner {
	return &Runner{run: run}
}

// TryRun executes a scrape run unless one is already active
func (r *Runner) TryRun(ctx context.Context) error {
	if !r.mu.TryLock() {
		return ErrRunInProgress
	}
	defer r.mu.Unlock()

	return r.run(ctx)
}

// Busy reports whether a run is currently active
func (r *Runner) Busy() bool {
	if r.mu.TryLock() {
		r.mu.Unlock()
		return false
	}
	return true
}
