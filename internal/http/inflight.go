package http

import (
	"context"
	"sync"
	"time"
)

// InFlightTracker counts requests the server has accepted but not yet
// finished. Graceful shutdown polls it to know when draining is done.
type InFlightTracker struct {
	mu    sync.RWMutex
	count int64
}

// Increment records the start of a request.
func (t *InFlightTracker) Increment() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
}

// Decrement records the completion of a request.
func (t *InFlightTracker) Decrement() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count--
}

// Count reports how many requests are currently outstanding.
func (t *InFlightTracker) Count() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// WaitForZero polls the count every checkInterval until it hits zero,
// returning early with ctx.Err() if the context expires first.
func (t *InFlightTracker) WaitForZero(ctx context.Context, checkInterval time.Duration) error {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()
	for {
		if t.Count() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// globalInFlightTracker is the single process-wide instance; MetricsMiddleware
// increments and decrements it around every handled request.
var globalInFlightTracker = &InFlightTracker{}

// InFlightCount reports the process-wide outstanding request count.
func InFlightCount() int64 {
	return globalInFlightTracker.Count()
}

// WaitForInFlight waits on the process-wide tracker, polling every
// checkInterval, until it drains or ctx is done.
func WaitForInFlight(ctx context.Context, checkInterval time.Duration) error {
	return globalInFlightTracker.WaitForZero(ctx, checkInterval)
}
