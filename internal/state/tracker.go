package state

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Tracker runs fire-and-forget remote calls under one cancellable context so
// that shutdown can abandon whatever is still in flight.
type Tracker struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *zap.Logger

	mu       sync.Mutex
	closed   bool
	inflight int
}

func NewTracker(logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{ctx: ctx, cancel: cancel, logger: logger}
}

// Go starts fn in the background. Its error is only logged. Returns false if
// the tracker is already closed and fn was not started.
func (t *Tracker) Go(name string, fn func(ctx context.Context) error) bool {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		t.logger.Warn("Background task dropped after shutdown", zap.String("task", name))
		return false
	}
	t.inflight++
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer func() {
			t.mu.Lock()
			t.inflight--
			t.mu.Unlock()
			t.wg.Done()
		}()

		start := time.Now()
		if err := fn(t.ctx); err != nil {
			t.logger.Warn("Background task failed",
				zap.String("task", name),
				zap.Duration("took", time.Since(start)),
				zap.Error(err),
			)
			return
		}
		t.logger.Debug("Background task finished",
			zap.String("task", name),
			zap.Duration("took", time.Since(start)),
		)
	}()
	return true
}

// InFlight reports how many tasks are still running.
func (t *Tracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inflight
}

// Wait blocks until every started task returned.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Close abandons in-flight tasks: their context is cancelled and Close waits
// for them to return. Later calls to Go are refused.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	t.cancel()
	t.wg.Wait()
}
