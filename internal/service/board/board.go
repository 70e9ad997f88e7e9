package board

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"improvehub/internal/gateway"
	"improvehub/internal/state"
	"improvehub/pkg/logger"
)

var ErrEmptyDemand = errors.New("demand payload is empty")

// Loader produces a reconciled snapshot of the remote store.
type Loader interface {
	Load(ctx context.Context) (gateway.Result, error)
}

// Intake receives demand submissions.
type Intake interface {
	SubmitDemand(ctx context.Context, demand map[string]any) error
}

// Deduper suppresses repeated submissions that carry the same key.
type Deduper interface {
	AcquireOnce(ctx context.Context, scope, key string) bool
}

// RefreshStatus describes the outcome of the most recent refresh.
type RefreshStatus struct {
	LastAttempt time.Time `json:"lastAttempt,omitempty"`
	LastSuccess time.Time `json:"lastSuccess,omitempty"`
	LastError   string    `json:"lastError,omitempty"`
	Degraded    bool      `json:"degraded"`
	Projects    int       `json:"projects"`
	Tasks       int       `json:"tasks"`
}

// Board keeps the view state in step with the remote store and accepts
// demand submissions.
type Board struct {
	ctrl   *state.Controller
	loader Loader
	intake Intake
	dedup  Deduper
	logger *zap.Logger

	refreshMu sync.Mutex
	statusMu  sync.RWMutex
	status    RefreshStatus
}

// NewBoard wires the board. dedup may be nil.
func NewBoard(ctrl *state.Controller, loader Loader, intake Intake, dedup Deduper, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		ctrl:   ctrl,
		loader: loader,
		intake: intake,
		dedup:  dedup,
		logger: logger,
	}
}

func (b *Board) Controller() *state.Controller {
	return b.ctrl
}

// Status returns the last refresh outcome.
func (b *Board) Status() RefreshStatus {
	b.statusMu.RLock()
	defer b.statusMu.RUnlock()
	return b.status
}

// Refresh reloads the store. On failure the current collection is kept, which
// on the first load means it stays empty. Concurrent calls are serialised.
func (b *Board) Refresh(ctx context.Context) (gateway.Result, error) {
	b.refreshMu.Lock()
	defer b.refreshMu.Unlock()

	now := time.Now()
	res, err := b.loader.Load(ctx)

	b.statusMu.Lock()
	b.status.LastAttempt = now
	if err != nil {
		b.status.LastError = err.Error()
	} else {
		b.status.LastSuccess = now
		b.status.LastError = ""
		b.status.Degraded = res.DemandsErr != nil
		b.status.Projects = res.Stats.Projects
		b.status.Tasks = res.Stats.Tasks
	}
	b.statusMu.Unlock()

	if err != nil {
		return gateway.Result{}, err
	}
	b.ctrl.ReplaceAll(res.Projects)
	return res, nil
}

// StartRefresher refreshes every interval until ctx is done. A non-positive
// interval disables it.
func (b *Board) StartRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		b.logger.Info("Periodic refresh disabled")
		return
	}
	b.logger.Info("Starting periodic refresh", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Periodic refresh stopped")
			return
		case <-ticker.C:
			if _, err := b.Refresh(ctx); err != nil && ctx.Err() == nil {
				b.logger.Warn("Periodic refresh failed", zap.Error(err))
			}
		}
	}
}

// SubmitDemand forwards a demand without waiting for the intake endpoint.
// A non-empty idempotency key already seen within the dedup window is
// dropped and reported as not accepted.
func (b *Board) SubmitDemand(ctx context.Context, idempotencyKey string, demand map[string]any) (bool, error) {
	if len(demand) == 0 {
		return false, ErrEmptyDemand
	}
	if idempotencyKey != "" && b.dedup != nil && !b.dedup.AcquireOnce(ctx, "demand", idempotencyKey) {
		return false, nil
	}

	log := logger.WithTrace(ctx, b.logger)
	started := b.ctrl.Background().Go("submit_demand", func(ctx context.Context) error {
		return b.intake.SubmitDemand(ctx, demand)
	})
	if !started {
		log.Warn("Demand dropped, shutting down")
		return false, nil
	}
	log.Info("Demand submitted", zap.Int("fields", len(demand)))
	return true, nil
}
