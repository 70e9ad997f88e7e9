package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"improvehub/internal/model"
	"improvehub/internal/reconcile"
	"improvehub/pkg/logger"
	"improvehub/pkg/metrics"
	"improvehub/pkg/otel"
)

// ErrPrimaryFetch means the projects could not be read; nothing was loaded.
var ErrPrimaryFetch = errors.New("failed to fetch projects")

// Result is one reconciled snapshot of the remote store.
type Result struct {
	Projects []*model.Project
	Stats    reconcile.Stats
	// DemandsErr is set when the demands fetch failed and every project was
	// reconciled without tasks.
	DemandsErr error
	Took       time.Duration
}

// Loader fetches both record sets concurrently and reconciles them.
type Loader struct {
	src    RowSource
	tables Tables
	rec    *reconcile.Reconciler
	logger *zap.Logger
}

func NewLoader(src RowSource, tables Tables, rec *reconcile.Reconciler, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{src: src, tables: tables, rec: rec, logger: logger}
}

// Load never retries. A projects failure is returned wrapped in
// ErrPrimaryFetch; a demands failure only degrades the result.
func (l *Loader) Load(ctx context.Context) (res Result, err error) {
	ctx, span := otel.StartSpan(ctx, "gateway.load", trace.WithSpanKind(trace.SpanKindClient))
	defer func() { otel.EndSpan(span, err) }()
	log := logger.WithTrace(ctx, l.logger)
	start := time.Now()

	var (
		projectRows, demandRows []reconcile.Row
		demandsErr              error
		g                       errgroup.Group
	)
	g.Go(func() error {
		rows, err := l.src.FetchAll(ctx, l.tables.Projects)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPrimaryFetch, err)
		}
		projectRows = rows
		return nil
	})
	// the demands fetch never fails the group
	g.Go(func() error {
		demandRows, demandsErr = l.src.FetchAll(ctx, l.tables.Demands)
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("Projects fetch failed", zap.String("table", l.tables.Projects), zap.Error(err))
		metrics.RecordReconcile("failed", 0)
		return Result{}, err
	}

	status := "success"
	if demandsErr != nil {
		log.Warn("Demands fetch failed, projects load without tasks",
			zap.String("table", l.tables.Demands),
			zap.Error(demandsErr),
		)
		demandRows = nil
		status = "degraded"
	}

	projects, stats := l.rec.Reconcile(projectRows, demandRows)
	metrics.RecordReconcile(status, stats.Projects)
	span.SetAttributes(
		attribute.Int("reconcile.projects", stats.Projects),
		attribute.Int("reconcile.tasks", stats.Tasks),
		attribute.String("reconcile.status", status),
	)

	res = Result{
		Projects:   projects,
		Stats:      stats,
		DemandsErr: demandsErr,
		Took:       time.Since(start),
	}
	log.Info("Store loaded",
		zap.Int("projects", stats.Projects),
		zap.Int("tasks", stats.Tasks),
		zap.Int("orphan_demands", stats.OrphanDemands),
		zap.String("status", status),
		zap.Duration("took", res.Took),
	)
	return res, nil
}

// FindProfile looks up a profile by exact username and password.
func (l *Loader) FindProfile(ctx context.Context, username, password string) (*model.UserProfile, error) {
	row, err := l.src.FindOne(ctx, l.tables.Profiles, map[string]string{
		l.tables.UsernameColumn: username,
		l.tables.PasswordColumn: password,
	})
	if err != nil {
		return nil, err
	}
	return reconcile.Profile(row), nil
}
