package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"improvehub/internal/model"
	"improvehub/pkg/circuitbreaker"
	"improvehub/pkg/logger"
	"improvehub/pkg/metrics"
	"improvehub/pkg/otel"
)

// Client mirrors view-state mutations to a Sink. Each route has its own
// circuit breaker, so a failing intake endpoint never blocks project
// lifecycle calls. There are no retries.
type Client struct {
	sink     Sink
	breakers map[Route]*circuitbreaker.CircuitBreaker
	logger   *zap.Logger
	now      func() time.Time
}

// NewClient builds one breaker per route from cfg. A zero FailureThreshold
// selects circuitbreaker.DefaultConfig.
func NewClient(sink Sink, cfg circuitbreaker.Config, logger *zap.Logger) *Client {
	if cfg.FailureThreshold <= 0 {
		cfg = circuitbreaker.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	breakers := make(map[Route]*circuitbreaker.CircuitBreaker, 3)
	for _, route := range []Route{RouteLifecycle, RouteActivity, RouteIntake} {
		breakers[route] = circuitbreaker.NewCircuitBreaker(cfg)
	}
	return &Client{
		sink:     sink,
		breakers: breakers,
		logger:   logger,
		now:      time.Now,
	}
}

// BreakerState reports the breaker guarding route.
func (c *Client) BreakerState(route Route) circuitbreaker.State {
	return c.breaker(route).GetState()
}

func (c *Client) breaker(route Route) *circuitbreaker.CircuitBreaker {
	if b, ok := c.breakers[route]; ok {
		return b
	}
	return c.breakers[RouteLifecycle]
}

func (c *Client) ProjectCreated(ctx context.Context, p *model.Project) error {
	return c.deliver(ctx, RouteLifecycle, ActionCreate, ProjectPayload{Action: ActionCreate, Project: p})
}

func (c *Client) ProjectUpdated(ctx context.Context, p *model.Project) error {
	return c.deliver(ctx, RouteLifecycle, ActionUpdate, ProjectPayload{Action: ActionUpdate, Project: p})
}

func (c *Client) ProjectDeleted(ctx context.Context, id string) error {
	return c.deliver(ctx, RouteLifecycle, ActionDelete, DeletePayload{Action: ActionDelete, ID: id})
}

func (c *Client) ActivityCreated(ctx context.Context, p *model.Project, a model.Activity) error {
	return c.deliver(ctx, RouteActivity, EventCreateActivity, ActivityEvent{
		Event:        EventCreateActivity,
		ProjectID:    p.ID,
		ProjectTitle: p.Title,
		Activity:     a,
		Timestamp:    c.timestamp(),
	})
}

func (c *Client) TaskCreated(ctx context.Context, p *model.Project, a model.Activity, t model.SubActivity) error {
	return c.deliver(ctx, RouteActivity, EventCreateTask, TaskEvent{
		Event:        EventCreateTask,
		ProjectID:    p.ID,
		ProjectTitle: p.Title,
		ActivityID:   a.ID,
		ActivityName: a.Name,
		Task:         t,
		Timestamp:    c.timestamp(),
	})
}

// SubmitDemand forwards a free-form demand to the intake webhook.
func (c *Client) SubmitDemand(ctx context.Context, demand map[string]any) error {
	return c.deliver(ctx, RouteIntake, "submit_demand", demand)
}

func (c *Client) timestamp() string {
	return c.now().UTC().Format(time.RFC3339)
}

func (c *Client) deliver(ctx context.Context, route Route, kind string, payload any) (err error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", kind, err)
	}

	ctx, span := otel.StartSpan(ctx, "webhook."+kind,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("sync.route", string(route)),
			attribute.Int("sync.body_size", len(body)),
		),
	)
	start := time.Now()
	defer func() {
		status := "success"
		switch {
		case errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen):
			status = "circuit_open"
		case err != nil:
			status = "failed"
		}
		metrics.RecordSyncDelivery(string(route), status, time.Since(start))
		otel.EndSpan(span, err)
	}()

	breaker := c.breaker(route)
	err = breaker.Execute(func() error {
		return c.sink.Deliver(ctx, route, body)
	})
	if err != nil {
		logger.WithTrace(ctx, c.logger).Warn("Sync delivery failed",
			zap.String("route", string(route)),
			zap.String("kind", kind),
			zap.String("breaker", breaker.GetState().String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
