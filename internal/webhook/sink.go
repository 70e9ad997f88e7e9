package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"improvehub/pkg/trace"
)

// Route selects the endpoint a message is delivered to.
type Route string

const (
	RouteLifecycle Route = "lifecycle"
	RouteActivity  Route = "activity"
	RouteIntake    Route = "intake"
)

const (
	SignatureHeader = "X-Improvehub-Signature"
	TimestampHeader = "X-Improvehub-Timestamp"
)

var ErrNoEndpoint = errors.New("no endpoint configured for route")

// Sink delivers an encoded JSON body. A nil error means the receiver accepted it.
type Sink interface {
	Deliver(ctx context.Context, route Route, body []byte) error
}

// HTTPSink posts to the automation webhooks. Lifecycle and activity messages
// share one endpoint, demand intake has its own.
type HTTPSink struct {
	LifecycleURL string
	IntakeURL    string
	Secret       string

	client *http.Client
	now    func() time.Time
}

func NewHTTPSink(lifecycleURL, intakeURL, secret string, timeout time.Duration) *HTTPSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSink{
		LifecycleURL: lifecycleURL,
		IntakeURL:    intakeURL,
		Secret:       secret,
		client:       &http.Client{Timeout: timeout},
		now:          time.Now,
	}
}

func (s *HTTPSink) url(route Route) string {
	if route == RouteIntake {
		return s.IntakeURL
	}
	return s.LifecycleURL
}

func (s *HTTPSink) Deliver(ctx context.Context, route Route, body []byte) error {
	url := s.url(route)
	if url == "" {
		return fmt.Errorf("%w: %s", ErrNoEndpoint, route)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "improvehub-webhook/1")
	if traceID := trace.FromContext(ctx); traceID != "" {
		req.Header.Set(trace.HeaderName(), traceID)
	}

	ts := strconv.FormatInt(s.now().Unix(), 10)
	req.Header.Set(TimestampHeader, ts)
	if s.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(s.Secret, ts, body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", route, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: status %d", route, resp.StatusCode)
	}
	return nil
}

// Sign returns the signature header value for body sent at timestamp ts.
func Sign(secret, ts string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Publisher is the subset of *mq.Publisher the AMQP sink needs.
type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, body []byte) error
}

// AMQPSink publishes the same bodies to the topic exchange.
type AMQPSink struct {
	pub Publisher
}

func NewAMQPSink(pub Publisher) *AMQPSink {
	return &AMQPSink{pub: pub}
}

// RoutingKey maps a route to its AMQP routing key.
func RoutingKey(route Route) string {
	switch route {
	case RouteLifecycle:
		return "project.lifecycle"
	case RouteActivity:
		return "project.activity"
	case RouteIntake:
		return "demand.intake"
	default:
		return "unrouted"
	}
}

func (s *AMQPSink) Deliver(ctx context.Context, route Route, body []byte) error {
	if err := s.pub.PublishJSON(ctx, RoutingKey(route), body); err != nil {
		return fmt.Errorf("publish %s: %w", route, err)
	}
	return nil
}

// DiscardSink accepts everything. Used when no transport is configured.
type DiscardSink struct {
	Logger *zap.Logger
}

func (s DiscardSink) Deliver(_ context.Context, route Route, body []byte) error {
	if s.Logger != nil {
		s.Logger.Debug("Sync message discarded", zap.String("route", string(route)), zap.Int("bytes", len(body)))
	}
	return nil
}
