package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"improvehub/internal/model"
	"improvehub/pkg/circuitbreaker"
)

type received struct {
	path    string
	headers http.Header
	body    map[string]any
	raw     []byte
}

type recorder struct {
	mu     sync.Mutex
	got    []received
	status int
}

func (r *recorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		raw, err := io.ReadAll(req.Body)
		assert.NoError(t, err)
		var body map[string]any
		assert.NoError(t, json.Unmarshal(raw, &body))

		r.mu.Lock()
		r.got = append(r.got, received{path: req.URL.Path, headers: req.Header.Clone(), body: body, raw: raw})
		status := r.status
		r.mu.Unlock()

		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
	}
}

func (r *recorder) last(t *testing.T) received {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.got)
	return r.got[len(r.got)-1]
}

func newTestClient(t *testing.T, rec *recorder, secret string) *Client {
	t.Helper()
	srv := httptest.NewServer(rec.handler(t))
	t.Cleanup(srv.Close)

	sink := NewHTTPSink(srv.URL+"/lifecycle", srv.URL+"/intake", secret, time.Second)
	sink.now = func() time.Time { return time.Unix(1767225600, 0) }
	c := NewClient(sink, circuitbreaker.Config{}, zap.NewNop())
	c.now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func sampleProject() *model.Project {
	return &model.Project{
		ID:       "p1",
		Title:    "Reduce Scrap",
		Leader:   "Ana",
		Status:   model.ProjectActive,
		Progress: 50,
	}
}

func TestClient_ProjectCreatedFlattensFields(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec, "")

	require.NoError(t, c.ProjectCreated(context.Background(), sampleProject()))

	got := rec.last(t)
	assert.Equal(t, "/lifecycle", got.path)
	assert.Equal(t, "create", got.body["action"])
	assert.Equal(t, "p1", got.body["id"])
	assert.Equal(t, "Reduce Scrap", got.body["title"])
	assert.Equal(t, "Ativo", got.body["status"])
	assert.EqualValues(t, 50, got.body["progress"])
	assert.Empty(t, got.headers.Get(SignatureHeader))
	assert.Equal(t, "1767225600", got.headers.Get(TimestampHeader))
}

func TestClient_ProjectDeletedSendsOnlyID(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec, "")

	require.NoError(t, c.ProjectDeleted(context.Background(), "p9"))
	assert.Equal(t, map[string]any{"action": "delete", "id": "p9"}, rec.last(t).body)
}

func TestClient_TaskAndActivityEvents(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec, "")
	p := sampleProject()
	a := model.Activity{ID: "a1", Name: "Mapping"}
	task := model.SubActivity{ID: "t1", Name: "Draft SOP", Status: model.TaskNotStarted, DMAIC: model.PhaseDefine}

	require.NoError(t, c.TaskCreated(context.Background(), p, a, task))
	got := rec.last(t).body
	assert.Equal(t, "create_task", got["event"])
	assert.Equal(t, "p1", got["projectId"])
	assert.Equal(t, "Reduce Scrap", got["projectTitle"])
	assert.Equal(t, "a1", got["activityId"])
	assert.Equal(t, "Mapping", got["activityName"])
	assert.Equal(t, "Draft SOP", got["task"].(map[string]any)["name"])
	assert.Equal(t, "2026-01-01T12:00:00Z", got["timestamp"])

	require.NoError(t, c.ActivityCreated(context.Background(), p, a))
	got = rec.last(t).body
	assert.Equal(t, "create_activity", got["event"])
	assert.Equal(t, "Mapping", got["activity"].(map[string]any)["name"])
	assert.NotContains(t, got, "task")
}

func TestClient_SubmitDemandUsesIntakeEndpoint(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec, "")

	require.NoError(t, c.SubmitDemand(context.Background(), map[string]any{"titulo": "Nova demanda", "urgente": true}))
	got := rec.last(t)
	assert.Equal(t, "/intake", got.path)
	assert.Equal(t, "Nova demanda", got.body["titulo"])
}

func TestClient_SignsWhenSecretConfigured(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec, "topsecret")

	require.NoError(t, c.ProjectUpdated(context.Background(), sampleProject()))
	got := rec.last(t)
	ts := got.headers.Get(TimestampHeader)
	assert.Equal(t, Sign("topsecret", ts, got.raw), got.headers.Get(SignatureHeader))
	assert.Contains(t, got.headers.Get(SignatureHeader), "sha256=")
	assert.NotEqual(t, Sign("other", ts, got.raw), got.headers.Get(SignatureHeader))
}

func TestClient_NonSuccessStatusIsError(t *testing.T) {
	rec := &recorder{status: http.StatusBadGateway}
	c := newTestClient(t, rec, "")

	err := c.ProjectUpdated(context.Background(), sampleProject())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestClient_OpenBreakerFailsFast(t *testing.T) {
	sink := &countingSink{err: errors.New("connection refused")}
	c := NewClient(sink, testBreakerConfig, zap.NewNop())

	for i := 0; i < 2; i++ {
		assert.Error(t, c.ProjectDeleted(context.Background(), "p1"))
	}
	err := c.ProjectDeleted(context.Background(), "p1")
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitBreakerOpen)
	assert.Equal(t, 2, sink.calls)
	assert.Equal(t, circuitbreaker.StateOpen, c.BreakerState(RouteLifecycle))
}

var testBreakerConfig = circuitbreaker.Config{
	FailureThreshold:    2,
	SuccessThreshold:    1,
	Timeout:             time.Hour,
	HalfOpenMaxRequests: 1,
}

func TestClient_IntakeFailuresDoNotBlockLifecycle(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(t))
	t.Cleanup(srv.Close)

	// no intake endpoint: every demand submission fails
	c := NewClient(NewHTTPSink(srv.URL+"/lifecycle", "", "", time.Second), testBreakerConfig, zap.NewNop())

	for i := 0; i < 5; i++ {
		err := c.SubmitDemand(context.Background(), map[string]any{"demand": i})
		require.Error(t, err)
	}
	assert.Equal(t, circuitbreaker.StateOpen, c.BreakerState(RouteIntake))

	require.NoError(t, c.ProjectCreated(context.Background(), sampleProject()))
	require.NoError(t, c.ActivityCreated(context.Background(), sampleProject(), model.Activity{ID: "a1", Name: "Mapping"}))
	assert.Equal(t, "/lifecycle", rec.last(t).path)
	assert.Equal(t, circuitbreaker.StateClosed, c.BreakerState(RouteLifecycle))
	assert.Equal(t, circuitbreaker.StateClosed, c.BreakerState(RouteActivity))
}

func TestHTTPSink_MissingEndpoint(t *testing.T) {
	sink := NewHTTPSink("", "", "", 0)
	err := sink.Deliver(context.Background(), RouteIntake, []byte(`{}`))
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

type countingSink struct {
	calls int
	err   error
}

func (s *countingSink) Deliver(context.Context, Route, []byte) error {
	s.calls++
	return s.err
}

type fakePublisher struct {
	keys   []string
	bodies [][]byte
	err    error
}

func (p *fakePublisher) PublishJSON(_ context.Context, key string, body []byte) error {
	p.keys = append(p.keys, key)
	p.bodies = append(p.bodies, body)
	return p.err
}

func TestAMQPSink_RoutingKeys(t *testing.T) {
	pub := &fakePublisher{}
	c := NewClient(NewAMQPSink(pub), circuitbreaker.Config{}, zap.NewNop())

	require.NoError(t, c.ProjectDeleted(context.Background(), "p1"))
	require.NoError(t, c.ActivityCreated(context.Background(), sampleProject(), model.Activity{ID: "a1", Name: "Mapping"}))
	require.NoError(t, c.SubmitDemand(context.Background(), map[string]any{"x": 1}))

	assert.Equal(t, []string{"project.lifecycle", "project.activity", "demand.intake"}, pub.keys)
	assert.JSONEq(t, `{"action":"delete","id":"p1"}`, string(pub.bodies[0]))
}

func TestAMQPSink_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}
	err := NewAMQPSink(pub).Deliver(context.Background(), RouteLifecycle, []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel closed")
}

func TestDiscardSink(t *testing.T) {
	assert.NoError(t, DiscardSink{Logger: zap.NewNop()}.Deliver(context.Background(), RouteIntake, nil))
}
