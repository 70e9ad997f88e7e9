package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Webhook / AMQP 投递延迟（毫秒）
	SyncDeliveryLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_delivery_latency_ms",
			Help:    "Outbound sync delivery latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"route", "status"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of queries above the slow threshold",
		},
		[]string{"table"},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	// 对账结果
	ReconciledProjects = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reconciled_projects",
			Help: "Number of projects produced by the last reconciliation",
		},
	)

	// 对账次数
	ReconcileCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_count",
			Help: "Total number of reconciliation passes",
		},
		[]string{"status"}, // status: success, failed, degraded
	)

	// 状态变更计数
	MutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "state_mutation_count",
			Help: "Total number of view-state mutations",
		},
		[]string{"mutation", "durability", "outcome"}, // outcome: applied, rejected, rolled_back, diverged
	)
)

// RecordSyncDelivery 记录投递延迟
func RecordSyncDelivery(route, status string, duration time.Duration) {
	SyncDeliveryLatency.WithLabelValues(route, status).Observe(float64(duration.Milliseconds()))
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery 增加慢查询计数
func IncrementSlowQuery(table string) {
	SlowQueryCount.WithLabelValues(table).Inc()
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordReconcile 记录一次对账
func RecordReconcile(status string, projects int) {
	ReconcileCount.WithLabelValues(status).Inc()
	if status != "failed" {
		ReconciledProjects.Set(float64(projects))
	}
}

// IncrementMutation 增加状态变更计数
func IncrementMutation(mutation, durability, outcome string) {
	MutationCount.WithLabelValues(mutation, durability, outcome).Inc()
}
