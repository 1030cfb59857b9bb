package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records repository query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snapshare_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthEvents counts registrations, logins and logouts by outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshare_auth_events_total",
		Help: "Authentication events by type and outcome",
	}, []string{"event", "outcome"})

	// ContentCreated counts stored profile images and posts.
	ContentCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshare_content_created_total",
		Help: "Profile images and posts stored",
	}, []string{"kind"})

	// SearchesTotal counts username searches by result.
	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshare_searches_total",
		Help: "Username searches by result",
	}, []string{"result"})

	// AuditAppends counts audit log appends by log.
	AuditAppends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshare_audit_appends_total",
		Help: "Entries appended to the audit logs",
	}, []string{"log"})

	// BlobOperationLatency records blob store latency by backend and operation.
	BlobOperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snapshare_blob_operation_latency_seconds",
		Help:    "Blob store operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "operation"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// TrackBlob returns a function that records blob operation latency when called.
func TrackBlob(backend, operation string) func() {
	start := time.Now()
	return func() {
		BlobOperationLatency.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
	}
}
