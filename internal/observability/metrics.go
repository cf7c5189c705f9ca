package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pollshare_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// RateLimited counts requests rejected by the per-route limiter.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pollshare_rate_limited_total",
		Help: "Requests rejected by rate limiting, by resource",
	}, []string{"resource"})

	// CacheRequests counts cache-aside lookups by result (hit, miss, error).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pollshare_cache_requests_total",
		Help: "Cache-aside lookups by result",
	}, []string{"result"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pollshare_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// VotesTotal counts vote attempts by result (accepted, duplicate, expired, invalid, error).
	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pollshare_votes_total",
		Help: "Vote attempts by result",
	}, []string{"result"})

	// FollowOperations counts follow graph mutations by operation and whether they changed state.
	FollowOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pollshare_follow_operations_total",
		Help: "Follow and unfollow operations by outcome",
	}, []string{"operation", "changed"})

	// CommentOperations counts comment creations and deletions.
	CommentOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pollshare_comment_operations_total",
		Help: "Comment operations by type",
	}, []string{"operation"})

	// EventsPublished counts activity events handed to the event stream.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pollshare_events_published_total",
		Help: "Activity events published by type and result",
	}, []string{"type", "result"})

	// WebSocketConnections is the gauge of open poll-room websocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pollshare_websocket_connections",
		Help: "Number of active poll-room WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pollshare_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
