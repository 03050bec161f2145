// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cliprelay"

var (
	// CacheOperationsTotal tracks cache operations.
	// Labels:
	//   - operation: load, get, set, delete
	//   - status: hit, miss, expired, malformed, success, error
	//   - store: urls, content_ids
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations",
		},
		[]string{"operation", "status", "store"},
	)

	// CacheEntries reports the number of entries held by each store.
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Number of entries in the cache document",
		},
		[]string{"store"},
	)

	// DocumentWriteSeconds tracks whole-document rewrites.
	// Labels:
	//   - backend: file, redis, postgres, minio
	DocumentWriteSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_write_seconds",
			Help:      "Duration of cache document rewrites",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"backend"},
	)

	// LinksDetectedTotal counts links published by the bot.
	LinksDetectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_detected_total",
			Help:      "Total number of supported links detected in chat messages",
		},
	)

	// RelayOutcomesTotal tracks how each link task ended.
	// Labels:
	//   - outcome: url_hit, content_id_hit, uploaded, failed
	RelayOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_outcomes_total",
			Help:      "Total number of relayed links by outcome",
		},
		[]string{"outcome"},
	)

	// SingleflightRequestsTotal tracks singleflight behavior.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit       = "hit"
	CacheStatusMiss      = "miss"
	CacheStatusExpired   = "expired"
	CacheStatusMalformed = "malformed"
	CacheStatusSuccess   = "success"
	CacheStatusError     = "error"
)

// Cache operation type constants.
const (
	CacheOpLoad   = "load"
	CacheOpGet    = "get"
	CacheOpSet    = "set"
	CacheOpDelete = "delete"
)

// Document backend constants.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMinIO    = "minio"
)

// Relay outcome constants.
const (
	OutcomeURLHit       = "url_hit"
	OutcomeContentIDHit = "content_id_hit"
	OutcomeUploaded     = "uploaded"
	OutcomeFailed       = "failed"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)
