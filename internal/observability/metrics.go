// Package observability holds the Prometheus collectors shared by the HTTP
// layer, the post service and the post cache.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by method, route template and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_http_requests_total",
		Help: "Total HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	// HTTPLatency records request latency by method and route template.
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postboard_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// PostOperations counts post service calls by operation and outcome
	// (ok or an error kind).
	PostOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_post_operations_total",
		Help: "Post service operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// PostSaveConflicts counts optimistic-lock conflicts seen on save.
	PostSaveConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postboard_post_save_conflicts_total",
		Help: "Conditional post saves rejected because of a version mismatch",
	})

	// PostCacheLookups counts post cache lookups by result (hit or miss).
	PostCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_post_cache_lookups_total",
		Help: "Post cache lookups by result",
	}, []string{"result"})
)
