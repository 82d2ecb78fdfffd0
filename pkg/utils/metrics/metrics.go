// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EncoderRequestDuration tracks Text Encoder latency by encoder model and outcome.
	EncoderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coursematch_encoder_request_duration_seconds",
			Help:    "Duration of Text Encoder calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model", "status"},
	)

	// EncoderBreakerState is 0 closed, 1 half-open, 2 open.
	EncoderBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coursematch_encoder_breaker_state",
			Help: "Circuit breaker state of the Text Encoder (0 closed, 1 half-open, 2 open)",
		},
		[]string{"model"},
	)

	// EmbeddingCacheLookups counts catalog embedding cache hits and misses.
	EmbeddingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursematch_embedding_cache_lookups_total",
			Help: "Catalog embedding cache lookups by result",
		},
		[]string{"result"},
	)

	CatalogCourses = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coursematch_catalog_courses",
			Help: "Number of courses in the active catalog index",
		},
	)

	CatalogRowIssues = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coursematch_catalog_row_issues",
			Help: "Number of catalog rows dropped during the last successful build",
		},
	)

	CatalogBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursematch_catalog_builds_total",
			Help: "Catalog index builds by status",
		},
		[]string{"status"},
	)

	CatalogBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coursematch_catalog_build_duration_seconds",
			Help:    "Duration of catalog index builds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursematch_recommendations_total",
			Help: "Recommendation requests by status",
		},
		[]string{"status"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coursematch_recommendation_duration_seconds",
			Help:    "End-to-end duration of recommendation requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ExcludedCourses counts courses dropped from a request because scoring them failed.
	ExcludedCourses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coursematch_scoring_excluded_courses_total",
			Help: "Courses excluded from a recommendation because scoring failed",
		},
	)
)
