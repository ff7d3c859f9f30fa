package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_generations_total",
			Help: "Total number of plan generation calls by outcome",
		},
		[]string{"status"},
	)

	GenerationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_generation_failures_total",
			Help: "Total number of failed plan generations by error kind",
		},
		[]string{"kind"},
	)

	GenerationAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plan_generation_attempts",
			Help:    "Provider attempts used per generation call",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "plan_generation_duration_seconds",
			Help: "Duration of plan generation calls in seconds",
		},
		[]string{"status"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plan_cache_hits_total",
			Help: "Plan generations served from the cache",
		},
	)
)
