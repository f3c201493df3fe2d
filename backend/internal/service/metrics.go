package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agora",
			Name:      "generation_requests_total",
			Help:      "Generation requests by request type and outcome (cache_hit, generated, failed)",
		},
		[]string{"request_type", "outcome"},
	)

	generationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agora",
			Name:      "generation_failures_total",
			Help:      "Generation requests that exhausted retries and returned a fallback",
		},
		[]string{"request_type"},
	)

	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agora",
			Name:      "generation_duration_seconds",
			Help:      "Wall time of generation calls that reached the upstream provider",
			Buckets:   []float64{.25, .5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"request_type"},
	)

	generationCacheEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agora",
			Name:      "generation_cache_evicted_total",
			Help:      "Expired generation cache rows removed by the sweeper",
		},
	)

	reactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agora",
			Name:      "reactions_total",
			Help:      "Reaction transitions by pressed button and resulting state",
		},
		[]string{"pressed", "result"},
	)

	viewsCountedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agora",
			Name:      "thread_views_counted_total",
			Help:      "Unique authenticated thread views",
		},
	)
)
