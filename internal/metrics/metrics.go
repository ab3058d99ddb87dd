package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TranslationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "translationmdexe_translations_total",
		Help: "Segment translations by provider and result.",
	}, []string{"provider", "result"})

	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "translationmdexe_cache_hits_total",
		Help: "Translation memory hits by kind (exact or fuzzy).",
	}, []string{"kind"})

	JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "translationmdexe_jobs_total",
		Help: "Finished document jobs by status.",
	}, []string{"status"})

	ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "translationmdexe_provider_latency_seconds",
		Help:    "Provider round-trip latency per segment.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "translationmdexe_http_request_duration_seconds",
		Help:    "HTTP request duration by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
)
