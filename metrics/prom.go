package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PasteCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pastebox_paste_created_total",
		Help: "no. of pastes created",
	})
	PasteRetrieved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pastebox_paste_retrieved_total",
		Help: "no. of full paste retrievals (counted as views)",
	})
	PasteRawRetrieved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pastebox_paste_raw_retrieved_total",
		Help: "no. of raw content retrievals",
	})
	PastesStored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pastebox_pastes_stored",
		Help: "pastes currently held in memory",
	})
	IDCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pastebox_id_collisions_total",
		Help: "no. of generated ids that were already taken",
	})
	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pastebox_validation_failures_total",
			Help: "no. of rejected create requests",
		},
		[]string{"reason"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pastebox_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pastebox_rate_limit_hits_total",
			Help: "no. of rate limit violations",
		},
		[]string{"backend"},
	)
)
