package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reviewsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dogpatch_reviews_recorded_total",
		Help: "Reviews committed together with their rating cascade.",
	})

	reviewFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dogpatch_review_failures_total",
		Help: "Review submissions rejected or rolled back, by error code.",
	}, []string{"code"})

	cascadeListings = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dogpatch_review_cascade_listings",
		Help:    "Listings updated per committed review.",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
	})

	reviewDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dogpatch_review_record_duration_seconds",
		Help:    "Time to validate, aggregate and commit one review.",
		Buckets: prometheus.DefBuckets,
	})
)
