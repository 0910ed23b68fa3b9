package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline-level metrics recorded by the app runner.
var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brief_runs_total",
		Help: "Pipeline runs by kind and outcome.",
	}, []string{"kind", "status"})

	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "brief_run_duration_seconds",
		Help:    "End-to-end pipeline run duration.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"kind"})

	BucketSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "brief_bucket_size",
		Help: "Cards per output bucket in the last daily run.",
	}, []string{"bucket"})

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brief_emails_sent_total",
		Help: "Emails delivered by report kind.",
	}, []string{"kind"})
)
