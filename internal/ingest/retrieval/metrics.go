package retrieval

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retrieval_queries_total",
		Help: "Retrieval queries executed, by query name and outcome",
	}, []string{"query", "status"})

	itemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retrieval_items_total",
		Help: "Valid news items retrieved, by region",
	}, []string{"region"})

	itemsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retrieval_items_dropped_total",
		Help: "Items dropped during normalization, by reason",
	}, []string{"reason"})

	clustersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "retrieval_clusters",
		Help: "Story clusters produced by the last retrieval run",
	})
)
