package extract

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cardsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brief_fact_cards_extracted_total",
		Help: "Fact cards that passed schema validation.",
	})

	cardsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brief_fact_cards_rejected_total",
		Help: "Fact cards dropped by schema or semantic validation.",
	})
)
