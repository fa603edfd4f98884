package corpus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Unavailable counts failed collection reads.
	// Labels: collection (quality, risky, team, stats)
	Unavailable = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskradar",
			Subsystem: "corpus",
			Name:      "unavailable_total",
			Help:      "Total number of collection reads that failed",
		},
		[]string{"collection"},
	)

	// TeamDocuments tracks the size of the team corpus after each append.
	TeamDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "riskradar",
			Subsystem: "corpus",
			Name:      "team_documents",
			Help:      "Number of documents in the team corpus after the last append",
		},
	)

	// TeamEvictions counts team documents dropped from the front of the FIFO.
	// Labels: reason (capacity, size_limit)
	TeamEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskradar",
			Subsystem: "corpus",
			Name:      "team_evictions_total",
			Help:      "Total number of team documents evicted",
		},
		[]string{"reason"},
	)

	// TeamResets counts team lists replaced because the stored one was
	// undecodable.
	TeamResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "riskradar",
			Subsystem: "corpus",
			Name:      "team_resets_total",
			Help:      "Total number of undecodable team lists replaced by a fresh one",
		},
	)

	// SeedWrites counts seed initializations and reseeds.
	// Labels: result (success, error)
	SeedWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskradar",
			Subsystem: "corpus",
			Name:      "seed_writes_total",
			Help:      "Total number of seed corpus writes",
		},
		[]string{"result"},
	)
)
