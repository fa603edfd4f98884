package risk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScoresTotal counts scored PRs.
	// Labels: model (hybrid-tf-cosine-v1, baseline-heuristic-v1)
	ScoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskradar",
			Subsystem: "scorer",
			Name:      "scores_total",
			Help:      "Total number of scored pull requests by model",
		},
		[]string{"model"},
	)

	// ScoreValue tracks the distribution of risk scores.
	ScoreValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "riskradar",
			Subsystem: "scorer",
			Name:      "score_value",
			Help:      "Distribution of risk scores",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	// ScoreDuration tracks how long scoring takes, corpus reads included.
	ScoreDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "riskradar",
			Subsystem: "scorer",
			Name:      "score_duration_seconds",
			Help:      "Duration of scoring operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
