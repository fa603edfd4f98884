package learning

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TeamAppends counts team corpus append attempts.
// Labels: result (success, error, dropped)
var TeamAppends = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "riskradar",
		Subsystem: "learning",
		Name:      "team_appends_total",
		Help:      "Total number of team corpus append attempts by result",
	},
	[]string{"result"},
)
