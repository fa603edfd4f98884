package risk

import "github.com/Kavirubc/gh-riskradar/pkg/models"

// Level buckets a score: below 0.3 is low, below 0.7 medium, else high
func Level(score float64) models.RiskLevel {
	switch {
	case score < 0.3:
		return models.RiskLow
	case score < 0.7:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}
