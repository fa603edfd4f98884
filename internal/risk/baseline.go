package risk

import (
	"math"

	"github.com/Kavirubc/gh-riskradar/internal/similarity"
	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

// scoreBaseline scores pr from its raw metrics only. Team matches, if any,
// are still reported as evidence.
func (s *Scorer) scoreBaseline(pr models.PRRecord, query models.Vector, p pools) *models.RiskResult {
	b := s.baseline

	sizeRatio := ratio(float64(pr.TotalChanges()), b.TypicalChanges)
	filesRatio := ratio(float64(pr.ChangedFiles), b.TypicalFiles)

	score := b.SizeWeight*math.Min(sizeRatio/4, 1) + b.FilesWeight*math.Min(filesRatio/4, 1)

	var shortTitle, shortDescription float64
	if pr.TitleLength() < b.MinTitleLength {
		shortTitle = 1
		score += b.TitleWeight
	}
	if pr.DescriptionLength() < b.MinDescriptionLength {
		shortDescription = 1
		score += b.DescriptionWeight
	}

	tm := similarity.TopK(query, p.team, s.weights.TopK, s.weights.MinSimilarity)

	return &models.RiskResult{
		RiskScore: clamp01(score),
		Factors: map[string]float64{
			models.FactorSizeRatio:        sizeRatio,
			models.FactorFilesRatio:       filesRatio,
			models.FactorShortTitle:       shortTitle,
			models.FactorShortDescription: shortDescription,
			models.FactorSimilarityToTeam: similarity.Mean(tm),
		},
		SimilarPRs:     evidence(s.weights.EvidenceCount, tm),
		ModelID:        ModelBaseline,
		CorpusSizeUsed: p.size(),
	}
}
