// Package risk scores pull requests against the labelled corpus.
//
// The score starts from a neutral prior, moves down with similarity to
// known-good changes and up with similarity to known-risky ones, then adds
// penalties for changes that are large, sprawling or poorly titled compared
// to the seed-quality averages. Without any seed data it falls back to a
// heuristic on the raw PR metrics.
package risk

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Kavirubc/gh-riskradar/internal/config"
	"github.com/Kavirubc/gh-riskradar/internal/logging"
	"github.com/Kavirubc/gh-riskradar/internal/similarity"
	"github.com/Kavirubc/gh-riskradar/internal/vectorize"
	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

const (
	// ModelHybrid identifies corpus-informed scores
	ModelHybrid = "hybrid-tf-cosine-v1"
	// ModelBaseline identifies scores computed without any seed corpus
	ModelBaseline = "baseline-heuristic-v1"
)

// CorpusReader is the read side of the corpus store
type CorpusReader interface {
	LoadQuality(ctx context.Context) ([]models.Document, error)
	LoadRisky(ctx context.Context) ([]models.Document, error)
	LoadTeam(ctx context.Context) ([]models.Document, error)
	Stats(ctx context.Context) (models.BenchmarkStats, error)
}

// Scorer computes RiskResults. It is safe for concurrent use.
type Scorer struct {
	corpus   CorpusReader
	vec      *vectorize.Vectorizer
	weights  config.ScoringConfig
	baseline config.BaselineConfig
	logger   *zap.Logger
}

// NewScorer creates a scorer reading from corpus
func NewScorer(corpus CorpusReader, vec *vectorize.Vectorizer, scoring config.ScoringConfig, baseline config.BaselineConfig, logger *zap.Logger) *Scorer {
	return &Scorer{
		corpus:   corpus,
		vec:      vec,
		weights:  scoring,
		baseline: baseline,
		logger:   logging.OrNop(logger),
	}
}

// pools holds the documents each similarity term is computed over
type pools struct {
	quality []models.Document
	risky   []models.Document
	team    []models.Document
	seeds   int
}

// Score returns the risk assessment for pr. The only error is invalid input;
// unavailable collections degrade the result instead.
func (s *Scorer) Score(ctx context.Context, pr models.PRRecord) (*models.RiskResult, error) {
	if err := pr.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	p := s.loadPools(ctx)
	query := s.vec.Vectorize(pr.Text())

	var result *models.RiskResult
	if p.seeds == 0 {
		result = s.scoreBaseline(pr, query, p)
	} else {
		result = s.scoreHybrid(ctx, pr, query, p)
	}
	result.RiskLevel = Level(result.RiskScore)
	result.Factors[models.FactorSensitiveFiles] = float64(len(SensitiveFiles(pr.Files)))

	ScoresTotal.WithLabelValues(result.ModelID).Inc()
	ScoreValue.Observe(result.RiskScore)
	ScoreDuration.Observe(time.Since(start).Seconds())
	return result, nil
}

// loadPools reads the collections and splits team documents by label.
// A collection that cannot be read is logged and treated as empty.
func (s *Scorer) loadPools(ctx context.Context) pools {
	var p pools

	quality, err := s.corpus.LoadQuality(ctx)
	if err != nil {
		s.logger.Warn("quality corpus unavailable", zap.Error(err))
	}
	risky, err := s.corpus.LoadRisky(ctx)
	if err != nil {
		s.logger.Warn("risky corpus unavailable", zap.Error(err))
	}
	team, err := s.corpus.LoadTeam(ctx)
	if err != nil {
		s.logger.Warn("team corpus unavailable", zap.Error(err))
	}

	p.seeds = len(quality) + len(risky)
	p.quality = quality
	p.risky = risky
	for _, d := range team {
		switch d.Label {
		case models.LabelQuality:
			p.quality = append(p.quality, d)
		case models.LabelRisky:
			p.risky = append(p.risky, d)
		default:
			p.team = append(p.team, d)
		}
	}
	return p
}

func (p pools) size() int {
	return len(p.quality) + len(p.risky) + len(p.team)
}

func (s *Scorer) scoreHybrid(ctx context.Context, pr models.PRRecord, query models.Vector, p pools) *models.RiskResult {
	w := s.weights

	qm := similarity.TopK(query, p.quality, w.TopK, w.MinSimilarity)
	rm := similarity.TopK(query, p.risky, w.TopK, w.MinSimilarity)
	tm := similarity.TopK(query, p.team, w.TopK, w.MinSimilarity)

	qualitySim := similarity.Mean(qm)
	riskySim := similarity.Mean(rm)
	teamSim := similarity.Mean(tm)

	score := w.Prior - qualitySim*w.QualityWeight + riskySim*w.RiskyWeight + teamSim*w.TeamWeight

	var bench *models.BenchmarkStats
	stats, err := s.corpus.Stats(ctx)
	if err != nil {
		s.logger.Warn("benchmark stats unavailable, size ratios are neutral", zap.Error(err))
	} else {
		bench = &stats
	}

	total := float64(pr.TotalChanges())
	files := float64(pr.ChangedFiles)
	sizeRatio := ratio(total, stats.AvgAdditions)
	filesRatio := ratio(files, stats.AvgChangedFiles)
	titleRatio := ratio(float64(pr.TitleLength()), stats.AvgTitleLength)

	var sizePenalty, filesPenalty, titlePenalty float64
	if sizeRatio > w.SizeRatioThreshold {
		sizePenalty = w.SizePenalty
	}
	if filesRatio > w.FilesRatioThreshold {
		filesPenalty = w.FilesPenalty
	}
	if titleRatio < w.TitleRatioThreshold {
		titlePenalty = w.TitlePenalty
	}

	sizeTerm := math.Min(total/w.SizeTermDivisor, w.SizeTermCap)
	filesTerm := math.Min(files/w.FilesTermDivisor, w.FilesTermCap)

	score += sizePenalty + filesPenalty + titlePenalty + sizeTerm + filesTerm

	return &models.RiskResult{
		RiskScore: clamp01(score),
		Factors: map[string]float64{
			models.FactorSimilarityToQuality: qualitySim,
			models.FactorSimilarityToRisky:   riskySim,
			models.FactorSimilarityToTeam:    teamSim,
			models.FactorSizeRatio:           sizeRatio,
			models.FactorFilesRatio:          filesRatio,
			models.FactorTitleRatio:          titleRatio,
			models.FactorSizePenalty:         sizePenalty,
			models.FactorFilesPenalty:        filesPenalty,
			models.FactorTitlePenalty:        titlePenalty,
			models.FactorSizeTerm:            sizeTerm,
			models.FactorFilesTerm:           filesTerm,
		},
		SimilarPRs:     evidence(w.EvidenceCount, qm, rm, tm),
		ModelID:        ModelHybrid,
		CorpusSizeUsed: p.size(),
		Benchmark:      bench,
	}
}

// evidence merges the per-pool matches; on ties quality wins over risky
// and risky over team
func evidence(k int, lists ...[]similarity.Match) []models.Match {
	merged := similarity.Merge(k, lists...)
	out := make([]models.Match, len(merged))
	for i, m := range merged {
		out[i] = m.Evidence()
	}
	return out
}

// ratio returns value/avg, or a neutral 1 when there is no average to compare to
func ratio(value, avg float64) float64 {
	if avg <= 0 || math.IsNaN(avg) || math.IsInf(avg, 0) {
		return 1
	}
	return value / avg
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
