package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Kavirubc/gh-riskradar/internal/config"
	"github.com/Kavirubc/gh-riskradar/internal/corpus"
	"github.com/Kavirubc/gh-riskradar/internal/kv"
	"github.com/Kavirubc/gh-riskradar/internal/learning"
	"github.com/Kavirubc/gh-riskradar/internal/logging"
	"github.com/Kavirubc/gh-riskradar/internal/risk"
	"github.com/Kavirubc/gh-riskradar/internal/similarity"
	"github.com/Kavirubc/gh-riskradar/internal/vectorize"
	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

// Processor wires storage, corpus, scorer and team learning together
type Processor struct {
	cfg     *config.Config
	kv      kv.Store
	vec     *vectorize.Vectorizer
	corpus  *corpus.Store
	view    corpusView
	scorer  *risk.Scorer
	learner *learning.TeamLearner
	logger  *zap.Logger
	dryRun  bool

	initMu   sync.Mutex
	initDone bool
}

// NewProcessor opens the configured storage backend and builds a processor on it
func NewProcessor(ctx context.Context, cfg *config.Config, dryRun bool, logger *zap.Logger) (*Processor, error) {
	store, err := kv.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}
	return New(cfg, store, dryRun, logger), nil
}

// New creates a processor over an open store. The processor owns store and
// closes it in Close.
func New(cfg *config.Config, store kv.Store, dryRun bool, logger *zap.Logger) *Processor {
	logger = logging.OrNop(logger)
	vec := vectorize.New(cfg.Vectorizer.Dimensions, cfg.Vectorizer.MinTokenLength)
	cs := corpus.NewStore(store, vec, corpus.Options{
		ChunkSize:    cfg.Corpus.ChunkSize,
		TeamCapacity: cfg.Corpus.TeamCapacity,
	}, logger.Named("corpus"))

	p := &Processor{
		cfg:    cfg,
		kv:     store,
		vec:    vec,
		corpus: cs,
		logger: logger,
		dryRun: dryRun,
	}
	if !dryRun && !cfg.Learning.Disabled {
		p.learner = learning.NewTeamLearner(cs, vec, cfg.Learning.QueueSize, logger.Named("learning"))
	}
	p.view = corpusView{Store: cs, learner: p.learner}
	p.scorer = risk.NewScorer(p.view, vec, cfg.Scoring, cfg.Baseline, logger.Named("scorer"))
	return p
}

// ScorePR scores pr and records it in the team corpus. The record is visible
// to later calls on this processor before it reaches storage. Storage problems
// degrade the result but never fail the call; the only error is invalid input.
func (p *Processor) ScorePR(ctx context.Context, pr models.PRRecord) (*models.RiskResult, error) {
	if err := pr.Validate(); err != nil {
		return nil, err
	}

	p.ensureInitialized(ctx)

	result, err := p.scorer.Score(ctx, pr)
	if err != nil {
		return nil, err
	}

	if p.learner != nil {
		p.learner.Record(pr)
	}

	p.logger.Debug("scored pull request",
		zap.String("title", pr.Title),
		zap.Float64("risk_score", result.RiskScore),
		zap.String("model_id", result.ModelID),
		zap.Int("corpus_size", result.CorpusSizeUsed))
	return result, nil
}

// ensureInitialized writes the seed corpus on first use. A failed attempt
// is retried on the next call.
func (p *Processor) ensureInitialized(ctx context.Context) {
	if p.dryRun || p.cfg.Corpus.DisableAutoInit {
		return
	}

	p.initMu.Lock()
	defer p.initMu.Unlock()
	if p.initDone {
		return
	}

	if _, err := p.InitializeCorpus(ctx); err != nil {
		p.logger.Warn("corpus initialization failed, scoring with what is available", zap.Error(err))
		return
	}
	p.initDone = true
}

// InitializeCorpus writes the seed corpus if it is missing. It reports
// whether anything was written; calling it again is a no-op.
func (p *Processor) InitializeCorpus(ctx context.Context) (bool, error) {
	if p.dryRun {
		ok, err := p.corpus.Initialized(ctx)
		if err != nil {
			return false, err
		}
		p.logger.Info("dry run, not writing seed corpus", zap.Bool("initialized", ok))
		return false, nil
	}

	seed, err := p.loadSeed()
	if err != nil {
		return false, err
	}
	created, err := p.corpus.Initialize(ctx, seed)
	if err != nil {
		return false, fmt.Errorf("failed to initialize corpus: %w", err)
	}
	if created {
		p.logger.Info("seed corpus initialized",
			zap.Int("quality", len(seed.Quality)),
			zap.Int("risky", len(seed.Risky)))
	}
	return created, nil
}

// Reseed rewrites the seed collections from the configured dataset
func (p *Processor) Reseed(ctx context.Context) error {
	if p.dryRun {
		p.logger.Info("dry run, not reseeding corpus")
		return nil
	}

	seed, err := p.loadSeed()
	if err != nil {
		return err
	}
	if err := p.corpus.Reseed(ctx, seed); err != nil {
		return fmt.Errorf("failed to reseed corpus: %w", err)
	}

	p.initMu.Lock()
	p.initDone = true
	p.initMu.Unlock()
	return nil
}

func (p *Processor) loadSeed() (*corpus.Seed, error) {
	if p.cfg.Corpus.SeedFile != "" {
		return corpus.LoadSeedFile(p.cfg.Corpus.SeedFile)
	}
	return corpus.BundledSeed()
}

// Similar returns the corpus documents most similar to text across every
// collection. Unreadable collections are skipped.
func (p *Processor) Similar(ctx context.Context, text string, limit int) ([]models.Match, error) {
	if limit <= 0 {
		limit = p.cfg.Scoring.EvidenceCount
	}
	query := p.vec.Vectorize(text)
	if query.IsZero() {
		return []models.Match{}, nil
	}

	loaders := []struct {
		name string
		load func(context.Context) ([]models.Document, error)
	}{
		{"quality", p.corpus.LoadQuality},
		{"risky", p.corpus.LoadRisky},
		{"team", p.view.LoadTeam},
	}

	var lists [][]similarity.Match
	var failed []error
	for _, l := range loaders {
		docs, err := l.load(ctx)
		if err != nil {
			p.logger.Warn("collection unavailable for search", zap.String("collection", l.name), zap.Error(err))
			failed = append(failed, err)
			continue
		}
		lists = append(lists, similarity.TopK(query, docs, limit, p.cfg.Scoring.MinSimilarity))
	}
	if len(failed) == len(loaders) {
		return nil, fmt.Errorf("corpus unavailable: %w", errors.Join(failed...))
	}

	merged := similarity.Merge(limit, lists...)
	out := make([]models.Match, len(merged))
	for i, m := range merged {
		out[i] = m.Evidence()
	}
	return out, nil
}

// Summary reports the corpus state
func (p *Processor) Summary(ctx context.Context) models.CorpusSummary {
	return p.corpus.Summary(ctx)
}

// Flush waits for queued team records to be written
func (p *Processor) Flush(ctx context.Context) error {
	if p.learner == nil {
		return nil
	}
	return p.learner.Flush(ctx)
}

// Close drains team learning and releases the store
func (p *Processor) Close(ctx context.Context) error {
	var errs []error
	if p.learner != nil {
		if err := p.learner.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to drain team learner: %w", err))
		}
	}
	if err := p.kv.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}
	return errors.Join(errs...)
}
