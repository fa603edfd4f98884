// Package corpus stores the seed and team collections on a size-limited
// key/value backend.
//
// The seed-quality collection is split into fixed-size chunks indexed by a
// manifest that is written last; its presence marks the corpus as
// initialized. Seed-risky, the benchmark stats and the team list are one
// entry each. The team list is a capped FIFO updated by read-modify-write,
// which is serialized within one process but not across processes.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Kavirubc/gh-riskradar/internal/kv"
	"github.com/Kavirubc/gh-riskradar/internal/logging"
	"github.com/Kavirubc/gh-riskradar/internal/vectorize"
	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

var (
	// ErrNotInitialized is returned when the seed corpus has not been written
	ErrNotInitialized = errors.New("corpus not initialized")
	// ErrChunkManifestMismatch is returned when chunks disagree with the manifest
	ErrChunkManifestMismatch = errors.New("chunk manifest mismatch")
	// ErrUndecodable is returned when a stored entry is not valid corpus JSON
	ErrUndecodable = errors.New("undecodable corpus entry")
)

const (
	prefixQuality = "seed/quality"
	keyRisky      = "seed/risky"
	keyStats      = "seed/stats"
	keyTeam       = "team/documents"
)

// Options configures the corpus layout
type Options struct {
	ChunkSize    int
	TeamCapacity int
}

// teamList is the stored form of the team collection, oldest first
type teamList struct {
	Documents []models.Document `json:"documents"`
}

// Store reads and writes the corpus collections
type Store struct {
	kv     kv.Store
	vec    *vectorize.Vectorizer
	opts   Options
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	quality []models.Document
	risky   []models.Document
	stats   *models.BenchmarkStats

	writeMu sync.Mutex
}

// NewStore creates a corpus store over an open key/value backend
func NewStore(store kv.Store, vec *vectorize.Vectorizer, opts Options, logger *zap.Logger) *Store {
	if opts.ChunkSize < 1 {
		opts.ChunkSize = 50
	}
	if opts.TeamCapacity < 1 {
		opts.TeamCapacity = 500
	}
	return &Store{
		kv:     store,
		vec:    vec,
		opts:   opts,
		logger: logging.OrNop(logger),
		now:    time.Now,
	}
}

// Initialized reports whether the quality manifest exists
func (s *Store) Initialized(ctx context.Context) (bool, error) {
	_, err := readManifest(ctx, s.kv, prefixQuality)
	if errors.Is(err, ErrNotInitialized) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Initialize writes the seed collections unless they already exist.
// It reports whether anything was written.
func (s *Store) Initialize(ctx context.Context, seed *Seed) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ok, err := s.Initialized(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}

	if err := s.writeSeed(ctx, seed); err != nil {
		return false, err
	}
	return true, nil
}

// Reseed rewrites the seed collections and stats. The team list is kept.
func (s *Store) Reseed(ctx context.Context, seed *Seed) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.writeSeed(ctx, seed)
}

func (s *Store) writeSeed(ctx context.Context, seed *Seed) (err error) {
	defer func() {
		if err != nil {
			SeedWrites.WithLabelValues("error").Inc()
		} else {
			SeedWrites.WithLabelValues("success").Inc()
		}

		s.mu.Lock()
		s.quality, s.risky, s.stats = nil, nil, nil
		s.mu.Unlock()
	}()

	quality := seed.QualityDocuments()
	risky := seed.RiskyDocuments()
	stats := ComputeStats(quality)

	if err := s.setJSON(ctx, keyRisky, risky); err != nil {
		return fmt.Errorf("failed to write risky collection: %w", err)
	}

	if _, err := s.kv.Get(ctx, keyTeam); errors.Is(err, kv.ErrNotFound) {
		if err := s.setJSON(ctx, keyTeam, teamList{Documents: []models.Document{}}); err != nil {
			return fmt.Errorf("failed to write team collection: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to check team collection: %w", err)
	}

	// The quality manifest is the initialization marker. Stats describe the
	// quality set, so the old entry is dropped first and the new one written
	// only once that set is committed; until then Stats recomputes.
	if err := s.kv.Delete(ctx, keyStats); err != nil && !errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("failed to clear stats: %w", err)
	}
	cur, prev, err := writeChunked(ctx, s.kv, prefixQuality, quality, s.opts.ChunkSize, s.now())
	if err != nil {
		return fmt.Errorf("failed to write quality collection: %w", err)
	}
	if prev != nil {
		if err := deleteChunks(ctx, s.kv, prefixQuality, prev); err != nil {
			s.logger.Warn("failed to remove stale quality chunks",
				zap.Int("generation", prev.Generation), zap.Error(err))
		}
	}

	if err := s.setJSON(ctx, keyStats, stats); err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}

	s.logger.Info("seed corpus written",
		zap.Int("quality", len(quality)),
		zap.Int("risky", len(risky)),
		zap.Int("chunks", cur.Chunks),
		zap.Int("generation", cur.Generation))
	return nil
}

// LoadQuality returns the seed-quality collection in stored order
func (s *Store) LoadQuality(ctx context.Context) ([]models.Document, error) {
	s.mu.RLock()
	cached := s.quality
	s.mu.RUnlock()
	if cached != nil {
		return slices.Clone(cached), nil
	}

	docs, err := readChunked(ctx, s.kv, prefixQuality)
	if err != nil {
		Unavailable.WithLabelValues("quality").Inc()
		return nil, err
	}
	s.attachVectors(docs)

	s.mu.Lock()
	s.quality = docs
	s.mu.Unlock()
	return slices.Clone(docs), nil
}

// LoadRisky returns the seed-risky collection in stored order
func (s *Store) LoadRisky(ctx context.Context) ([]models.Document, error) {
	s.mu.RLock()
	cached := s.risky
	s.mu.RUnlock()
	if cached != nil {
		return slices.Clone(cached), nil
	}

	var docs []models.Document
	if err := s.getJSON(ctx, keyRisky, &docs); err != nil {
		Unavailable.WithLabelValues("risky").Inc()
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("failed to read risky collection: %w", err)
	}
	if docs == nil {
		docs = []models.Document{}
	}
	s.attachVectors(docs)

	s.mu.Lock()
	s.risky = docs
	s.mu.Unlock()
	return slices.Clone(docs), nil
}

// LoadTeam returns the team collection, oldest first. It is read fresh on
// every call since other processes may append to it.
func (s *Store) LoadTeam(ctx context.Context) ([]models.Document, error) {
	var list teamList
	if err := s.getJSON(ctx, keyTeam, &list); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		Unavailable.WithLabelValues("team").Inc()
		return nil, fmt.Errorf("failed to read team collection: %w", err)
	}
	s.attachVectors(list.Documents)
	return list.Documents, nil
}

// AppendTeam adds doc to the end of the team list, evicting from the front
// when the list exceeds its capacity or the store's value size limit.
func (s *Store) AppendTeam(ctx context.Context, doc models.Document) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	docs, err := s.LoadTeam(ctx)
	if errors.Is(err, ErrUndecodable) {
		TeamResets.Inc()
		s.logger.Warn("team collection undecodable, starting a fresh list", zap.Error(err))
		docs = nil
	} else if err != nil {
		return err
	}

	if len(doc.Vector) != s.vec.Dimensions() {
		doc.Vector = s.vec.Vectorize(doc.Record.Text())
	}
	docs = append(docs, doc)

	if over := len(docs) - s.opts.TeamCapacity; over > 0 {
		docs = docs[over:]
		TeamEvictions.WithLabelValues("capacity").Add(float64(over))
	}

	data, err := json.Marshal(teamList{Documents: docs})
	if err != nil {
		return fmt.Errorf("failed to encode team collection: %w", err)
	}

	limit := s.kv.MaxValueSize()
	for limit > 0 && len(data) > limit && len(docs) > 1 {
		drop := max(1, len(docs)/10)
		if drop >= len(docs) {
			drop = len(docs) - 1
		}
		docs = docs[drop:]
		TeamEvictions.WithLabelValues("size_limit").Add(float64(drop))

		if data, err = json.Marshal(teamList{Documents: docs}); err != nil {
			return fmt.Errorf("failed to encode team collection: %w", err)
		}
	}

	if err := s.kv.Set(ctx, keyTeam, data); err != nil {
		return fmt.Errorf("failed to write team collection: %w", err)
	}
	TeamDocuments.Set(float64(len(docs)))
	return nil
}

// Stats returns the benchmark stats. When the stored entry is missing or
// undecodable they are computed from the quality collection without being written back.
func (s *Store) Stats(ctx context.Context) (models.BenchmarkStats, error) {
	s.mu.RLock()
	cached := s.stats
	s.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	var stats models.BenchmarkStats
	err := s.getJSON(ctx, keyStats, &stats)
	switch {
	case err == nil:
	case errors.Is(err, kv.ErrNotFound), errors.Is(err, ErrUndecodable):
		quality, qErr := s.LoadQuality(ctx)
		if qErr != nil {
			return models.BenchmarkStats{}, fmt.Errorf("stats unavailable: %w", qErr)
		}
		stats = ComputeStats(quality)
		s.logger.Warn("stats entry unusable, computed from quality collection",
			zap.Int("sample_size", stats.SampleSize), zap.Error(err))
	default:
		Unavailable.WithLabelValues("stats").Inc()
		return models.BenchmarkStats{}, fmt.Errorf("failed to read stats: %w", err)
	}

	s.mu.Lock()
	s.stats = &stats
	s.mu.Unlock()
	return stats, nil
}

// Summary reports collection sizes; unreadable collections are listed by name
func (s *Store) Summary(ctx context.Context) models.CorpusSummary {
	var sum models.CorpusSummary

	ok, err := s.Initialized(ctx)
	sum.Initialized = ok && err == nil

	if docs, err := s.LoadQuality(ctx); err == nil {
		sum.QualityCount = len(docs)
	} else {
		sum.Unavailable = append(sum.Unavailable, "quality")
	}
	if docs, err := s.LoadRisky(ctx); err == nil {
		sum.RiskyCount = len(docs)
	} else {
		sum.Unavailable = append(sum.Unavailable, "risky")
	}
	if docs, err := s.LoadTeam(ctx); err == nil {
		sum.TeamCount = len(docs)
	} else {
		sum.Unavailable = append(sum.Unavailable, "team")
	}
	if stats, err := s.Stats(ctx); err == nil && stats.Valid() {
		sum.Benchmark = &stats
	}
	return sum
}

// attachVectors fills in vectors that are missing or of another dimensionality
func (s *Store) attachVectors(docs []models.Document) {
	dims := s.vec.Dimensions()
	for i := range docs {
		if len(docs[i].Vector) != dims {
			docs[i].Vector = s.vec.Vectorize(docs[i].Record.Text())
		}
	}
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, data)
}

func (s *Store) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w %s: %v", ErrUndecodable, key, err)
	}
	return nil
}
