package config

import (
	"fmt"
	"strings"

	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors
func Validate(cfg *Config) []error {
	var errs []error

	// Validate storage config
	switch cfg.Storage.Backend {
	case "bolt", "sqlite":
		if cfg.Storage.Path == "" {
			errs = append(errs, ValidationError{"storage.path", "required for file backends"})
		}
	case "qdrant":
		if cfg.Storage.Qdrant.URL == "" {
			errs = append(errs, ValidationError{"storage.qdrant.url", "required when backend is 'qdrant'"})
		} else if !strings.Contains(cfg.Storage.Qdrant.URL, "://") {
			errs = append(errs, ValidationError{"storage.qdrant.url", "must include a scheme, e.g. http://host:6334"})
		}
	case "memory":
	default:
		errs = append(errs, ValidationError{"storage.backend", "must be 'bolt', 'sqlite', 'qdrant' or 'memory'"})
	}
	if cfg.Storage.MaxValueBytes < 1024 {
		errs = append(errs, ValidationError{"storage.max_value_bytes", "must be at least 1024"})
	}

	// Validate corpus config
	if cfg.Corpus.ChunkSize < 1 {
		errs = append(errs, ValidationError{"corpus.chunk_size", "must be positive"})
	}
	if cfg.Corpus.TeamCapacity < 1 {
		errs = append(errs, ValidationError{"corpus.team_capacity", "must be positive"})
	}

	// Validate vectorizer config
	if cfg.Vectorizer.Dimensions < 1 || cfg.Vectorizer.Dimensions > models.MaxVectorDim {
		errs = append(errs, ValidationError{"vectorizer.dimensions", fmt.Sprintf("must be between 1 and %d", models.MaxVectorDim)})
	}
	if cfg.Vectorizer.MinTokenLength < 1 {
		errs = append(errs, ValidationError{"vectorizer.min_token_length", "must be positive"})
	}

	// Validate scoring config
	s := cfg.Scoring
	unitFields := []struct {
		field string
		value float64
	}{
		{"scoring.prior", s.Prior},
		{"scoring.quality_weight", s.QualityWeight},
		{"scoring.risky_weight", s.RiskyWeight},
		{"scoring.team_weight", s.TeamWeight},
		{"scoring.min_similarity", s.MinSimilarity},
	}
	for _, f := range unitFields {
		if f.value < 0 || f.value > 1 {
			errs = append(errs, ValidationError{f.field, "must be between 0 and 1"})
		}
	}
	if s.TopK < 1 {
		errs = append(errs, ValidationError{"scoring.top_k", "must be positive"})
	}
	if s.EvidenceCount < 1 {
		errs = append(errs, ValidationError{"scoring.evidence_count", "must be positive"})
	}
	if s.SizeTermDivisor <= 0 || s.FilesTermDivisor <= 0 {
		errs = append(errs, ValidationError{"scoring", "term divisors must be positive"})
	}

	// Validate baseline config
	if cfg.Baseline.TypicalChanges <= 0 || cfg.Baseline.TypicalFiles <= 0 {
		errs = append(errs, ValidationError{"baseline", "typical_changes and typical_files must be positive"})
	}

	if cfg.Learning.QueueSize < 1 {
		errs = append(errs, ValidationError{"learning.queue_size", "must be positive"})
	}

	// Validate logging config
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{"logging.level", "must be 'debug', 'info', 'warn' or 'error'"})
	}
	if cfg.Logging.Format != "console" && cfg.Logging.Format != "json" {
		errs = append(errs, ValidationError{"logging.format", "must be 'console' or 'json'"})
	}

	// Validate server config
	if cfg.Server.RequestsPerSecond <= 0 {
		errs = append(errs, ValidationError{"server.requests_per_second", "must be positive"})
	}
	if cfg.Server.Burst < 1 {
		errs = append(errs, ValidationError{"server.burst", "must be positive"})
	}

	return errs
}
