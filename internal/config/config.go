package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the full application configuration
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Baseline   BaselineConfig   `yaml:"baseline"`
	Learning   LearningConfig   `yaml:"learning"`
	Logging    LoggingConfig    `yaml:"logging"`
	Server     ServerConfig     `yaml:"server"`
}

// StorageConfig selects and configures the key/value backend
type StorageConfig struct {
	Backend       string       `yaml:"backend"` // "bolt", "sqlite", "qdrant" or "memory"
	Path          string       `yaml:"path"`
	MaxValueBytes int          `yaml:"max_value_bytes"`
	Qdrant        QdrantConfig `yaml:"qdrant"`
}

// QdrantConfig contains Qdrant connection settings
type QdrantConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
}

// CorpusConfig contains corpus layout settings
type CorpusConfig struct {
	ChunkSize       int    `yaml:"chunk_size"`
	TeamCapacity    int    `yaml:"team_capacity"`
	SeedFile        string `yaml:"seed_file,omitempty"`
	DisableAutoInit bool   `yaml:"disable_auto_init"`
}

// VectorizerConfig contains text vectorization settings
type VectorizerConfig struct {
	Dimensions     int `yaml:"dimensions"`
	MinTokenLength int `yaml:"min_token_length"`
}

// ScoringConfig contains the hybrid scoring weights and thresholds
type ScoringConfig struct {
	Prior               float64 `yaml:"prior"`
	QualityWeight       float64 `yaml:"quality_weight"`
	RiskyWeight         float64 `yaml:"risky_weight"`
	TeamWeight          float64 `yaml:"team_weight"`
	TopK                int     `yaml:"top_k"`
	EvidenceCount       int     `yaml:"evidence_count"`
	MinSimilarity       float64 `yaml:"min_similarity"`
	SizeRatioThreshold  float64 `yaml:"size_ratio_threshold"`
	FilesRatioThreshold float64 `yaml:"files_ratio_threshold"`
	TitleRatioThreshold float64 `yaml:"title_ratio_threshold"`
	SizePenalty         float64 `yaml:"size_penalty"`
	FilesPenalty        float64 `yaml:"files_penalty"`
	TitlePenalty        float64 `yaml:"title_penalty"`
	SizeTermDivisor     float64 `yaml:"size_term_divisor"`
	SizeTermCap         float64 `yaml:"size_term_cap"`
	FilesTermDivisor    float64 `yaml:"files_term_divisor"`
	FilesTermCap        float64 `yaml:"files_term_cap"`
}

// BaselineConfig contains the corpus-free fallback heuristic settings
type BaselineConfig struct {
	TypicalChanges       float64 `yaml:"typical_changes"`
	TypicalFiles         float64 `yaml:"typical_files"`
	SizeWeight           float64 `yaml:"size_weight"`
	FilesWeight          float64 `yaml:"files_weight"`
	TitleWeight          float64 `yaml:"title_weight"`
	DescriptionWeight    float64 `yaml:"description_weight"`
	MinTitleLength       int     `yaml:"min_title_length"`
	MinDescriptionLength int     `yaml:"min_description_length"`
}

// LearningConfig contains team learning settings
type LearningConfig struct {
	Disabled  bool `yaml:"disabled"`
	QueueSize int  `yaml:"queue_size"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Addr              string  `yaml:"addr"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	MaxBodyBytes      int64   `yaml:"max_body_bytes"`
}

// Default returns a config with every default applied
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Load reads and parses config from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	expandConfigEnvVars(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// LoadOrDefault loads the config at path, or returns defaults when path is empty
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// FindConfigPath looks for config in common locations
func FindConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	// Check common locations
	paths := []string{
		".github/riskradar.yaml",
		".github/riskradar.yml",
		"riskradar.yaml",
		"riskradar.yml",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	// Check home directory
	if home, err := os.UserHomeDir(); err == nil {
		homePath := filepath.Join(home, ".config", "gh-riskradar", "config.yaml")
		if _, err := os.Stat(homePath); err == nil {
			return homePath
		}
	}

	return ""
}

// defaultStoragePath returns the bolt/sqlite file location under the user config dir
func defaultStoragePath(backend string) string {
	name := "corpus.db"
	if backend == "sqlite" {
		name = "corpus.sqlite"
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "gh-riskradar", name)
	}
	return name
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "bolt"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultStoragePath(cfg.Storage.Backend)
	}
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	if cfg.Storage.MaxValueBytes == 0 {
		cfg.Storage.MaxValueBytes = 1 << 20
	}
	if cfg.Storage.Qdrant.URL == "" {
		cfg.Storage.Qdrant.URL = "http://localhost:6334"
	}
	if cfg.Storage.Qdrant.Collection == "" {
		cfg.Storage.Qdrant.Collection = "riskradar_kv"
	}

	if cfg.Corpus.ChunkSize == 0 {
		cfg.Corpus.ChunkSize = 50
	}
	if cfg.Corpus.TeamCapacity == 0 {
		cfg.Corpus.TeamCapacity = 500
	}

	if cfg.Vectorizer.Dimensions == 0 {
		cfg.Vectorizer.Dimensions = 256
	}
	if cfg.Vectorizer.MinTokenLength == 0 {
		cfg.Vectorizer.MinTokenLength = 3
	}

	// Scoring defaults. TeamWeight stays 0: team matches are evidence only.
	s := &cfg.Scoring
	if s.Prior == 0 {
		s.Prior = 0.5
	}
	if s.QualityWeight == 0 {
		s.QualityWeight = 0.3
	}
	if s.RiskyWeight == 0 {
		s.RiskyWeight = 0.3
	}
	if s.TopK == 0 {
		s.TopK = 20
	}
	if s.EvidenceCount == 0 {
		s.EvidenceCount = 5
	}
	if s.MinSimilarity == 0 {
		s.MinSimilarity = 0.01
	}
	if s.SizeRatioThreshold == 0 {
		s.SizeRatioThreshold = 2
	}
	if s.FilesRatioThreshold == 0 {
		s.FilesRatioThreshold = 2
	}
	if s.TitleRatioThreshold == 0 {
		s.TitleRatioThreshold = 0.5
	}
	if s.SizePenalty == 0 {
		s.SizePenalty = 0.2
	}
	if s.FilesPenalty == 0 {
		s.FilesPenalty = 0.15
	}
	if s.TitlePenalty == 0 {
		s.TitlePenalty = 0.1
	}
	if s.SizeTermDivisor == 0 {
		s.SizeTermDivisor = 1000
	}
	if s.SizeTermCap == 0 {
		s.SizeTermCap = 0.3
	}
	if s.FilesTermDivisor == 0 {
		s.FilesTermDivisor = 50
	}
	if s.FilesTermCap == 0 {
		s.FilesTermCap = 0.2
	}

	b := &cfg.Baseline
	if b.TypicalChanges == 0 {
		b.TypicalChanges = 150
	}
	if b.TypicalFiles == 0 {
		b.TypicalFiles = 8
	}
	if b.SizeWeight == 0 {
		b.SizeWeight = 0.35
	}
	if b.FilesWeight == 0 {
		b.FilesWeight = 0.25
	}
	if b.TitleWeight == 0 {
		b.TitleWeight = 0.2
	}
	if b.DescriptionWeight == 0 {
		b.DescriptionWeight = 0.2
	}
	if b.MinTitleLength == 0 {
		b.MinTitleLength = 10
	}
	if b.MinDescriptionLength == 0 {
		b.MinDescriptionLength = 50
	}

	if cfg.Learning.QueueSize == 0 {
		cfg.Learning.QueueSize = 64
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.RequestsPerSecond == 0 {
		cfg.Server.RequestsPerSecond = 10
	}
	if cfg.Server.Burst == 0 {
		cfg.Server.Burst = 20
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	// Learning is enabled and auto-init is on by default (zero values)
}
