package corpus

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

//go:embed seed/seed.yaml
var bundledSeed []byte

// SeedEntry is one labelled historical PR in a seed file
type SeedEntry struct {
	ID              string `yaml:"id"`
	models.PRRecord `yaml:",inline"`
}

// Seed is the labelled dataset the quality and risky collections start from
type Seed struct {
	Version string      `yaml:"version"`
	Quality []SeedEntry `yaml:"quality"`
	Risky   []SeedEntry `yaml:"risky"`
}

// BundledSeed returns the dataset shipped with the binary
func BundledSeed() (*Seed, error) {
	return ParseSeed(bundledSeed)
}

// LoadSeedFile reads a seed dataset from a YAML or JSON file
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and checks a seed dataset
func ParseSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}

	seen := make(map[string]bool)
	for _, group := range [][]SeedEntry{s.Quality, s.Risky} {
		for i, e := range group {
			if err := e.PRRecord.Validate(); err != nil {
				return nil, fmt.Errorf("seed entry %q: %w", e.ID, err)
			}
			if e.ID == "" {
				continue
			}
			if seen[e.ID] {
				return nil, fmt.Errorf("duplicate seed id %q at index %d", e.ID, i)
			}
			seen[e.ID] = true
		}
	}
	return &s, nil
}

// QualityDocuments returns the quality entries as corpus documents
func (s *Seed) QualityDocuments() []models.Document {
	return toDocuments(s.Quality, models.LabelQuality, "seed-q")
}

// RiskyDocuments returns the risky entries as corpus documents
func (s *Seed) RiskyDocuments() []models.Document {
	return toDocuments(s.Risky, models.LabelRisky, "seed-r")
}

// toDocuments keeps entry order; vectors are filled in lazily on load
func toDocuments(entries []SeedEntry, label models.Label, idPrefix string) []models.Document {
	docs := make([]models.Document, len(entries))
	for i, e := range entries {
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("%s-%03d", idPrefix, i+1)
		}
		docs[i] = models.Document{
			SourceID: id,
			Record:   e.PRRecord,
			Label:    label,
			Origin:   models.OriginSeed,
		}
	}
	return docs
}
