package models

import (
	"fmt"
	"time"
)

// Label is the quality label of a corpus document
type Label string

const (
	LabelQuality   Label = "quality"
	LabelRisky     Label = "risky"
	LabelUnlabeled Label = "unlabeled"
)

// Valid reports whether l is a known label
func (l Label) Valid() bool {
	switch l {
	case LabelQuality, LabelRisky, LabelUnlabeled:
		return true
	}
	return false
}

// Origin records where a corpus document came from
type Origin string

const (
	OriginSeed Origin = "seed"
	OriginTeam Origin = "team"
)

// Document is one historical PR held in a corpus collection
type Document struct {
	SourceID   string    `json:"source_id"`
	Record     PRRecord  `json:"record"`
	Vector     Vector    `json:"vector,omitempty"`
	Label      Label     `json:"quality_label"`
	Origin     Origin    `json:"origin"`
	RecordedAt time.Time `json:"recorded_at,omitzero"`
}

// String returns a short human readable identifier
func (d *Document) String() string {
	return fmt.Sprintf("%s/%s:%s", d.Origin, d.Label, d.SourceID)
}

// BenchmarkStats holds seed-quality averages used as the size and shape baseline
type BenchmarkStats struct {
	AvgAdditions    float64 `json:"avg_additions"`
	AvgDeletions    float64 `json:"avg_deletions"`
	AvgChangedFiles float64 `json:"avg_changed_files"`
	AvgTitleLength  float64 `json:"avg_title_length"`
	SampleSize      int     `json:"sample_size"`
}

// Valid reports whether the stats came from at least one document
func (s *BenchmarkStats) Valid() bool {
	return s != nil && s.SampleSize > 0
}
