// Package similarity ranks corpus documents against a query vector.
package similarity

import (
	"sort"

	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

// Match is a scored corpus document
type Match struct {
	Document   models.Document
	Similarity float64
}

// Evidence converts the match to its result form
func (m Match) Evidence() models.Match {
	return models.Match{
		SourceID:     m.Document.SourceID,
		Title:        m.Document.Record.Title,
		Similarity:   m.Similarity,
		Origin:       m.Document.Origin,
		QualityLabel: m.Document.Label,
	}
}

// Cosine returns the dot product of two normalized vectors clamped to
// [0,1]. Vectors of different length score 0.
func Cosine(a, b models.Vector) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}

	switch {
	case dot < 0:
		return 0
	case dot > 1:
		return 1
	}
	return dot
}

// TopK scores every document against query and returns at most k matches
// with similarity >= threshold, highest first. Equal scores keep the order
// of docs. k <= 0 means no limit.
func TopK(query models.Vector, docs []models.Document, k int, threshold float64) []Match {
	matches := make([]Match, 0, len(docs))
	for _, doc := range docs {
		score := Cosine(query, doc.Vector)
		if score < threshold {
			continue
		}
		matches = append(matches, Match{Document: doc, Similarity: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// Merge combines match lists, ranks them with a stable sort (earlier lists
// win ties) and keeps at most k.
func Merge(k int, lists ...[]Match) []Match {
	var merged []Match
	for _, l := range lists {
		merged = append(merged, l...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})

	if k > 0 && len(merged) > k {
		merged = merged[:k]
	}
	return merged
}

// Mean returns the average similarity, or 0 for no matches
func Mean(matches []Match) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.Similarity
	}
	return sum / float64(len(matches))
}
