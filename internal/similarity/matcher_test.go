package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

func doc(id string, v ...float32) models.Document {
	return models.Document{SourceID: id, Vector: v, Label: models.LabelQuality, Origin: models.OriginSeed}
}

func ids(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Document.SourceID
	}
	return out
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b models.Vector
		want float64
	}{
		{"identical", models.Vector{0.6, 0.8}, models.Vector{0.6, 0.8}, 1},
		{"orthogonal", models.Vector{1, 0}, models.Vector{0, 1}, 0},
		{"negative clamps to zero", models.Vector{1, 0}, models.Vector{-1, 0}, 0},
		{"zero vector", models.Vector{0, 0}, models.Vector{0.6, 0.8}, 0},
		{"dimension mismatch", models.Vector{1, 0}, models.Vector{1, 0, 0}, 0},
		{"partial", models.Vector{1, 0}, models.Vector{0.6, 0.8}, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-6)
		})
	}
}

func TestTopK_OrderAndLimit(t *testing.T) {
	q := models.Vector{1, 0}
	docs := []models.Document{
		doc("low", 0.2, 0.9798),
		doc("high", 0.9, 0.4359),
		doc("mid", 0.5, 0.866),
	}

	got := TopK(q, docs, 2, 0)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"high", "mid"}, ids(got))
	assert.GreaterOrEqual(t, got[0].Similarity, got[1].Similarity)
}

func TestTopK_StableTies(t *testing.T) {
	q := models.Vector{1, 0}
	docs := []models.Document{
		doc("a", 0.5, 0.866),
		doc("b", 1, 0),
		doc("c", 0.5, 0.866),
		doc("d", 0.5, 0.866),
	}

	got := TopK(q, docs, 10, 0)
	assert.Equal(t, []string{"b", "a", "c", "d"}, ids(got))
}

func TestTopK_Threshold(t *testing.T) {
	q := models.Vector{1, 0}
	docs := []models.Document{
		doc("zero", 0, 1),
		doc("some", 0.3, 0.954),
	}

	assert.Equal(t, []string{"some", "zero"}, ids(TopK(q, docs, 0, 0)))
	assert.Equal(t, []string{"some"}, ids(TopK(q, docs, 0, 0.01)))
}

func TestTopK_Empty(t *testing.T) {
	assert.Empty(t, TopK(models.Vector{1, 0}, nil, 5, 0))
}

func TestMerge(t *testing.T) {
	quality := []Match{{Document: doc("q1"), Similarity: 0.8}, {Document: doc("q2"), Similarity: 0.4}}
	risky := []Match{{Document: doc("r1"), Similarity: 0.8}, {Document: doc("r2"), Similarity: 0.6}}
	team := []Match{{Document: doc("t1"), Similarity: 0.9}}

	got := Merge(4, quality, risky, team)
	assert.Equal(t, []string{"t1", "q1", "r1", "r2"}, ids(got))
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 0.5, Mean([]Match{{Similarity: 0.25}, {Similarity: 0.75}}), 1e-12)
}

func TestEvidence(t *testing.T) {
	d := doc("seed-r-001", 1, 0)
	d.Label = models.LabelRisky
	d.Record.Title = "Disable auth check"

	e := Match{Document: d, Similarity: 0.42}.Evidence()
	assert.Equal(t, models.Match{
		SourceID:     "seed-r-001",
		Title:        "Disable auth check",
		Similarity:   0.42,
		Origin:       models.OriginSeed,
		QualityLabel: models.LabelRisky,
	}, e)
}
