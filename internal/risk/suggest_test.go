package risk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

func containsSnippet(list []string, snippet string) bool {
	for _, s := range list {
		if strings.Contains(s, snippet) {
			return true
		}
	}
	return false
}

func TestSuggest(t *testing.T) {
	longDescription := strings.Repeat("Explains the change in detail. ", 3)

	tests := []struct {
		name    string
		pr      models.PRRecord
		result  *models.RiskResult
		want    []string
		notWant []string
	}{
		{
			name:    "clean change",
			pr:      models.PRRecord{Title: "Add pagination to the audit log endpoint", Description: longDescription},
			result:  &models.RiskResult{Factors: map[string]float64{}},
			notWant: []string{"splitting", "title", "description", "sensitive", "risky"},
		},
		{
			name: "large change",
			pr:   models.PRRecord{Title: "Big", Description: longDescription, Additions: 900, ChangedFiles: 30},
			result: &models.RiskResult{Factors: map[string]float64{
				models.FactorSizePenalty:  0.2,
				models.FactorSizeRatio:    6,
				models.FactorFilesPenalty: 0.15,
				models.FactorTitlePenalty: 0.1,
			}},
			want: []string{"splitting", "900 changed lines", "30 files", "descriptive title"},
		},
		{
			name:   "short description",
			pr:     models.PRRecord{Title: "Add pagination to the audit log endpoint", Description: "wip"},
			result: &models.RiskResult{Factors: map[string]float64{}},
			want:   []string{"Add a description"},
		},
		{
			name:   "sensitive paths",
			pr:     models.PRRecord{Title: "Add pagination", Description: longDescription, Files: []string{"pkg/auth/session.go", "docs/index.md"}},
			result: &models.RiskResult{Factors: map[string]float64{}},
			want:   []string{"authentication", "pkg/auth/session.go"},
		},
		{
			name: "strong risky evidence",
			pr:   models.PRRecord{Title: "Add pagination", Description: longDescription},
			result: &models.RiskResult{
				Factors: map[string]float64{},
				SimilarPRs: []models.Match{
					{SourceID: "seed-q-001", Similarity: 0.9, QualityLabel: models.LabelQuality},
					{SourceID: "seed-r-004", Title: "Drop unused columns", Similarity: 0.62, QualityLabel: models.LabelRisky},
				},
			},
			want: []string{"Drop unused columns", "62%"},
		},
		{
			name: "weak risky evidence",
			pr:   models.PRRecord{Title: "Add pagination", Description: longDescription},
			result: &models.RiskResult{
				Factors:    map[string]float64{},
				SimilarPRs: []models.Match{{SourceID: "seed-r-004", Similarity: 0.2, QualityLabel: models.LabelRisky}},
			},
			notWant: []string{"known risky"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.pr, tt.result)
			for _, w := range tt.want {
				assert.True(t, containsSnippet(got, w), "missing %q in %v", w, got)
			}
			for _, w := range tt.notWant {
				assert.False(t, containsSnippet(got, w), "unexpected %q in %v", w, got)
			}
		})
	}
}

func TestSuggest_NilResult(t *testing.T) {
	assert.Nil(t, Suggest(models.PRRecord{}, nil))
}

func TestSensitiveAreas(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"internal/auth/middleware.go", []string{"authentication"}},
		{"services/billing/charge.go", []string{"payments"}},
		{"web/admin/users.tsx", []string{"privileges"}},
		{".env.production", []string{"configuration"}},
		{"app/settings.py", []string{"configuration"}},
		{"db/migrations/0004_add_index.sql", []string{"migrations"}},
		{"cmd/server/main.go", nil},
		{"environment.md", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SensitiveAreas(tt.path), tt.path)
	}
}
