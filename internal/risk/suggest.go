package risk

import (
	"fmt"
	"strings"

	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

// strongRiskyMatch is the similarity above which a risky match is called out
const strongRiskyMatch = 0.5

// Suggest returns review suggestions for pr based on its result
func Suggest(pr models.PRRecord, result *models.RiskResult) []string {
	if result == nil {
		return nil
	}
	var out []string

	f := result.Factors
	if f[models.FactorSizePenalty] > 0 || f[models.FactorSizeRatio] > 4 {
		out = append(out, fmt.Sprintf("Consider splitting this change: %d changed lines is %.1fx the typical size.",
			pr.TotalChanges(), f[models.FactorSizeRatio]))
	}
	if f[models.FactorFilesPenalty] > 0 || f[models.FactorFilesRatio] > 4 {
		out = append(out, fmt.Sprintf("This change touches %d files; grouping related files into separate PRs eases review.",
			pr.ChangedFiles))
	}
	if f[models.FactorTitlePenalty] > 0 || f[models.FactorShortTitle] > 0 {
		out = append(out, "Use a more descriptive title that states what changes and why.")
	}
	if pr.DescriptionLength() < 50 {
		out = append(out, "Add a description covering the motivation, the approach and how it was tested.")
	}

	if sensitive := SensitiveFiles(pr.Files); len(sensitive) > 0 {
		areas := map[string]bool{}
		var names []string
		for _, path := range sensitive {
			for _, a := range SensitiveAreas(path) {
				if !areas[a] {
					areas[a] = true
					names = append(names, a)
				}
			}
		}
		out = append(out, fmt.Sprintf("Request a focused review of sensitive areas (%s): %s.",
			strings.Join(names, ", "), strings.Join(sensitive, ", ")))
	}

	for _, m := range result.SimilarPRs {
		if m.QualityLabel == models.LabelRisky && m.Similarity >= strongRiskyMatch {
			title := m.Title
			if title == "" {
				title = m.SourceID
			}
			out = append(out, fmt.Sprintf("Closely resembles a known risky change (%q, %.0f%% similar); double-check tests and rollback plan.",
				title, m.Similarity*100))
			break
		}
	}

	return out
}
