package processor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

// ReportMarker tags risk comments so later runs edit them in place
const ReportMarker = "<!-- gh-riskradar:report -->"

// factorOrder fixes the row order of the factor table
var factorOrder = []string{
	models.FactorSimilarityToQuality,
	models.FactorSimilarityToRisky,
	models.FactorSimilarityToTeam,
	models.FactorSizeRatio,
	models.FactorFilesRatio,
	models.FactorTitleRatio,
	models.FactorSizePenalty,
	models.FactorFilesPenalty,
	models.FactorTitlePenalty,
	models.FactorSizeTerm,
	models.FactorFilesTerm,
	models.FactorShortTitle,
	models.FactorShortDescription,
	models.FactorSensitiveFiles,
}

// FormatRiskComment renders a result as a markdown PR comment
func FormatRiskComment(result *models.RiskResult, suggestions []string) string {
	if result == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(ReportMarker + "\n")
	sb.WriteString(fmt.Sprintf("### %s PR risk: %s (%.2f)\n\n", levelBadge(result.RiskLevel), result.RiskLevel, result.RiskScore))

	if len(result.SimilarPRs) > 0 {
		sb.WriteString("Most similar changes in the corpus:\n\n")
		sb.WriteString("| Change | Similarity | Label | Source |\n")
		sb.WriteString("|--------|------------|-------|--------|\n")
		for _, m := range result.SimilarPRs {
			title := m.Title
			if title == "" {
				title = m.SourceID
			}
			sb.WriteString(fmt.Sprintf("| %s | %.0f%% | %s | %s |\n",
				escapeCell(truncateString(title, 60)), m.Similarity*100, labelBadge(m.QualityLabel), m.Origin))
		}
		sb.WriteString("\n")
	}

	if len(suggestions) > 0 {
		sb.WriteString("**Suggestions**\n\n")
		for _, s := range suggestions {
			sb.WriteString("- " + s + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("<details><summary>Score breakdown</summary>\n\n")
	sb.WriteString("| Factor | Value |\n")
	sb.WriteString("|--------|-------|\n")
	for _, key := range factorOrder {
		if v, ok := result.Factors[key]; ok {
			sb.WriteString(fmt.Sprintf("| %s | %.3f |\n", key, v))
		}
	}
	sb.WriteString("\n</details>\n\n")

	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("<sub>🛰️ gh-riskradar · model %s · %d corpus documents</sub>", result.ModelID, result.CorpusSizeUsed))
	return sb.String()
}

func levelBadge(level models.RiskLevel) string {
	switch level {
	case models.RiskLow:
		return "🟢"
	case models.RiskMedium:
		return "🟡"
	default:
		return "🔴"
	}
}

func labelBadge(label models.Label) string {
	switch label {
	case models.LabelQuality:
		return "✅ quality"
	case models.LabelRisky:
		return "⚠️ risky"
	default:
		return "team"
	}
}

// truncateString truncates a string to maxLen runes with ellipsis
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
