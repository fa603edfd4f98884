package corpus

import "github.com/Kavirubc/gh-riskradar/pkg/models"

// ComputeStats averages size and shape over docs. An empty input yields
// zero stats with SampleSize 0.
func ComputeStats(docs []models.Document) models.BenchmarkStats {
	if len(docs) == 0 {
		return models.BenchmarkStats{}
	}

	var adds, dels, files, title float64
	for _, d := range docs {
		adds += float64(d.Record.Additions)
		dels += float64(d.Record.Deletions)
		files += float64(d.Record.ChangedFiles)
		title += float64(d.Record.TitleLength())
	}

	n := float64(len(docs))
	return models.BenchmarkStats{
		AvgAdditions:    adds / n,
		AvgDeletions:    dels / n,
		AvgChangedFiles: files / n,
		AvgTitleLength:  title / n,
		SampleSize:      len(docs),
	}
}
