package processor

import (
	"context"

	"github.com/Kavirubc/gh-riskradar/internal/corpus"
	"github.com/Kavirubc/gh-riskradar/internal/learning"
	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

// corpusView is the corpus as this process sees it: team documents still
// queued in the learner count as part of the team collection.
type corpusView struct {
	*corpus.Store
	learner *learning.TeamLearner
}

// LoadTeam returns the stored team documents followed by the pending ones
// the store does not hold yet
func (v corpusView) LoadTeam(ctx context.Context) ([]models.Document, error) {
	if v.learner == nil {
		return v.Store.LoadTeam(ctx)
	}

	// Pending is read first: a document settled in between is then found
	// in the store.
	pending := v.learner.Pending()
	stored, err := v.Store.LoadTeam(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return stored, nil
	}

	type key struct {
		id string
		at int64
	}
	seen := make(map[key]bool, len(stored))
	for _, d := range stored {
		seen[key{d.SourceID, d.RecordedAt.UnixNano()}] = true
	}
	for _, d := range pending {
		if !seen[key{d.SourceID, d.RecordedAt.UnixNano()}] {
			stored = append(stored, d)
		}
	}
	return stored, nil
}
