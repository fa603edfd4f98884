package github

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

// Event represents a GitHub Actions pull_request event payload
type Event struct {
	Action      string       `json:"action"`
	Number      int          `json:"number"`
	PullRequest *PullRequest `json:"pull_request"`
	Repo        *EventRepo   `json:"repository"`
}

// EventRepo represents repository data in an event
type EventRepo struct {
	FullName string `json:"full_name"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
	Name string `json:"name"`
}

// ParseEventFile reads and parses a GitHub event JSON file
func ParseEventFile(path string) (*Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}

	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to parse event JSON: %w", err)
	}

	return &event, nil
}

// IsPullRequestEvent checks if the payload carries a pull request
func (e *Event) IsPullRequestEvent() bool {
	return e.PullRequest != nil && e.Repo != nil
}

// ShouldScore reports whether the action changes what gets scored
func (e *Event) ShouldScore() bool {
	switch e.Action {
	case "opened", "reopened", "synchronize", "edited", "ready_for_review":
		return true
	}
	return false
}

// Ref returns the pull request the event is about
func (e *Event) Ref() (PRRef, error) {
	if !e.IsPullRequestEvent() {
		return PRRef{}, fmt.Errorf("not a pull request event")
	}
	number := e.PullRequest.Number
	if number == 0 {
		number = e.Number
	}
	return PRRef{Owner: e.Repo.Owner.Login, Repo: e.Repo.Name, Number: number}, nil
}

// ToPRRecord converts the event payload to a PRRecord without file paths
func (e *Event) ToPRRecord() *models.PRRecord {
	if e.PullRequest == nil {
		return nil
	}
	return e.PullRequest.ToModel(nil)
}
