package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

const (
	filesPerPage = 100
	// GitHub stops listing files after 3000
	maxFilePages = 30
)

// PullRequest represents a GitHub pull request from the API
type PullRequest struct {
	Number       int       `json:"number"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	State        string    `json:"state"`
	HTMLURL      string    `json:"html_url"`
	User         User      `json:"user"`
	Additions    int       `json:"additions"`
	Deletions    int       `json:"deletions"`
	ChangedFiles int       `json:"changed_files"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// User represents a GitHub user
type User struct {
	Login string `json:"login"`
}

// PullRequestFile is one entry of the pull request files listing
type PullRequestFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// ToModel converts the API pull request and its file paths to a PRRecord
func (p *PullRequest) ToModel(files []string) *models.PRRecord {
	return &models.PRRecord{
		Title:        p.Title,
		Description:  p.Body,
		Additions:    p.Additions,
		Deletions:    p.Deletions,
		ChangedFiles: p.ChangedFiles,
		Files:        files,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// GetPullRequest fetches a pull request with its changed file paths
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*models.PRRecord, error) {
	endpoint := fmt.Sprintf("repos/%s/%s/pulls/%d", owner, repo, number)

	var pr PullRequest
	if err := c.get(ctx, endpoint, &pr); err != nil {
		return nil, fmt.Errorf("failed to get pull request: %w", err)
	}

	files, err := c.ListPullRequestFiles(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Filename
	}
	return pr.ToModel(paths), nil
}

// ListPullRequestFiles fetches every changed file using pagination
func (c *Client) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]PullRequestFile, error) {
	var all []PullRequestFile

	for page := 1; page <= maxFilePages; page++ {
		params := url.Values{}
		params.Set("per_page", strconv.Itoa(filesPerPage))
		params.Set("page", strconv.Itoa(page))
		endpoint := fmt.Sprintf("repos/%s/%s/pulls/%d/files?%s", owner, repo, number, params.Encode())

		var files []PullRequestFile
		if err := c.get(ctx, endpoint, &files); err != nil {
			return nil, fmt.Errorf("failed to list pull request files: %w", err)
		}

		all = append(all, files...)
		if len(files) < filesPerPage {
			break
		}
	}

	return all, nil
}
