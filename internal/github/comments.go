package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Comment represents a GitHub issue or pull request comment
type Comment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// ListComments fetches comments on a pull request
func (c *Client) ListComments(ctx context.Context, owner, repo string, number int) ([]Comment, error) {
	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d/comments?per_page=100", owner, repo, number)

	var comments []Comment
	if err := c.get(ctx, endpoint, &comments); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}

// PostComment adds a comment to a pull request
func (c *Client) PostComment(ctx context.Context, owner, repo string, number int, body string) error {
	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d/comments", owner, repo, number)
	if err := c.send(ctx, http.MethodPost, endpoint, body); err != nil {
		return fmt.Errorf("failed to post comment: %w", err)
	}
	return nil
}

// UpsertComment edits the comment containing marker, or posts a new one.
// It reports whether an existing comment was updated.
func (c *Client) UpsertComment(ctx context.Context, owner, repo string, number int, marker, body string) (bool, error) {
	comments, err := c.ListComments(ctx, owner, repo, number)
	if err != nil {
		return false, err
	}

	for _, comment := range comments {
		if !strings.Contains(comment.Body, marker) {
			continue
		}
		endpoint := fmt.Sprintf("repos/%s/%s/issues/comments/%d", owner, repo, comment.ID)
		if err := c.send(ctx, http.MethodPatch, endpoint, body); err != nil {
			return false, fmt.Errorf("failed to update comment: %w", err)
		}
		return true, nil
	}

	return false, c.PostComment(ctx, owner, repo, number, body)
}

func (c *Client) send(ctx context.Context, method, endpoint, body string) error {
	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return err
	}
	return wrapHTTPError(c.rest.DoWithContext(ctx, method, endpoint, bytes.NewReader(payload), nil))
}
