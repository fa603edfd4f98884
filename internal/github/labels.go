package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// RiskLabelPrefix prefixes the labels SetRiskLabel manages
const RiskLabelPrefix = "risk:"

// Label represents a GitHub label
type Label struct {
	Name string `json:"name"`
}

// ListLabels fetches the labels on a pull request
func (c *Client) ListLabels(ctx context.Context, owner, repo string, number int) ([]Label, error) {
	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d/labels?per_page=100", owner, repo, number)

	var labels []Label
	if err := c.get(ctx, endpoint, &labels); err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return labels, nil
}

// AddLabels adds labels to a pull request
func (c *Client) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	if len(labels) == 0 {
		return nil
	}

	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d/labels", owner, repo, number)

	payload := map[string][]string{"labels": labels}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := wrapHTTPError(c.rest.DoWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody), nil)); err != nil {
		return fmt.Errorf("failed to add labels: %w", err)
	}

	return nil
}

// RemoveLabel removes a label from a pull request
func (c *Client) RemoveLabel(ctx context.Context, owner, repo string, number int, label string) error {
	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d/labels/%s", owner, repo, number, url.PathEscape(label))

	if err := wrapHTTPError(c.rest.DoWithContext(ctx, http.MethodDelete, endpoint, nil, nil)); err != nil {
		return fmt.Errorf("failed to remove label: %w", err)
	}

	return nil
}

// SetRiskLabel makes "risk:<level>" the only risk label on the pull request
func (c *Client) SetRiskLabel(ctx context.Context, owner, repo string, number int, level string) error {
	want := RiskLabelPrefix + level

	current, err := c.ListLabels(ctx, owner, repo, number)
	if err != nil {
		return err
	}

	present := false
	for _, l := range current {
		if !strings.HasPrefix(l.Name, RiskLabelPrefix) {
			continue
		}
		if l.Name == want {
			present = true
			continue
		}
		if err := c.RemoveLabel(ctx, owner, repo, number, l.Name); err != nil {
			return err
		}
	}

	if present {
		return nil
	}
	return c.AddLabels(ctx, owner, repo, number, []string{want})
}
