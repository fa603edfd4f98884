package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
)

// ErrNotFound is returned when the repository or pull request does not exist
var ErrNotFound = errors.New("not found on GitHub")

// restClient is the subset of api.RESTClient the client uses
type restClient interface {
	DoWithContext(ctx context.Context, method string, path string, body io.Reader, response interface{}) error
}

// Client wraps GitHub API operations
type Client struct {
	rest restClient
}

// NewClient creates a client authenticated the way the gh CLI is
func NewClient() (*Client, error) {
	rest, err := api.DefaultRESTClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create REST client: %w", err)
	}
	return &Client{rest: rest}, nil
}

// Close releases resources
func (c *Client) Close() error {
	return nil
}

func (c *Client) get(ctx context.Context, path string, resp interface{}) error {
	return wrapHTTPError(c.rest.DoWithContext(ctx, http.MethodGet, path, nil, resp))
}

// wrapHTTPError maps 404 responses onto ErrNotFound
func wrapHTTPError(err error) error {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, httpErr.RequestURL)
	}
	return err
}

// ParseRepo splits "owner/repo" into owner and repo
func ParseRepo(fullRepo string) (string, string, error) {
	parts := strings.Split(fullRepo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo format: %s (expected owner/repo)", fullRepo)
	}
	return parts[0], parts[1], nil
}

// PRRef identifies one pull request
type PRRef struct {
	Owner  string
	Repo   string
	Number int
}

func (r PRRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

var prURLPattern = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)/pull/(\d+)`)

// ParsePRRef parses "owner/repo#123" or a pull request URL
func ParsePRRef(ref string) (PRRef, error) {
	ref = strings.TrimSpace(ref)

	var owner, repo, num string
	if m := prURLPattern.FindStringSubmatch(ref); m != nil {
		owner, repo, num = m[1], m[2], m[3]
	} else {
		full, n, ok := strings.Cut(ref, "#")
		if !ok {
			return PRRef{}, fmt.Errorf("invalid pull request reference: %s (expected owner/repo#number)", ref)
		}
		var err error
		if owner, repo, err = ParseRepo(full); err != nil {
			return PRRef{}, err
		}
		num = n
	}

	number, err := strconv.Atoi(num)
	if err != nil || number < 1 {
		return PRRef{}, fmt.Errorf("invalid pull request number in %s", ref)
	}
	return PRRef{Owner: owner, Repo: repo, Number: number}, nil
}
