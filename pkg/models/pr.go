package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ErrInvalidPR is returned when a PR record carries impossible values
var ErrInvalidPR = errors.New("invalid pull request record")

// PRRecord describes one pull request as seen by the scorer
type PRRecord struct {
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description" yaml:"description"`
	Additions    int       `json:"additions" yaml:"additions"`
	Deletions    int       `json:"deletions" yaml:"deletions"`
	ChangedFiles int       `json:"changed_files" yaml:"changed_files"`
	Files        []string  `json:"files,omitempty" yaml:"files,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
}

// Validate rejects negative line and file counts
func (p *PRRecord) Validate() error {
	switch {
	case p.Additions < 0:
		return fmt.Errorf("%w: additions must be >= 0, got %d", ErrInvalidPR, p.Additions)
	case p.Deletions < 0:
		return fmt.Errorf("%w: deletions must be >= 0, got %d", ErrInvalidPR, p.Deletions)
	case p.ChangedFiles < 0:
		return fmt.Errorf("%w: changed_files must be >= 0, got %d", ErrInvalidPR, p.ChangedFiles)
	}
	return nil
}

// Text returns the text that gets vectorized: title and description
func (p *PRRecord) Text() string {
	return p.Title + " " + p.Description
}

// TotalChanges returns additions + deletions
func (p *PRRecord) TotalChanges() int {
	return p.Additions + p.Deletions
}

// TitleLength returns the title length in runes
func (p *PRRecord) TitleLength() int {
	return utf8.RuneCountInString(strings.TrimSpace(p.Title))
}

// DescriptionLength returns the description length in runes
func (p *PRRecord) DescriptionLength() int {
	return utf8.RuneCountInString(strings.TrimSpace(p.Description))
}

// ContentHash returns a SHA256 hash of the scored content for change detection
func (p *PRRecord) ContentHash() string {
	data := fmt.Sprintf("%s\x00%s\x00%d\x00%d\x00%d", p.Title, p.Description, p.Additions, p.Deletions, p.ChangedFiles)
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:])
}

// PRUUID generates a deterministic UUID from the PR content
func PRUUID(p PRRecord) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("riskradar/pr/"+p.ContentHash())).String()
}
