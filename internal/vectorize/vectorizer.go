// Package vectorize turns PR text into fixed-size, L2-normalized term
// frequency vectors using the hashing trick.
package vectorize

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

const (
	DefaultDimensions     = 256
	DefaultMinTokenLength = 3
)

// Vectorizer maps text to a models.Vector. It holds no mutable state and
// is safe for concurrent use.
type Vectorizer struct {
	dims     int
	minToken int
}

// New creates a vectorizer. Non-positive arguments fall back to defaults.
func New(dimensions, minTokenLength int) *Vectorizer {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	if minTokenLength <= 0 {
		minTokenLength = DefaultMinTokenLength
	}
	return &Vectorizer{dims: dimensions, minToken: minTokenLength}
}

// Dimensions returns the vector length produced by Vectorize
func (v *Vectorizer) Dimensions() int {
	return v.dims
}

// Tokenize lowercases text and splits it into runs of letters and digits,
// keeping runs of at least the minimum token length.
func (v *Vectorizer) Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= v.minToken {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Bucket returns the vector index a token is hashed into
func (v *Vectorizer) Bucket(token string) int {
	return int(xxhash.Sum64String(token) % uint64(v.dims))
}

// Vectorize returns the normalized hashed term-frequency vector of text.
// Text without tokens yields the zero vector.
func (v *Vectorizer) Vectorize(text string) models.Vector {
	out := make(models.Vector, v.dims)

	tokens := v.Tokenize(text)
	if len(tokens) == 0 {
		return out
	}

	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}

	// Sorted accumulation keeps float sums identical across runs.
	distinct := make([]string, 0, len(counts))
	for t := range counts {
		distinct = append(distinct, t)
	}
	sort.Strings(distinct)

	acc := make([]float64, v.dims)
	total := float64(len(tokens))
	for _, t := range distinct {
		acc[v.Bucket(t)] += float64(counts[t]) / total
	}

	var norm float64
	for _, x := range acc {
		norm += x * x
	}
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)

	for i, x := range acc {
		out[i] = float32(x / norm)
	}
	return out
}
