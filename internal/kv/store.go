// Package kv provides the size-constrained key/value backends the corpus
// is stored in. Every backend rejects values above a fixed size so the
// corpus layout has to hold up against the smallest store it targets.
package kv

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get and Delete for unknown keys
	ErrNotFound = errors.New("key not found")
	// ErrValueTooLarge is returned by Set when a value exceeds the store limit
	ErrValueTooLarge = errors.New("value exceeds store size limit")
)

// Store is a key/value store with a per-value size limit.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	MaxValueSize() int
	Close() error
}

// checkSize enforces the per-value limit shared by all backends
func checkSize(key string, value []byte, max int) error {
	if max > 0 && len(value) > max {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrValueTooLarge, key, len(value), max)
	}
	return nil
}
