package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Kavirubc/gh-riskradar/internal/kv"
	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

// manifest describes one chunked collection. Chunks of a generation live
// under their own keys, so a rewrite never mixes old and new chunks.
type manifest struct {
	Generation int       `json:"generation"`
	Chunks     int       `json:"chunks"`
	Items      int       `json:"items"`
	ChunkSize  int       `json:"chunk_size"`
	WrittenAt  time.Time `json:"written_at"`
}

func manifestKey(prefix string) string {
	return prefix + "/manifest"
}

func chunkKey(prefix string, generation, index int) string {
	return fmt.Sprintf("%s/g%d/chunk/%04d", prefix, generation, index)
}

// readManifest returns the manifest under prefix, or ErrNotInitialized
func readManifest(ctx context.Context, store kv.Store, prefix string) (*manifest, error) {
	data, err := store.Get(ctx, manifestKey(prefix))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

// writeChunked stores docs as fixed-size chunks of a new generation and
// writes the manifest only after every chunk succeeded. The previous
// manifest, if any, is returned so the caller can remove its chunks.
func writeChunked(ctx context.Context, store kv.Store, prefix string, docs []models.Document, chunkSize int, now time.Time) (cur, prev *manifest, err error) {
	if chunkSize < 1 {
		return nil, nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}

	prev, err = readManifest(ctx, store, prefix)
	if err != nil && !errors.Is(err, ErrNotInitialized) {
		return nil, nil, err
	}

	gen := 1
	if prev != nil {
		gen = prev.Generation + 1
	}

	chunks := 0
	for start := 0; start < len(docs); start += chunkSize {
		end := min(start+chunkSize, len(docs))

		data, err := json.Marshal(docs[start:end])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode chunk %d: %w", chunks, err)
		}
		if err := store.Set(ctx, chunkKey(prefix, gen, chunks), data); err != nil {
			return nil, nil, fmt.Errorf("failed to write chunk %d: %w", chunks, err)
		}
		chunks++
	}

	cur = &manifest{
		Generation: gen,
		Chunks:     chunks,
		Items:      len(docs),
		ChunkSize:  chunkSize,
		WrittenAt:  now.UTC(),
	}
	data, err := json.Marshal(cur)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := store.Set(ctx, manifestKey(prefix), data); err != nil {
		return nil, nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	return cur, prev, nil
}

// readChunked concatenates the chunks named by the manifest, in order
func readChunked(ctx context.Context, store kv.Store, prefix string) ([]models.Document, error) {
	m, err := readManifest(ctx, store, prefix)
	if err != nil {
		return nil, err
	}

	docs := make([]models.Document, 0, m.Items)
	for i := 0; i < m.Chunks; i++ {
		data, err := store.Get(ctx, chunkKey(prefix, m.Generation, i))
		if errors.Is(err, kv.ErrNotFound) {
			return nil, fmt.Errorf("%w: chunk %d of %d missing", ErrChunkManifestMismatch, i, m.Chunks)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read chunk %d: %w", i, err)
		}

		var part []models.Document
		if err := json.Unmarshal(data, &part); err != nil {
			return nil, fmt.Errorf("%w: chunk %d undecodable: %v", ErrChunkManifestMismatch, i, err)
		}
		docs = append(docs, part...)
	}

	if len(docs) != m.Items {
		return nil, fmt.Errorf("%w: manifest lists %d items, chunks hold %d", ErrChunkManifestMismatch, m.Items, len(docs))
	}
	return docs, nil
}

// deleteChunks removes every chunk of a superseded generation
func deleteChunks(ctx context.Context, store kv.Store, prefix string, m *manifest) error {
	var errs []error
	for i := 0; i < m.Chunks; i++ {
		err := store.Delete(ctx, chunkKey(prefix, m.Generation, i))
		if err != nil && !errors.Is(err, kv.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
