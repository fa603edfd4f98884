package kv

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/gh-riskradar/internal/config"
)

const testLimit = 64

// fakePoints is an in-memory stand-in for the Qdrant client
type fakePoints struct {
	mu          sync.Mutex
	collections map[string]bool
	points      map[string]map[string]*qdrant.Value
}

func newFakePoints() *fakePoints {
	return &fakePoints{collections: map[string]bool{}, points: map[string]map[string]*qdrant.Value{}}
}

func (f *fakePoints) CollectionExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collections[name], nil
}

func (f *fakePoints) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections[req.CollectionName] = true
	return nil
}

func (f *fakePoints) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range req.Points {
		f.points[p.Id.GetUuid()] = p.Payload
	}
	return &qdrant.UpdateResult{}, nil
}

func (f *fakePoints) Get(_ context.Context, req *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*qdrant.RetrievedPoint
	for _, id := range req.Ids {
		if payload, ok := f.points[id.GetUuid()]; ok {
			out = append(out, &qdrant.RetrievedPoint{Id: id, Payload: payload})
		}
	}
	return out, nil
}

func (f *fakePoints) Delete(_ context.Context, req *qdrant.DeletePoints) (*qdrant.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range req.Points.GetPoints().GetIds() {
		delete(f.points, id.GetUuid())
	}
	return &qdrant.UpdateResult{}, nil
}

func (f *fakePoints) Close() error { return nil }

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	bolt, err := NewBoltStore(filepath.Join(dir, "corpus.db"), testLimit)
	require.NoError(t, err)
	t.Cleanup(func() { bolt.Close() })

	lite, err := NewSQLiteStore(filepath.Join(dir, "corpus.sqlite"), testLimit)
	require.NoError(t, err)
	t.Cleanup(func() { lite.Close() })

	qs := newQdrantStore(newFakePoints(), "riskradar_kv", testLimit)
	require.NoError(t, qs.ensureCollection(context.Background()))

	return map[string]Store{
		"memory": NewMemoryStore(testLimit),
		"bolt":   bolt,
		"sqlite": lite,
		"qdrant": qs,
	}
}

func TestStore_Contract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, "missing")
			assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

			require.NoError(t, s.Set(ctx, "seed/risky", []byte(`{"a":1}`)))
			got, err := s.Get(ctx, "seed/risky")
			require.NoError(t, err)
			assert.Equal(t, `{"a":1}`, string(got))

			// overwrite
			require.NoError(t, s.Set(ctx, "seed/risky", []byte(`{"a":2}`)))
			got, err = s.Get(ctx, "seed/risky")
			require.NoError(t, err)
			assert.Equal(t, `{"a":2}`, string(got))

			// limit is inclusive
			require.NoError(t, s.Set(ctx, "exact", []byte(strings.Repeat("x", testLimit))))
			err = s.Set(ctx, "big", []byte(strings.Repeat("x", testLimit+1)))
			assert.True(t, errors.Is(err, ErrValueTooLarge), "got %v", err)
			_, err = s.Get(ctx, "big")
			assert.True(t, errors.Is(err, ErrNotFound))

			require.NoError(t, s.Delete(ctx, "seed/risky"))
			_, err = s.Get(ctx, "seed/risky")
			assert.True(t, errors.Is(err, ErrNotFound))
			assert.True(t, errors.Is(s.Delete(ctx, "seed/risky"), ErrNotFound))

			assert.Equal(t, testLimit, s.MaxValueSize())
		})
	}
}

func TestBoltStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "corpus.db")
	ctx := context.Background()

	s, err := NewBoltStore(path, 1024)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "team/documents", []byte("[]")))
	require.NoError(t, s.Close())

	s, err = NewBoltStore(path, 1024)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "team/documents")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestSQLiteStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.sqlite")
	ctx := context.Background()

	s, err := NewSQLiteStore(path, 1024)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "seed/stats", []byte(`{"sample_size":3}`)))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path, 1024)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "seed/stats")
	require.NoError(t, err)
	assert.Equal(t, `{"sample_size":3}`, string(got))
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	v := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", v))
	v[0] = 'z'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStore_Keys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	require.NoError(t, s.Set(ctx, "seed/quality/g1/chunk/0001", []byte("1")))
	require.NoError(t, s.Set(ctx, "seed/quality/g1/chunk/0000", []byte("0")))
	require.NoError(t, s.Set(ctx, "seed/risky", []byte("r")))

	assert.Equal(t, []string{"seed/quality/g1/chunk/0000", "seed/quality/g1/chunk/0001"}, s.Keys("seed/quality/"))
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore(0)
	assert.ErrorIs(t, s.Set(ctx, "k", []byte("v")), context.Canceled)
}

func TestParseHostPort(t *testing.T) {
	tests := []struct {
		url      string
		wantHost string
		wantPort int
	}{
		{"http://localhost:6334", "localhost", 6334},
		{"https://abc.cloud.qdrant.io:6334/", "abc.cloud.qdrant.io", 6334},
		{"qdrant:7000", "qdrant", 7000},
		{"qdrant", "qdrant", 6334},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			host, port := parseHostPort(tt.url)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPort, port)
		})
	}
}

func TestPointID_Deterministic(t *testing.T) {
	assert.Equal(t, pointID("seed/risky"), pointID("seed/risky"))
	assert.NotEqual(t, pointID("seed/risky"), pointID("seed/stats"))
	assert.Len(t, pointID("team/documents"), 36)
}

func TestQdrantStore_EnsureCollectionIdempotent(t *testing.T) {
	fake := newFakePoints()
	s := newQdrantStore(fake, "riskradar_kv", 0)

	require.NoError(t, s.ensureCollection(context.Background()))
	require.NoError(t, s.ensureCollection(context.Background()))
	assert.True(t, fake.collections["riskradar_kv"])
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, backend := range []string{"memory", "bolt", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			s, err := Open(ctx, config.StorageConfig{
				Backend:       backend,
				Path:          filepath.Join(dir, backend+".db"),
				MaxValueBytes: 2048,
			})
			require.NoError(t, err)
			defer s.Close()
			assert.Equal(t, 2048, s.MaxValueSize())
		})
	}

	_, err := Open(ctx, config.StorageConfig{Backend: "redis"})
	assert.Error(t, err)
}
