package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/gh-riskradar/internal/kv"
	"github.com/Kavirubc/gh-riskradar/internal/vectorize"
	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

func newTestStore(t *testing.T, maxValue int, opts Options) (*Store, *kv.MemoryStore) {
	t.Helper()
	mem := kv.NewMemoryStore(maxValue)
	s := NewStore(mem, vectorize.New(64, 3), opts, nil)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s, mem
}

func makeDocs(n int, label models.Label) []models.Document {
	docs := make([]models.Document, n)
	for i := range docs {
		docs[i] = models.Document{
			SourceID: fmt.Sprintf("doc-%03d", i),
			Record: models.PRRecord{
				Title:       fmt.Sprintf("change number %d", i),
				Description: "adjusts the widget pipeline",
				Additions:   10 * (i + 1),
				Deletions:   i,
			},
			Label:  label,
			Origin: models.OriginSeed,
		}
	}
	return docs
}

func smallSeed(quality, risky int) *Seed {
	s := &Seed{}
	for _, d := range makeDocs(quality, models.LabelQuality) {
		s.Quality = append(s.Quality, SeedEntry{ID: "q-" + d.SourceID, PRRecord: d.Record})
	}
	for _, d := range makeDocs(risky, models.LabelRisky) {
		s.Risky = append(s.Risky, SeedEntry{ID: "r-" + d.SourceID, PRRecord: d.Record})
	}
	return s
}

func sourceIDs(docs []models.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.SourceID
	}
	return out
}

func TestChunked_RoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	for _, n := range []int{0, 1, 5, 12} {
		for chunkSize := 1; chunkSize <= 7; chunkSize++ {
			t.Run(fmt.Sprintf("items=%d/chunk=%d", n, chunkSize), func(t *testing.T) {
				mem := kv.NewMemoryStore(0)
				docs := makeDocs(n, models.LabelQuality)

				cur, prev, err := writeChunked(ctx, mem, "test", docs, chunkSize, now)
				require.NoError(t, err)
				assert.Nil(t, prev)
				assert.Equal(t, (n+chunkSize-1)/chunkSize, cur.Chunks)

				got, err := readChunked(ctx, mem, "test")
				require.NoError(t, err)
				assert.Equal(t, sourceIDs(docs), sourceIDs(got))
			})
		}
	}
}

func TestChunked_MissingChunk(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore(0)

	_, _, err := writeChunked(ctx, mem, "test", makeDocs(6, models.LabelQuality), 2, time.Now())
	require.NoError(t, err)
	require.NoError(t, mem.Delete(ctx, chunkKey("test", 1, 1)))

	_, err = readChunked(ctx, mem, "test")
	assert.ErrorIs(t, err, ErrChunkManifestMismatch)
}

func TestChunked_NotInitialized(t *testing.T) {
	_, err := readChunked(context.Background(), kv.NewMemoryStore(0), "test")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestChunked_OversizedChunkLeavesManifestUntouched(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore(400)

	_, _, err := writeChunked(ctx, mem, "test", makeDocs(10, models.LabelQuality), 10, time.Now())
	assert.ErrorIs(t, err, kv.ErrValueTooLarge)

	_, err = readManifest(ctx, mem, "test")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestChunked_RewriteRemovesOldGeneration(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore(0)

	_, _, err := writeChunked(ctx, mem, "test", makeDocs(6, models.LabelQuality), 2, time.Now())
	require.NoError(t, err)

	cur, prev, err := writeChunked(ctx, mem, "test", makeDocs(2, models.LabelQuality), 2, time.Now())
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, 2, cur.Generation)
	require.NoError(t, deleteChunks(ctx, mem, "test", prev))

	assert.Equal(t, []string{"test/g2/chunk/0000"}, mem.Keys("test/g"))

	got, err := readChunked(ctx, mem, "test")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStore_InitializeIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 0, Options{ChunkSize: 4})

	ok, err := s.Initialized(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	created, err := s.Initialize(ctx, smallSeed(10, 3))
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, s.AppendTeam(ctx, models.Document{SourceID: "team-1", Record: models.PRRecord{Title: "first team change"}, Label: models.LabelUnlabeled, Origin: models.OriginTeam}))

	created, err = s.Initialize(ctx, smallSeed(2, 2))
	require.NoError(t, err)
	assert.False(t, created)

	quality, err := s.LoadQuality(ctx)
	require.NoError(t, err)
	assert.Len(t, quality, 10)

	team, err := s.LoadTeam(ctx)
	require.NoError(t, err)
	assert.Len(t, team, 1)
}

func TestStore_BundledSeed(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 1<<20, Options{ChunkSize: 50})

	seed, err := BundledSeed()
	require.NoError(t, err)
	require.NotEmpty(t, seed.Quality)
	require.NotEmpty(t, seed.Risky)

	_, err = s.Initialize(ctx, seed)
	require.NoError(t, err)

	quality, err := s.LoadQuality(ctx)
	require.NoError(t, err)
	assert.Len(t, quality, len(seed.Quality))
	assert.Equal(t, "seed-q-001", quality[0].SourceID)
	for _, d := range quality {
		assert.Equal(t, models.LabelQuality, d.Label)
		assert.Equal(t, models.OriginSeed, d.Origin)
		assert.Len(t, d.Vector, 64)
	}

	risky, err := s.LoadRisky(ctx)
	require.NoError(t, err)
	assert.Len(t, risky, len(seed.Risky))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(seed.Quality), stats.SampleSize)
	assert.Greater(t, stats.AvgAdditions, 0.0)
	assert.Greater(t, stats.AvgTitleLength, 10.0)
}

func TestStore_ReseedKeepsTeam(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t, 0, Options{ChunkSize: 2})

	_, err := s.Initialize(ctx, smallSeed(5, 1))
	require.NoError(t, err)
	require.NoError(t, s.AppendTeam(ctx, models.Document{SourceID: "team-1", Record: models.PRRecord{Title: "kept across reseed"}}))

	_, err = s.LoadQuality(ctx) // warm the cache
	require.NoError(t, err)

	require.NoError(t, s.Reseed(ctx, smallSeed(3, 2)))

	quality, err := s.LoadQuality(ctx)
	require.NoError(t, err)
	assert.Len(t, quality, 3)

	risky, err := s.LoadRisky(ctx)
	require.NoError(t, err)
	assert.Len(t, risky, 2)

	team, err := s.LoadTeam(ctx)
	require.NoError(t, err)
	assert.Len(t, team, 1)

	for _, k := range mem.Keys("seed/quality/g") {
		assert.True(t, strings.HasPrefix(k, "seed/quality/g2/"), "stale chunk %s", k)
	}
}

func TestStore_MissingChunkOnlyAffectsQuality(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t, 0, Options{ChunkSize: 2})

	_, err := s.Initialize(ctx, smallSeed(6, 2))
	require.NoError(t, err)
	require.NoError(t, mem.Delete(ctx, chunkKey(prefixQuality, 1, 2)))

	_, err = s.LoadQuality(ctx)
	assert.ErrorIs(t, err, ErrChunkManifestMismatch)

	risky, err := s.LoadRisky(ctx)
	require.NoError(t, err)
	assert.Len(t, risky, 2)

	sum := s.Summary(ctx)
	assert.True(t, sum.Initialized)
	assert.Equal(t, []string{"quality"}, sum.Unavailable)
	assert.Equal(t, 2, sum.RiskyCount)
}

func TestStore_TeamFIFO(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 0, Options{TeamCapacity: 3})

	for i := 0; i < 5; i++ {
		doc := models.Document{
			SourceID: fmt.Sprintf("team-%d", i),
			Record:   models.PRRecord{Title: fmt.Sprintf("team change %d", i)},
			Label:    models.LabelUnlabeled,
			Origin:   models.OriginTeam,
		}
		require.NoError(t, s.AppendTeam(ctx, doc))
	}

	team, err := s.LoadTeam(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"team-2", "team-3", "team-4"}, sourceIDs(team))
}

func TestStore_TeamEvictsToFitValueLimit(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 4096, Options{TeamCapacity: 500})

	for i := 0; i < 40; i++ {
		doc := models.Document{
			SourceID: fmt.Sprintf("team-%02d", i),
			Record:   models.PRRecord{Title: fmt.Sprintf("team change %d", i), Description: strings.Repeat("detail ", 10)},
			Origin:   models.OriginTeam,
			Label:    models.LabelUnlabeled,
		}
		require.NoError(t, s.AppendTeam(ctx, doc))
	}

	team, err := s.LoadTeam(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, team)
	assert.Less(t, len(team), 40)
	assert.Equal(t, "team-39", team[len(team)-1].SourceID)
}

func TestStore_TeamVectorRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 0, Options{})

	rec := models.PRRecord{Title: "Add tracing to checkout flow", Description: "spans around payment capture"}
	want := s.vec.Vectorize(rec.Text())
	require.NoError(t, s.AppendTeam(ctx, models.Document{SourceID: "team-1", Record: rec, Vector: want}))

	team, err := s.LoadTeam(ctx)
	require.NoError(t, err)
	require.Len(t, team, 1)
	assert.Equal(t, want, team[0].Vector)
}

func TestStore_VectorsRecomputedForNewDimensions(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore(0)

	old := NewStore(mem, vectorize.New(32, 3), Options{}, nil)
	require.NoError(t, old.AppendTeam(ctx, models.Document{SourceID: "team-1", Record: models.PRRecord{Title: "resize buffers"}}))

	s := NewStore(mem, vectorize.New(128, 3), Options{}, nil)
	team, err := s.LoadTeam(ctx)
	require.NoError(t, err)
	require.Len(t, team, 1)
	assert.Len(t, team[0].Vector, 128)
}

func TestStore_StatsFallbackWhenEntryMissing(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t, 0, Options{})

	_, err := s.Initialize(ctx, smallSeed(4, 1))
	require.NoError(t, err)
	require.NoError(t, mem.Delete(ctx, keyStats))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.SampleSize)
	assert.InDelta(t, 25.0, stats.AvgAdditions, 1e-9)
}

func TestStore_StatsUnavailableBeforeInit(t *testing.T) {
	s, _ := newTestStore(t, 0, Options{})
	_, err := s.Stats(context.Background())
	assert.True(t, errors.Is(err, ErrNotInitialized), "got %v", err)
}

func TestComputeStats(t *testing.T) {
	assert.Equal(t, models.BenchmarkStats{}, ComputeStats(nil))

	docs := []models.Document{
		{Record: models.PRRecord{Title: "abcd", Additions: 10, Deletions: 2, ChangedFiles: 1}},
		{Record: models.PRRecord{Title: "abcdefgh", Additions: 30, Deletions: 4, ChangedFiles: 3}},
	}
	assert.Equal(t, models.BenchmarkStats{
		AvgAdditions:    20,
		AvgDeletions:    3,
		AvgChangedFiles: 2,
		AvgTitleLength:  6,
		SampleSize:      2,
	}, ComputeStats(docs))
}

func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed([]byte(`
quality:
  - title: Add retries
    additions: 10
    changed_files: 1
risky:
  - id: custom-r
    title: hotfix
    additions: 900
`))
	require.NoError(t, err)

	q := seed.QualityDocuments()
	require.Len(t, q, 1)
	assert.Equal(t, "seed-q-001", q[0].SourceID)
	assert.Equal(t, 10, q[0].Record.Additions)

	r := seed.RiskyDocuments()
	require.Len(t, r, 1)
	assert.Equal(t, "custom-r", r[0].SourceID)
	assert.Equal(t, models.LabelRisky, r[0].Label)

	_, err = ParseSeed([]byte(`{"quality":[{"id":"a","title":"x"}],"risky":[{"id":"a","title":"y"}]}`))
	assert.Error(t, err)

	_, err = ParseSeed([]byte(`quality: [{title: x, additions: -1}]`))
	assert.ErrorIs(t, err, models.ErrInvalidPR)
}

const corruptTeamList = `{"documents":[{"source_id":"team-x","record":{"title":"hello world title"},` +
	`"vector":{"dim":-1,"idx":[],"val":[]},"quality_label":"unlabeled","origin":"team"}]}`

func TestStore_CorruptTeamVectorIsUnavailable(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t, 0, Options{})
	require.NoError(t, mem.Set(ctx, keyTeam, []byte(corruptTeamList)))

	var (
		team []models.Document
		err  error
	)
	require.NotPanics(t, func() { team, err = s.LoadTeam(ctx) })
	assert.ErrorIs(t, err, ErrUndecodable)
	assert.Nil(t, team)
	assert.Contains(t, s.Summary(ctx).Unavailable, "team")
}

func TestStore_AppendTeamReplacesUndecodableList(t *testing.T) {
	for name, stored := range map[string]string{
		"corrupt vector": corruptTeamList,
		"not json":       `{"documents": [`,
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s, mem := newTestStore(t, 0, Options{})
			require.NoError(t, mem.Set(ctx, keyTeam, []byte(stored)))

			doc := models.Document{SourceID: "team-1", Record: models.PRRecord{Title: "recover team list"}, Origin: models.OriginTeam}
			require.NoError(t, s.AppendTeam(ctx, doc))
			require.NoError(t, s.AppendTeam(ctx, models.Document{SourceID: "team-2", Record: models.PRRecord{Title: "second"}}))

			team, err := s.LoadTeam(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"team-1", "team-2"}, sourceIDs(team))
		})
	}
}

func TestStore_AppendTeamKeepsBackendErrors(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t, 0, Options{})
	require.NoError(t, mem.Close())

	err := s.AppendTeam(ctx, models.Document{SourceID: "team-1", Record: models.PRRecord{Title: "x"}})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUndecodable)
}

func TestStore_FailedReseedKeepsStats(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t, 2000, Options{ChunkSize: 2})

	_, err := s.Initialize(ctx, smallSeed(4, 1))
	require.NoError(t, err)

	oversized := smallSeed(2, 1)
	oversized.Quality[0].Description = strings.Repeat("x ", 1500)
	err = s.Reseed(ctx, oversized)
	require.ErrorIs(t, err, kv.ErrValueTooLarge)

	fresh := NewStore(mem, vectorize.New(64, 3), Options{ChunkSize: 2}, nil)
	quality, err := fresh.LoadQuality(ctx)
	require.NoError(t, err)
	assert.Len(t, quality, 4)

	stats, err := fresh.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.SampleSize)
	assert.InDelta(t, 25.0, stats.AvgAdditions, 1e-9)

	cached, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats, cached)
}

func TestStore_StatsFallbackWhenEntryUndecodable(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t, 0, Options{})

	_, err := s.Initialize(ctx, smallSeed(4, 1))
	require.NoError(t, err)
	require.NoError(t, mem.Set(ctx, keyStats, []byte("not json")))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.SampleSize)
}
