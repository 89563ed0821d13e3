package cache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arviel/mediactl/internal/config"
	"github.com/arviel/mediactl/internal/repository"
)

// failReader errors on any read; used to prove a cache hit never
// touches the source.
type failReader struct{}

func (failReader) Read([]byte) (int, error) { return 0, errors.New("source must not be read") }

func newTestCache(t *testing.T, limit int64) (*ArtifactCache, *repository.Repo) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:         dir,
		CacheDir:        filepath.Join(dir, "cache"),
		CacheLimitBytes: limit,
	}
	require.NoError(t, os.MkdirAll(cfg.CacheDir, 0o755))

	db, err := repository.OpenDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewRepo(db)
	return New(cfg, repo), repo
}

func TestStoreAndLookup(t *testing.T) {
	c, _ := newTestCache(t, 1<<20)
	ctx := context.Background()

	p, err := c.Store(ctx, "https://i/art.jpg", bytes.NewReader([]byte("poster")))
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "poster", string(data))

	got, ok := c.Lookup(ctx, "https://i/art.jpg")
	assert.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = c.Lookup(ctx, "https://i/other.jpg")
	assert.False(t, ok)
}

func TestStoreHitSkipsSource(t *testing.T) {
	c, _ := newTestCache(t, 1<<20)
	ctx := context.Background()

	p, err := c.Store(ctx, "k", bytes.NewReader([]byte("original")))
	require.NoError(t, err)

	p2, err := c.Store(ctx, "k", failReader{})
	require.NoError(t, err)
	assert.Equal(t, p, p2)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestStoreDiscardsEmptyContent(t *testing.T) {
	c, repo := newTestCache(t, 1<<20)
	ctx := context.Background()

	p, err := c.Store(ctx, "k", bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, p)

	total, err := repo.CacheTotalBytes(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestEvictionKeepsTotalUnderLimit(t *testing.T) {
	c, repo := newTestCache(t, 8)
	ctx := context.Background()

	keys := []string{"a", "b", "c"}
	for _, k := range keys {
		_, err := c.Store(ctx, k, bytes.NewReader([]byte("1234")))
		require.NoError(t, err)
	}

	total, err := repo.CacheTotalBytes(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, total, int64(8))

	// 3x4 bytes against an 8-byte limit evicts exactly one entry, file
	// and tracking row both.
	alive := 0
	for _, k := range keys {
		if p, ok := c.Lookup(ctx, k); ok {
			_, statErr := os.Stat(p)
			assert.NoError(t, statErr)
			alive++
		}
	}
	assert.Equal(t, 2, alive)
}

func TestLookupDropsStaleRow(t *testing.T) {
	c, repo := newTestCache(t, 1<<20)
	ctx := context.Background()

	p, err := c.Store(ctx, "k", bytes.NewReader([]byte("data")))
	require.NoError(t, err)
	require.NoError(t, os.Remove(p))

	_, ok := c.Lookup(ctx, "k")
	assert.False(t, ok)

	total, err := repo.CacheTotalBytes(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}
