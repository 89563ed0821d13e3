package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arviel/mediactl/internal/cache"
	"github.com/arviel/mediactl/internal/config"
	"github.com/arviel/mediactl/internal/repository"
)

func newPosterResolver(t *testing.T) *Resolver {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:         dir,
		CacheDir:        filepath.Join(dir, "cache"),
		CacheLimitBytes: 1 << 20,
	}
	require.NoError(t, os.MkdirAll(cfg.CacheDir, 0o755))

	db, err := repository.OpenDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewRepo(db)
	return NewResolver(cfg, repo, cache.New(cfg, repo), nil)
}

func TestCachePosterDownloadsOnce(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte("artwork"))
	}))
	defer srv.Close()

	r := newPosterResolver(t)
	ctx := context.Background()

	p, err := r.CachePoster(ctx, srv.URL+"/art.jpg")
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "artwork", string(data))

	p2, err := r.CachePoster(ctx, srv.URL+"/art.jpg")
	require.NoError(t, err)
	assert.Equal(t, p, p2)
	assert.Equal(t, 1, hits)
}

func TestCachePosterRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.NotFound(w, req)
	}))
	defer srv.Close()

	r := newPosterResolver(t)
	_, err := r.CachePoster(context.Background(), srv.URL+"/missing.jpg")
	assert.Error(t, err)
}

func TestCachePosterWithoutCacheIsNoOp(t *testing.T) {
	r := NewResolver(&config.Config{}, nil, nil, nil)
	p, err := r.CachePoster(context.Background(), "https://i/art.jpg")
	require.NoError(t, err)
	assert.Empty(t, p)
}
