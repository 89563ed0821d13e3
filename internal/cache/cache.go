// Package cache stores downloaded artwork on disk. The cache is
// size-bounded; entry access times are tracked in the repository so the
// LRU eviction order survives restarts.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/arviel/mediactl/internal/config"
	"github.com/arviel/mediactl/internal/repository"
)

// ArtifactCache maps artwork URLs to files under the cache dir.
type ArtifactCache struct {
	dir   string
	limit int64
	repo  *repository.Repo

	mu sync.Mutex // serializes eviction
}

func New(cfg *config.Config, repo *repository.Repo) *ArtifactCache {
	return &ArtifactCache{dir: cfg.CacheDir, limit: cfg.CacheLimitBytes, repo: repo}
}

func keyHash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (c *ArtifactCache) path(hash string) string {
	return filepath.Join(c.dir, hash)
}

// Lookup returns the on-disk path for key, refreshing its access time.
// A tracking row whose backing file is gone is dropped.
func (c *ArtifactCache) Lookup(ctx context.Context, key string) (string, bool) {
	hash := keyHash(key)
	p := c.path(hash)
	if _, err := os.Stat(p); err == nil {
		_ = c.repo.CacheTouch(ctx, hash, 0, false)
		return p, true
	}
	_ = c.repo.CacheRemove(ctx, hash)
	return "", false
}

// Store writes the contents of src under key and returns the final
// path. An existing entry short-circuits without reading src. Empty
// content is discarded rather than cached and returns an empty path.
func (c *ArtifactCache) Store(ctx context.Context, key string, src io.Reader) (string, error) {
	if p, ok := c.Lookup(ctx, key); ok {
		return p, nil
	}
	hash := keyHash(key)
	final := c.path(hash)

	tmpDir := filepath.Join(c.dir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", err
	}
	tmp := filepath.Join(tmpDir, hash)
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if n == 0 {
		_ = os.Remove(tmp)
		return "", nil
	}
	if err := os.Rename(tmp, final); err != nil {
		return "", err
	}
	if err := c.repo.CacheTouch(ctx, hash, n, true); err != nil {
		return "", err
	}
	if err := c.shrink(ctx); err != nil {
		return "", err
	}
	return final, nil
}

// shrink evicts least-recently-used entries until the tracked total
// fits the limit.
func (c *ArtifactCache) shrink(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	total, err := c.repo.CacheTotalBytes(ctx)
	if err != nil {
		return err
	}
	for total > c.limit {
		oldest, err := c.repo.CacheOldest(ctx)
		if err != nil {
			return err
		}
		_ = os.Remove(c.path(oldest))
		if err := c.repo.CacheRemove(ctx, oldest); err != nil {
			return err
		}
		total, err = c.repo.CacheTotalBytes(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}
