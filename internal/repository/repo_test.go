package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arviel/mediactl/internal/config"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := OpenDB(&config.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepo(db)
}

func TestResolvedURLReuseWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	window := 5 * time.Hour

	tests := []struct {
		name string
		key  string
		age  time.Duration
		live bool
		hit  bool
	}{
		{name: "fresh", key: "k1", age: time.Minute, live: false, hit: true},
		{name: "fresh live", key: "k2", age: time.Minute, live: true, hit: true},
		{name: "inside window", key: "k3", age: window - time.Minute, hit: true},
		{name: "expired", key: "k4", age: 6 * time.Hour, hit: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, repo.PutResolvedURL(ctx, &ResolvedURL{
				Key:        tc.key,
				URL:        "https://cdn/" + tc.key,
				Live:       tc.live,
				ResolvedAt: time.Now().Add(-tc.age).Unix(),
			}))

			got, err := repo.GetResolvedURL(ctx, tc.key, window)
			if !tc.hit {
				assert.ErrorIs(t, err, sql.ErrNoRows)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "https://cdn/"+tc.key, got.URL)
			assert.Equal(t, tc.live, got.Live)
		})
	}
}

func TestResolvedURLMissingKey(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetResolvedURL(context.Background(), "nope", time.Hour)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestResolvedURLReplace(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, url := range []string{"https://cdn/old", "https://cdn/new"} {
		require.NoError(t, repo.PutResolvedURL(ctx, &ResolvedURL{
			Key:        "k",
			URL:        url,
			ResolvedAt: time.Now().Unix(),
		}))
	}

	got, err := repo.GetResolvedURL(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/new", got.URL)
}

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	s, err := repo.UpsertSettings(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 100, s.DefaultVolume)
	assert.False(t, s.DefaultMuted)
	assert.False(t, s.PreferNativeHLS)
	assert.Equal(t, 300, s.IdleTimeoutSec)

	s.DefaultVolume = 40
	s.DefaultMuted = true
	s.PreferNativeHLS = true
	s.OrientationLock = "landscape"
	require.NoError(t, repo.UpdateSettings(ctx, s))

	got, err := repo.GetSettings(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 40, got.DefaultVolume)
	assert.True(t, got.DefaultMuted)
	assert.True(t, got.PreferNativeHLS)
	assert.Equal(t, "landscape", got.OrientationLock)

	// upsert of an existing session keeps its values
	again, err := repo.UpsertSettings(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 40, again.DefaultVolume)
}

func TestPresets(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AddPreset(ctx, &Preset{SessionID: "s1", Name: "b", Query: "second"}))
	require.NoError(t, repo.AddPreset(ctx, &Preset{SessionID: "s1", Name: "a", Query: "first"}))
	require.NoError(t, repo.AddPreset(ctx, &Preset{SessionID: "s2", Name: "a", Query: "other session"}))

	// duplicate name within a session is rejected
	assert.Error(t, repo.AddPreset(ctx, &Preset{SessionID: "s1", Name: "a", Query: "dup"}))

	p, err := repo.FindPreset(ctx, "s1", "a")
	require.NoError(t, err)
	assert.Equal(t, "first", p.Query)

	list, err := repo.ListPresets(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "b", list[1].Name)

	n, err := repo.RemovePreset(ctx, "s1", "a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.FindPreset(ctx, "s1", "a")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
