// Package resolve turns user queries into playable media sources:
// direct URLs pass through, catalog links expand to searches, and
// everything else goes through yt-dlp with a cached reuse window.
package resolve

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/arviel/mediactl/internal/cache"
	"github.com/arviel/mediactl/internal/config"
	"github.com/arviel/mediactl/internal/media"
	"github.com/arviel/mediactl/internal/repository"
)

// Resolved URLs expire out of the reuse window; most CDN-signed URLs
// are valid for about six hours.
const urlReuseWindow = 5 * time.Hour

const playlistTrackLimit = 25

type Resolver struct {
	log     *slog.Logger
	repo    *repository.Repo
	art     *cache.ArtifactCache
	spotify *SpotifyClient
}

func NewResolver(cfg *config.Config, repo *repository.Repo, art *cache.ArtifactCache, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	r := &Resolver{log: log, repo: repo, art: art}
	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		cl, err := NewSpotifyClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
		if err != nil {
			log.Warn("spotify client unavailable", "err", err)
		} else {
			r.spotify = cl
		}
	}
	return r
}

// Resolve maps a query to one or more playable sources, plus the
// artwork URL for the first resolved item when one is known.
func (r *Resolver) Resolve(ctx context.Context, query string) ([]media.Source, string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, "", fmt.Errorf("empty query")
	}

	if typ, id, err := ParseSpotifyID(query); err == nil {
		return r.resolveSpotify(ctx, typ, id)
	}

	if isDirectURL(query) {
		return []media.Source{{URL: query}}, "", nil
	}

	target := query
	if !strings.HasPrefix(query, "http://") && !strings.HasPrefix(query, "https://") {
		target = "ytsearch1:" + query
	}

	src, poster, err := r.resolveURL(ctx, target)
	if err != nil {
		return nil, "", err
	}
	return []media.Source{src}, poster, nil
}

func (r *Resolver) resolveSpotify(ctx context.Context, typ string, id spotify.ID) ([]media.Source, string, error) {
	if r.spotify == nil {
		return nil, "", fmt.Errorf("spotify support not configured")
	}

	var tracks []SpotifyTrack
	switch typ {
	case "track":
		t, err := r.spotify.Track(ctx, id)
		if err != nil {
			return nil, "", err
		}
		tracks = []SpotifyTrack{t}
	case "album":
		ts, err := r.spotify.Album(ctx, id, playlistTrackLimit)
		if err != nil {
			return nil, "", err
		}
		tracks = ts
	case "playlist":
		ts, err := r.spotify.Playlist(ctx, id, playlistTrackLimit)
		if err != nil {
			return nil, "", err
		}
		tracks = ts
	default:
		return nil, "", fmt.Errorf("unsupported spotify type %q", typ)
	}

	var out []media.Source
	var poster string
	for _, t := range tracks {
		src, thumb, err := r.resolveURL(ctx, "ytsearch1:"+t.Artist+" "+t.Name)
		if err != nil {
			r.log.Warn("track resolution failed", "track", t.Name, "err", err)
			continue
		}
		if poster == "" {
			poster = thumb
		}
		out = append(out, src)
	}
	if len(out) == 0 {
		return nil, "", fmt.Errorf("no playable tracks resolved")
	}
	return out, poster, nil
}

// resolveURL extracts a playable URL for target, reusing a previous
// resolution when still inside the reuse window. The second return is
// the artwork URL, empty on a reuse hit.
func (r *Resolver) resolveURL(ctx context.Context, target string) (media.Source, string, error) {
	key := hashKey(target)

	if r.repo != nil {
		if cached, err := r.repo.GetResolvedURL(ctx, key, urlReuseWindow); err == nil {
			return media.Source{URL: cached.URL}, "", nil
		}
	}

	info, err := ExtractInfo(ctx, target)
	if err != nil {
		return media.Source{}, "", fmt.Errorf("resolve %q: %w", target, err)
	}
	playable := PlayableURL(info)
	if playable == "" {
		return media.Source{}, "", fmt.Errorf("resolve %q: no playable URL", target)
	}

	if r.repo != nil {
		err := r.repo.PutResolvedURL(ctx, &repository.ResolvedURL{
			Key:        key,
			URL:        playable,
			Live:       info.IsLive,
			ResolvedAt: time.Now().Unix(),
		})
		if err != nil {
			r.log.Warn("resolved url cache write failed", "err", err)
		}
	}

	return media.Source{URL: playable}, info.Thumbnail, nil
}

// CachePoster downloads artwork into the artifact cache and returns
// the local path. Repeat downloads of the same URL hit the cache.
func (r *Resolver) CachePoster(ctx context.Context, posterURL string) (string, error) {
	if r.art == nil || posterURL == "" {
		return "", nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, posterURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("poster fetch: %s", resp.Status)
	}
	return r.art.Store(ctx, posterURL, resp.Body)
}

func hashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

var directExtensions = map[string]struct{}{
	"mp3": {}, "m4a": {}, "aac": {}, "ogg": {}, "oga": {}, "opus": {}, "wav": {}, "flac": {},
	"mp4": {}, "m4v": {}, "webm": {}, "mov": {}, "mkv": {}, "ts": {},
	"m3u8": {}, "m3u": {},
}

// isDirectURL reports whether query is already a playable media URL
// that needs no extraction.
func isDirectURL(query string) bool {
	u, err := url.Parse(query)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	_, ok := directExtensions[ext]
	return ok
}
