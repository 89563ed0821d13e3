package resolve

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// SpotifyTrack carries the searchable identity of a catalog entry.
type SpotifyTrack struct {
	Name   string
	Artist string
}

type SpotifyClient struct {
	raw *spotify.Client
}

func NewSpotifyClient(clientID, clientSecret string) (*SpotifyClient, error) {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := cfg.Client(context.Background())
	cl := spotify.New(httpClient, spotify.WithRetry(true))
	return &SpotifyClient{raw: cl}, nil
}

// ParseSpotifyID recognizes open.spotify.com URLs and spotify: URIs.
func ParseSpotifyID(raw string) (typ string, id spotify.ID, err error) {
	if strings.HasPrefix(raw, "spotify:") {
		parts := strings.Split(raw, ":")
		if len(parts) == 3 {
			return parts[1], spotify.ID(parts[2]), nil
		}
		return "", "", fmt.Errorf("invalid spotify URI")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Host != "open.spotify.com" && u.Host != "www.open.spotify.com" {
		return "", "", fmt.Errorf("not a spotify URL")
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("invalid spotify URL path")
	}
	switch parts[0] {
	case "album", "playlist", "track":
		return parts[0], spotify.ID(parts[1]), nil
	}
	return "", "", fmt.Errorf("unsupported spotify type")
}

func firstArtist(artists []spotify.SimpleArtist) string {
	if len(artists) == 0 {
		return ""
	}
	return artists[0].Name
}

func (c *SpotifyClient) Track(ctx context.Context, id spotify.ID) (SpotifyTrack, error) {
	t, err := c.raw.GetTrack(ctx, id)
	if err != nil {
		return SpotifyTrack{}, err
	}
	return SpotifyTrack{Name: t.Name, Artist: firstArtist(t.Artists)}, nil
}

func (c *SpotifyClient) Album(ctx context.Context, id spotify.ID, limit int) ([]SpotifyTrack, error) {
	page, err := c.raw.GetAlbumTracks(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]SpotifyTrack, 0, page.Total)
	add := func(items []spotify.SimpleTrack) {
		for _, t := range items {
			if limit > 0 && len(out) >= limit {
				break
			}
			out = append(out, SpotifyTrack{Name: t.Name, Artist: firstArtist(t.Artists)})
		}
	}
	add(page.Tracks)
	for page.Next != "" && (limit == 0 || len(out) < limit) {
		if err := c.raw.NextPage(ctx, page); err != nil {
			break
		}
		add(page.Tracks)
	}
	return out, nil
}

func (c *SpotifyClient) Playlist(ctx context.Context, id spotify.ID, limit int) ([]SpotifyTrack, error) {
	page, err := c.raw.GetPlaylistItems(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]SpotifyTrack, 0, page.Total)
	add := func(items []spotify.PlaylistItem) {
		for _, it := range items {
			if it.Track.Track == nil {
				continue
			}
			if limit > 0 && len(out) >= limit {
				break
			}
			t := it.Track.Track
			out = append(out, SpotifyTrack{Name: t.Name, Artist: firstArtist(t.Artists)})
		}
	}
	add(page.Items)
	for page.Next != "" && (limit == 0 || len(out) < limit) {
		if err := c.raw.NextPage(ctx, page); err != nil {
			break
		}
		add(page.Items)
	}
	return out, nil
}
