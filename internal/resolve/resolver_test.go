package resolve

import (
	"testing"

	ytdlp "github.com/lrstanley/go-ytdlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpotifyID(t *testing.T) {
	typ, id, err := ParseSpotifyID("https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC")
	require.NoError(t, err)
	assert.Equal(t, "track", typ)
	assert.Equal(t, "4uLU6hMCjMI75M1A2tKUQC", string(id))

	typ, id, err = ParseSpotifyID("spotify:playlist:37i9dQZF1DXcBWIGoYBM5M")
	require.NoError(t, err)
	assert.Equal(t, "playlist", typ)
	assert.Equal(t, "37i9dQZF1DXcBWIGoYBM5M", string(id))

	typ, _, err = ParseSpotifyID("https://open.spotify.com/album/abc?si=xyz")
	require.NoError(t, err)
	assert.Equal(t, "album", typ)
}

func TestParseSpotifyIDRejects(t *testing.T) {
	for _, raw := range []string{
		"https://example.com/track/abc",
		"spotify:track",
		"https://open.spotify.com/",
		"https://open.spotify.com/show/abc",
		"not a url at all",
	} {
		_, _, err := ParseSpotifyID(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestIsDirectURL(t *testing.T) {
	assert.True(t, isDirectURL("https://cdn.example.com/a.mp3"))
	assert.True(t, isDirectURL("https://cdn.example.com/live/stream.m3u8"))
	assert.True(t, isDirectURL("http://x/video.mp4"))

	assert.False(t, isDirectURL("https://www.youtube.com/watch?v=abc"))
	assert.False(t, isDirectURL("never gonna give you up"))
	assert.False(t, isDirectURL("ftp://x/a.mp3"))
}

func TestPlayableURLPreference(t *testing.T) {
	info := &ExtractedInfo{extractedEntry: extractedEntry{
		WebpageURL:       "https://site/watch",
		URL:              "https://cdn/top",
		Formats:          []extractedFormat{{URL: "https://cdn/fmt"}},
		RequestedFormats: []extractedFormat{{URL: "https://cdn/requested"}},
	}}
	assert.Equal(t, "https://cdn/requested", PlayableURL(info))

	info.RequestedFormats = nil
	assert.Equal(t, "https://cdn/top", PlayableURL(info))

	info.URL = ""
	assert.Equal(t, "https://cdn/fmt", PlayableURL(info))

	info.Formats = nil
	assert.Equal(t, "https://site/watch", PlayableURL(info))
}

func TestLastThumb(t *testing.T) {
	assert.Empty(t, lastThumb(nil))
	assert.Equal(t, "https://i/hi.jpg", lastThumb([]*ytdlp.ExtractedThumbnail{
		{URL: "https://i/lo.jpg"},
		{URL: "https://i/hi.jpg"},
	}))
	assert.Equal(t, "https://i/lo.jpg", lastThumb([]*ytdlp.ExtractedThumbnail{
		{URL: "https://i/lo.jpg"},
		nil,
		{},
	}))
}

func TestHashKeyStable(t *testing.T) {
	assert.Equal(t, hashKey("x"), hashKey("x"))
	assert.NotEqual(t, hashKey("x"), hashKey("y"))
	assert.Len(t, hashKey("x"), 64)
}
