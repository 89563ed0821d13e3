package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTypes(t *testing.T) {
	in := []Source{
		{URL: "https://cdn.example.com/a.mp4"},
		{URL: "blob:abc123"},
		{Handle: struct{}{}},
		{URL: "https://cdn.example.com/b.m3u8", Type: "application/x-mpegURL"},
	}
	out := Normalize(in)

	assert.Equal(t, TypeUnknown, out[0].Type)
	assert.Equal(t, TypeObject, out[1].Type)
	assert.Equal(t, TypeObject, out[2].Type)
	// explicit types survive untouched
	assert.Equal(t, "application/x-mpegURL", out[3].Type)

	// input left unmodified
	assert.Empty(t, in[0].Type)
}

func TestNormalizeIdempotent(t *testing.T) {
	in := []Source{{URL: "x"}, {Handle: 1}}
	once := Normalize(in)
	twice := Normalize(once)
	assert.True(t, SourcesEqual(once, twice))
}

func TestExtensionOf(t *testing.T) {
	assert.Equal(t, "mp4", extensionOf("https://x/y/movie.mp4"))
	assert.Equal(t, "m3u8", extensionOf("https://x/live.m3u8?token=1#frag"))
	assert.Equal(t, "", extensionOf("https://x/noext"))
	assert.Equal(t, "", extensionOf("https://x/dir.d/file"))
	assert.Equal(t, "", extensionOf("trailing."))
}

func TestSourceClassification(t *testing.T) {
	assert.True(t, isAudioSource(Source{URL: "a.mp3", Type: TypeUnknown}))
	assert.True(t, isAudioSource(Source{Type: "audio/mpeg"}))
	assert.True(t, isVideoSource(Source{URL: "a.webm", Type: TypeUnknown}))
	assert.True(t, isVideoSource(Source{Type: TypeObject}))
	assert.True(t, isHLSSource(Source{URL: "a.m3u8", Type: TypeUnknown}))
	assert.True(t, isHLSSource(Source{Type: "application/vnd.apple.mpegurl"}))

	assert.False(t, isAudioSource(Source{URL: "a.mp4", Type: TypeUnknown}))
	assert.False(t, isHLSSource(Source{URL: "a.mp4", Type: TypeUnknown}))
}

func TestSourcesEqual(t *testing.T) {
	a := []Source{{URL: "x", Type: TypeUnknown}}
	b := []Source{{URL: "x", Type: TypeUnknown}}
	assert.True(t, SourcesEqual(a, b))
	assert.False(t, SourcesEqual(a, nil))
	assert.False(t, SourcesEqual(a, []Source{{URL: "y", Type: TypeUnknown}}))
}
