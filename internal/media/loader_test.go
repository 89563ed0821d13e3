package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectSourceLastMatchWins(t *testing.T) {
	sources := Normalize([]Source{
		{URL: "https://x/a.mp4"},
		{URL: "https://x/b.m3u8"},
	})
	loaders := DefaultLoaders(false, func() bool { return false })

	src, loader, ok := SelectSource(sources, loaders)
	require.True(t, ok)
	// the later candidate takes priority even though both are playable
	assert.Equal(t, "https://x/b.m3u8", src.URL)
	assert.Equal(t, "hls", loader.Name())
	assert.Equal(t, MediaTypeVideo, loader.MediaType(src))
}

func TestSelectSourceLaterLoaderWinsPerSource(t *testing.T) {
	sources := Normalize([]Source{{URL: "https://x/a.mp4"}})

	// two loaders match the same source; the later one must win
	loaders := []Loader{VideoLoader{}, HLSLoader{NativeSupported: func() bool { return true }}}
	_, loader, ok := SelectSource(sources, loaders)
	require.True(t, ok)
	assert.Equal(t, "hls", loader.Name())
}

func TestSelectSourceNoMatch(t *testing.T) {
	sources := Normalize([]Source{{URL: "https://x/readme.txt"}})
	_, _, ok := SelectSource(sources, DefaultLoaders(false, func() bool { return false }))
	assert.False(t, ok)
}

func TestDefaultLoadersOrder(t *testing.T) {
	names := func(ls []Loader) []string {
		out := make([]string, len(ls))
		for i, l := range ls {
			out[i] = l.Name()
		}
		return out
	}

	assert.Equal(t, []string{"hls", "video", "audio"}, names(DefaultLoaders(false, nil)))
	assert.Equal(t, []string{"video", "audio", "hls"}, names(DefaultLoaders(true, nil)))
}

func TestPreferenceFlagRoutesStreamingToNative(t *testing.T) {
	// With native HLS support and native preference, a plain video file
	// must land on the native pipeline even though the adaptive loader
	// could also play it.
	sources := Normalize([]Source{{URL: "https://x/a.mp4"}})
	native := func() bool { return true }

	_, loader, ok := SelectSource(sources, DefaultLoaders(false, native))
	require.True(t, ok)
	assert.Equal(t, "hls", loader.Name())

	_, loader, ok = SelectSource(sources, DefaultLoaders(true, native))
	require.True(t, ok)
	assert.Equal(t, "hls", loader.Name()) // hls still last in preferNative order

	// The flag flips relative order: with preferNative the native video
	// loader is probed first, so for a source only the native loaders
	// accept, the last accepting loader decides.
	_, loader, ok = SelectSource(sources, DefaultLoaders(true, func() bool { return false }))
	require.True(t, ok)
	assert.Equal(t, "video", loader.Name())
}

func TestHLSLoaderNativeFallback(t *testing.T) {
	l := HLSLoader{NativeSupported: func() bool { return true }}
	assert.True(t, l.CanPlay(Source{URL: "a.m3u8", Type: TypeUnknown}))
	assert.True(t, l.CanPlay(Source{URL: "a.mp4", Type: TypeUnknown}))

	l = HLSLoader{NativeSupported: func() bool { return false }}
	assert.True(t, l.CanPlay(Source{URL: "a.m3u8", Type: TypeUnknown}))
	assert.False(t, l.CanPlay(Source{URL: "a.mp4", Type: TypeUnknown}))
}
