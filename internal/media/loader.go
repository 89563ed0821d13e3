package media

import "context"

// Loader is a capability probe: a pure function of a source deciding
// whether some provider family can play it, plus the media type that
// provider would produce.
type Loader interface {
	Name() string
	CanPlay(src Source) bool
	MediaType(src Source) MediaType
}

// Preconnector is an optional loader/provider hint that warms network
// connections before loading is permitted.
type Preconnector interface {
	Preconnect(ctx context.Context)
}

// VideoLoader probes native video playback.
type VideoLoader struct{}

func (VideoLoader) Name() string { return "video" }

func (VideoLoader) CanPlay(src Source) bool { return isVideoSource(src) }

func (VideoLoader) MediaType(Source) MediaType { return MediaTypeVideo }

// AudioLoader probes native audio playback.
type AudioLoader struct{}

func (AudioLoader) Name() string { return "audio" }

func (AudioLoader) CanPlay(src Source) bool { return isAudioSource(src) }

func (AudioLoader) MediaType(Source) MediaType { return MediaTypeAudio }

// HLSLoader probes adaptive-streaming playback. NativeSupported reports
// whether the runtime can play HLS without the streaming engine; when it
// returns true a source is accepted even if its type/extension did not
// match the HLS tables.
type HLSLoader struct {
	NativeSupported func() bool
}

func (HLSLoader) Name() string { return "hls" }

func (l HLSLoader) CanPlay(src Source) bool {
	if isHLSSource(src) {
		return true
	}
	return l.NativeSupported != nil && l.NativeSupported() && isVideoSource(src)
}

func (HLSLoader) MediaType(Source) MediaType { return MediaTypeVideo }

// DefaultLoaders returns the probe order. Adaptive streaming is tried
// before native playback unless preferNative reverses the order so
// runtimes with native HLS support keep streaming formats on the native
// pipeline.
func DefaultLoaders(preferNative bool, nativeHLS func() bool) []Loader {
	hls := HLSLoader{NativeSupported: nativeHLS}
	if preferNative {
		return []Loader{VideoLoader{}, AudioLoader{}, hls}
	}
	return []Loader{hls, VideoLoader{}, AudioLoader{}}
}

// SelectSource walks the full candidate and loader lists and keeps the
// last playable (source, loader) pair: later-listed valid sources take
// priority over earlier ones. Returns ok=false when nothing matches.
func SelectSource(sources []Source, loaders []Loader) (Source, Loader, bool) {
	var (
		src    Source
		loader Loader
		found  bool
	)
	for _, s := range sources {
		for _, l := range loaders {
			if l.CanPlay(s) {
				src, loader, found = s, l, true
			}
		}
	}
	return src, loader, found
}
