package media

import (
	"strings"
)

// Media type classification produced by loaders.
type MediaType int

const (
	MediaTypeUnknown MediaType = iota
	MediaTypeAudio
	MediaTypeVideo
)

func (t MediaType) String() string {
	switch t {
	case MediaTypeAudio:
		return "audio"
	case MediaTypeVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Sentinel source types. TypeObject marks non-URL handles (streams,
// blobs); TypeUnknown defers classification to extension/MIME sniffing
// inside loaders.
const (
	TypeObject  = "video/object"
	TypeUnknown = "?"
)

// Source is one playback candidate. Exactly one of URL or Handle is
// meaningful. Sources are derived fresh on every input change and never
// mutated in place.
type Source struct {
	URL    string
	Handle any
	Type   string
}

func (s Source) String() string {
	if s.Handle != nil {
		return TypeObject
	}
	return s.URL
}

// Equal reports whether two sources resolve to the same playback input.
func (s Source) Equal(o Source) bool {
	return s.URL == o.URL && s.Handle == o.Handle && s.Type == o.Type
}

// Normalize resolves the Type of every candidate: non-string handles and
// blob: URLs become TypeObject, any other untyped source becomes the
// TypeUnknown sentinel. The input slice is not modified.
func Normalize(in []Source) []Source {
	out := make([]Source, 0, len(in))
	for _, s := range in {
		if s.Type == "" {
			if s.Handle != nil || strings.HasPrefix(s.URL, "blob:") {
				s.Type = TypeObject
			} else {
				s.Type = TypeUnknown
			}
		}
		out = append(out, s)
	}
	return out
}

// SourcesEqual compares two normalized candidate lists element-wise.
func SourcesEqual(a, b []Source) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

var audioExtensions = map[string]bool{
	"aac": true, "flac": true, "m4a": true, "m4b": true, "mp3": true,
	"oga": true, "ogg": true, "opus": true, "wav": true, "weba": true,
}

var videoExtensions = map[string]bool{
	"3gp": true, "avi": true, "m4v": true, "mkv": true, "mov": true,
	"mp4": true, "mpeg": true, "mpg": true, "ogv": true, "webm": true,
}

var hlsExtensions = map[string]bool{
	"m3u8": true,
}

var audioTypes = map[string]bool{
	"audio/aac": true, "audio/flac": true, "audio/mp4": true,
	"audio/mpeg": true, "audio/ogg": true, "audio/opus": true,
	"audio/wav": true, "audio/webm": true, "audio/x-m4a": true,
}

var videoTypes = map[string]bool{
	"video/3gpp": true, "video/avi": true, "video/mp4": true,
	"video/mpeg": true, "video/ogg": true, "video/quicktime": true,
	"video/webm": true, "video/x-matroska": true, TypeObject: true,
}

var hlsTypes = map[string]bool{
	"application/vnd.apple.mpegurl": true,
	"application/x-mpegurl":         true,
	"application/mpegurl":           true,
	"audio/mpegurl":                 true,
	"audio/x-mpegurl":               true,
	"video/x-mpegurl":               true,
}

// extensionOf extracts the lowercase path extension of a URL-ish string,
// ignoring query and fragment.
func extensionOf(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	dot := strings.LastIndexByte(url, '.')
	if dot < 0 || dot == len(url)-1 {
		return ""
	}
	ext := url[dot+1:]
	if strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return strings.ToLower(ext)
}

func isAudioSource(s Source) bool {
	return audioTypes[strings.ToLower(s.Type)] || audioExtensions[extensionOf(s.URL)]
}

func isVideoSource(s Source) bool {
	return videoTypes[strings.ToLower(s.Type)] || videoExtensions[extensionOf(s.URL)]
}

func isHLSSource(s Source) bool {
	return hlsTypes[strings.ToLower(s.Type)] || hlsExtensions[extensionOf(s.URL)]
}
