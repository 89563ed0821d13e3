package hlsctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCamelToKebab(t *testing.T) {
	cases := map[string]string{
		"hlsLevelLoaded":    "hls-level-loaded",
		"hlsError":          "hls-error",
		"hlsMediaAttached":  "hls-media-attached",
		"plain":             "plain",
		"alreadyKebabLess":  "already-kebab-less",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, CamelToKebab(in), "CamelToKebab(%q)", in)
	}
}

func TestKebabToCamel(t *testing.T) {
	cases := map[string]string{
		"hls-level-loaded": "hlsLevelLoaded",
		"hls-error":        "hlsError",
		"plain":            "plain",
		"":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, KebabToCamel(in), "KebabToCamel(%q)", in)
	}
}

func TestCasingRoundTrip(t *testing.T) {
	names := []string{"hlsError", "hlsLevelLoaded", "hlsManifestLoaded", "hlsMediaAttached", "hlsFragBuffered"}
	for _, n := range names {
		assert.Equal(t, n, KebabToCamel(CamelToKebab(n)))
	}
	kebabs := []string{"hls-error", "hls-level-loaded", "x"}
	for _, n := range kebabs {
		assert.Equal(t, n, CamelToKebab(KebabToCamel(n)))
	}
}
