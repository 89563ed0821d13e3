package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyTime(t *testing.T) {
	assert.Equal(t, "0:00", PrettyTime(0))
	assert.Equal(t, "1:05", PrettyTime(65))
	assert.Equal(t, "1:01:05", PrettyTime(3665))
}

func TestParseDurationString(t *testing.T) {
	assert.Equal(t, 90, ParseDurationString("90"))
	assert.Equal(t, 90, ParseDurationString("1m30s"))
	assert.Equal(t, 3665, ParseDurationString("1h1m5s"))
	assert.Equal(t, 3600, ParseDurationString("1h"))
	assert.Equal(t, 0, ParseDurationString("garbage"))
}

func TestRandomUserAgent(t *testing.T) {
	ua := RandomUserAgent()
	assert.True(t, strings.HasPrefix(ua, "Mozilla/5.0"))
	assert.Contains(t, ua, "Chrome/")
}
