package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arviel/mediactl/internal/config"
	"github.com/arviel/mediactl/internal/resolve"
)

func runConsole(t *testing.T, script string) string {
	t.Helper()
	cfg := &config.Config{DataDir: t.TempDir()}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	resolver := resolve.NewResolver(cfg, nil, nil, logger)

	var out bytes.Buffer
	c := NewConsole(cfg, nil, resolver, strings.NewReader(script), &out, logger)
	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func TestConsoleQuit(t *testing.T) {
	out := runConsole(t, "quit\nstatus\n")
	// nothing after quit is processed
	assert.NotContains(t, out, "paused:")
}

func TestConsoleStatus(t *testing.T) {
	out := runConsole(t, "status\n")
	assert.Contains(t, out, "paused:      true")
	assert.Contains(t, out, "volume:      100")
	assert.Contains(t, out, "time:        0:00 / 0:00")
}

func TestConsoleUnknownCommand(t *testing.T) {
	out := runConsole(t, "frobnicate\n")
	assert.Contains(t, out, `unknown command "frobnicate"`)
}

func TestConsoleLoopToggle(t *testing.T) {
	out := runConsole(t, "loop on\nloop\n")
	assert.Contains(t, out, "loop is on")
}

func TestConsoleVolumeValidation(t *testing.T) {
	out := runConsole(t, "volume 150\nvolume\n")
	assert.Contains(t, out, "usage: volume <0-100>")
	assert.Contains(t, out, "volume is 100")
}

func TestConsolePlayBeforeLoad(t *testing.T) {
	out := runConsole(t, "play\n")
	assert.Contains(t, out, "media not ready")
}

func TestConsoleFullscreenRoundTrip(t *testing.T) {
	out := runConsole(t, "fullscreen on\nfullscreen\n")
	assert.Contains(t, out, "fullscreen is on")
}
