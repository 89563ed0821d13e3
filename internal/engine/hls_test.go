package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arviel/mediactl/internal/hlsctl"
)

type testSurface struct{ forced int }

func (s *testSurface) ForceCanPlay() { s.forced++ }

func newEngine(t *testing.T) *HLSEngine {
	t.Helper()
	factory := NewFactory(nil)
	eng, err := factory(hlsctl.Config{})
	require.NoError(t, err)
	return eng.(*HLSEngine)
}

func TestEngineSubscription(t *testing.T) {
	eng := newEngine(t)

	got := 0
	off := eng.On("custom", func(any) { got++ })
	eng.emit("custom", nil)
	assert.Equal(t, 1, got)

	off()
	eng.emit("custom", nil)
	assert.Equal(t, 1, got)
}

func TestAttachMediaAnnounces(t *testing.T) {
	eng := newEngine(t)
	surface := &testSurface{}

	attached := 0
	eng.On(hlsctl.EventMediaAttached, func(any) { attached++ })

	require.NoError(t, eng.AttachMedia(surface))
	assert.Equal(t, 1, attached)
}

func TestStartLoadWithoutSourceIsNoOp(t *testing.T) {
	eng := newEngine(t)

	failed := make(chan struct{}, 1)
	eng.On(hlsctl.EventError, func(any) { failed <- struct{}{} })

	eng.StartLoad()
	select {
	case <-failed:
		t.Fatal("no source loaded, StartLoad must not emit")
	default:
	}
}

func TestLiveSyncPositionUnknown(t *testing.T) {
	eng := newEngine(t)
	assert.True(t, math.IsNaN(eng.LiveSyncPosition()))
}

func TestDestroyClearsSubscriptions(t *testing.T) {
	eng := newEngine(t)
	got := 0
	eng.On("custom", func(any) { got++ })

	eng.Destroy()
	eng.emit("custom", nil)
	assert.Zero(t, got)
}

func TestPausePlaybackWithoutSession(t *testing.T) {
	eng := newEngine(t)
	assert.Zero(t, eng.PausePlayback())
	assert.Zero(t, eng.Position())
	assert.Nil(t, eng.PCMSession())
}
