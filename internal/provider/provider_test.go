package provider

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arviel/mediactl/internal/media"
)

func pcmOf(samples ...int16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(s))
	}
	return b
}

func samplesOf(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}

func TestScalePCM(t *testing.T) {
	b := pcmOf(1000, -1000, 32767)
	scalePCM(b, 0.5)
	assert.Equal(t, []int16{500, -500, 16384}, samplesOf(b))

	b = pcmOf(1000, -1000)
	scalePCM(b, 1)
	assert.Equal(t, []int16{1000, -1000}, samplesOf(b))

	b = pcmOf(1000, -1000)
	scalePCM(b, 0)
	assert.Equal(t, []int16{0, 0}, samplesOf(b))
}

func TestHooksNilSafe(t *testing.T) {
	var h Hooks
	// none of these may panic with unset callbacks
	h.canPlay()
	h.duration(1)
	h.seekable(media.TimeRange{End: 1})
	h.time(1)
	h.ended()
}

func TestDiscardSink(t *testing.T) {
	assert.NoError(t, DiscardSink().WritePCM([]byte{1, 2, 3}))
}

func TestScreenAdapter(t *testing.T) {
	s := NewScreenAdapter(true)
	assert.True(t, s.Supported())
	assert.False(t, s.Active())

	require.NoError(t, s.Enter(context.Background()))
	assert.True(t, s.Active())

	require.NoError(t, s.Exit(context.Background()))
	assert.False(t, s.Active())

	unsupported := NewScreenAdapter(false)
	assert.Error(t, unsupported.Enter(context.Background()))
}

func TestOrientationAdapter(t *testing.T) {
	o := NewOrientationAdapter(true)
	assert.False(t, o.Locked())

	require.NoError(t, o.Lock(context.Background(), media.OrientationLandscape))
	assert.True(t, o.Locked())
	lock, ok := o.CurrentLock()
	assert.True(t, ok)
	assert.Equal(t, media.OrientationLandscape, lock)

	require.NoError(t, o.Unlock(context.Background()))
	assert.False(t, o.Locked())

	unsupported := NewOrientationAdapter(false)
	assert.Error(t, unsupported.Lock(context.Background(), media.OrientationPortrait))
}
