// Package provider implements the concrete playback providers: native
// audio/video playback over the FFmpeg decode engine, and adaptive
// streaming over the managed HLS engine.
package provider

import (
	"github.com/arviel/mediactl/internal/media"
)

// Hooks let a provider publish readiness and progress back into the
// player session without owning any store fields itself.
type Hooks struct {
	OnCanPlay  func()
	OnDuration func(seconds float64)
	OnSeekable func(r media.TimeRange)
	OnTime     func(seconds float64)
	OnEnded    func()
}

func (h Hooks) canPlay() {
	if h.OnCanPlay != nil {
		h.OnCanPlay()
	}
}

func (h Hooks) duration(d float64) {
	if h.OnDuration != nil {
		h.OnDuration(d)
	}
}

func (h Hooks) seekable(r media.TimeRange) {
	if h.OnSeekable != nil {
		h.OnSeekable(r)
	}
}

func (h Hooks) time(t float64) {
	if h.OnTime != nil {
		h.OnTime(t)
	}
}

func (h Hooks) ended() {
	if h.OnEnded != nil {
		h.OnEnded()
	}
}

// Sink consumes decoded PCM. The default sink discards samples, which
// keeps headless sessions honest about pacing without an audio device.
type Sink interface {
	WritePCM(p []byte) error
}

type discardSink struct{}

func (discardSink) WritePCM([]byte) error { return nil }

// DiscardSink returns a sink that swallows all samples.
func DiscardSink() Sink { return discardSink{} }
