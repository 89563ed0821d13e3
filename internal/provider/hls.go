package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/arviel/mediactl/internal/engine"
	"github.com/arviel/mediactl/internal/hlsctl"
	"github.com/arviel/mediactl/internal/media"
)

// sourceLoader is the optional engine surface for handing over the
// playlist URL before StartLoad.
type sourceLoader interface {
	LoadSource(url string)
}

// Adaptive streams HLS sources through the managed adaptive engine.
// The lifecycle controller owns engine creation, event translation and
// recovery; the provider drives transport.
type Adaptive struct {
	log  *slog.Logger
	hook Hooks
	sink Sink
	ctl  *hlsctl.Controller

	mu      sync.Mutex
	pos     float64
	volume  float64
	muted   bool
	playing bool
	pump    *pumpState
}

func NewAdaptive(ctl *hlsctl.Controller, hook Hooks, sink Sink, log *slog.Logger) *Adaptive {
	if log == nil {
		log = slog.Default()
	}
	if sink == nil {
		sink = DiscardSink()
	}
	return &Adaptive{log: log, hook: hook, sink: sink, ctl: ctl, volume: 1}
}

func (a *Adaptive) Name() string { return "hls" }

// ForceCanPlay implements hlsctl.MediaSurface: the engine forces the
// readiness milestone the surface cannot infer on its own.
func (a *Adaptive) ForceCanPlay() { a.hook.canPlay() }

// LoadSource hands the playlist to the engine via the lifecycle
// controller and begins loading.
func (a *Adaptive) LoadSource(_ context.Context, src media.Source, _ media.Preload) error {
	if src.URL == "" {
		return errors.New("adaptive provider requires a URL source")
	}

	if err := a.ctl.Setup(a, nil); err != nil {
		return fmt.Errorf("engine setup: %w", err)
	}

	a.ctl.OnInstance(func(eng hlsctl.Engine) {
		if sl, ok := eng.(sourceLoader); ok {
			sl.LoadSource(src.URL)
		}
		eng.StartLoad()
	})
	return nil
}

// transport resolves the engine's optional playback-control surface.
func (a *Adaptive) transport() (engine.Transport, error) {
	eng := a.ctl.Instance().Get()
	if eng == nil {
		return nil, errors.New("adaptive engine not attached")
	}
	t, ok := eng.(engine.Transport)
	if !ok {
		return nil, errors.New("adaptive engine has no transport surface")
	}
	return t, nil
}

func (a *Adaptive) Play(context.Context) error {
	a.mu.Lock()
	if a.playing {
		a.mu.Unlock()
		return nil
	}
	pos := a.pos
	a.mu.Unlock()

	t, err := a.transport()
	if err != nil {
		return err
	}
	if err := t.ResumePlayback(pos); err != nil {
		return err
	}

	sess := t.PCMSession()
	pumpCtx, cancel := context.WithCancel(context.Background())
	p := &pumpState{cancel: cancel, done: make(chan struct{})}

	a.mu.Lock()
	a.stopPumpLocked()
	a.pump = p
	a.playing = true
	a.mu.Unlock()

	go a.run(pumpCtx, sess, p)
	return nil
}

func (a *Adaptive) Pause(context.Context) error {
	a.mu.Lock()
	if !a.playing {
		a.mu.Unlock()
		return nil
	}
	a.playing = false
	a.stopPumpLocked()
	a.mu.Unlock()

	t, err := a.transport()
	if err != nil {
		return err
	}
	pos := t.PausePlayback()
	a.mu.Lock()
	a.pos = pos
	a.mu.Unlock()
	return nil
}

func (a *Adaptive) SetCurrentTime(seconds float64) {
	a.mu.Lock()
	a.pos = seconds
	resume := a.playing
	a.playing = false
	a.stopPumpLocked()
	a.mu.Unlock()

	a.hook.time(seconds)
	if resume {
		if err := a.Play(context.Background()); err != nil {
			a.log.Warn("adaptive seek restart failed", "err", err)
		}
	}
}

func (a *Adaptive) SetVolume(volume float64) {
	a.mu.Lock()
	a.volume = volume
	a.mu.Unlock()
}

func (a *Adaptive) SetMuted(muted bool) {
	a.mu.Lock()
	a.muted = muted
	a.mu.Unlock()
}

// Close tears the engine down through the controller.
func (a *Adaptive) Close() error {
	a.mu.Lock()
	a.playing = false
	a.stopPumpLocked()
	a.mu.Unlock()
	a.ctl.Teardown()
	return nil
}

func (a *Adaptive) stopPumpLocked() {
	if a.pump != nil {
		a.pump.cancel()
		a.pump = nil
	}
}

func (a *Adaptive) run(ctx context.Context, sess *engine.Session, p *pumpState) {
	defer close(p.done)
	if sess == nil {
		return
	}

	buf := make([]byte, engine.FrameBytes)
	frameDur := time.Duration(engine.FrameSamples) * time.Second / engine.SampleRate
	next := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, err := io.ReadFull(sess.PCM(), buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				a.mu.Lock()
				a.playing = false
				a.pos = sess.Position()
				a.mu.Unlock()
				a.hook.ended()
			}
			return
		}

		a.mu.Lock()
		gain := a.volume
		if a.muted {
			gain = 0
		}
		a.pos = sess.Position()
		a.mu.Unlock()

		scalePCM(buf, gain)
		if err := a.sink.WritePCM(buf); err != nil {
			a.log.Warn("sink write failed", "err", err)
			return
		}

		a.hook.time(sess.Position())

		next = next.Add(frameDur)
		if d := time.Until(next); d > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(d):
			}
		}
	}
}
