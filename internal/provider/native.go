package provider

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/arviel/mediactl/internal/engine"
	"github.com/arviel/mediactl/internal/media"
)

// Native plays direct audio/video sources through the FFmpeg decode
// engine. Seeks restart the decode session at the requested offset.
type Native struct {
	log  *slog.Logger
	kind media.MediaType
	hook Hooks
	sink Sink

	mu      sync.Mutex
	src     media.Source
	session *engine.Session
	pump    *pumpState
	pos     float64
	volume  float64
	muted   bool
	playing bool
}

type pumpState struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewNative(kind media.MediaType, hook Hooks, sink Sink, log *slog.Logger) *Native {
	if log == nil {
		log = slog.Default()
	}
	if sink == nil {
		sink = DiscardSink()
	}
	return &Native{log: log, kind: kind, hook: hook, sink: sink, volume: 1}
}

func (n *Native) Name() string {
	if n.kind == media.MediaTypeAudio {
		return "audio"
	}
	return "video"
}

// LoadSource probes the input and reports duration, seekable range and
// readiness.
func (n *Native) LoadSource(ctx context.Context, src media.Source, _ media.Preload) error {
	if src.URL == "" {
		return errors.New("native provider requires a URL source")
	}

	info, err := engine.Probe(ctx, src.URL)
	if err != nil {
		return fmt.Errorf("probe %s: %w", src.URL, err)
	}

	n.mu.Lock()
	n.src = src
	n.pos = 0
	n.mu.Unlock()

	n.hook.duration(info.Duration)
	if info.Duration > 0 {
		n.hook.seekable(media.TimeRange{Start: 0, End: info.Duration})
	}
	n.hook.canPlay()
	return nil
}

func (n *Native) Play(ctx context.Context) error {
	n.mu.Lock()
	if n.playing {
		n.mu.Unlock()
		return nil
	}
	url := n.src.URL
	pos := n.pos
	n.mu.Unlock()

	if url == "" {
		return errors.New("no source loaded")
	}

	sess, err := engine.Open(ctx, url, pos)
	if err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}

	pumpCtx, cancel := context.WithCancel(context.Background())
	p := &pumpState{cancel: cancel, done: make(chan struct{})}

	n.mu.Lock()
	n.stopLocked()
	n.session = sess
	n.pump = p
	n.playing = true
	n.mu.Unlock()

	go n.run(pumpCtx, sess, p)
	return nil
}

func (n *Native) Pause(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.playing {
		return nil
	}
	n.playing = false
	n.stopLocked()
	return nil
}

func (n *Native) SetCurrentTime(seconds float64) {
	n.mu.Lock()
	n.pos = seconds
	resume := n.playing
	n.playing = false
	n.stopLocked()
	n.mu.Unlock()

	n.hook.time(seconds)
	if resume {
		if err := n.Play(context.Background()); err != nil {
			n.log.Warn("seek restart failed", "err", err)
		}
	}
}

func (n *Native) SetVolume(volume float64) {
	n.mu.Lock()
	n.volume = volume
	n.mu.Unlock()
}

func (n *Native) SetMuted(muted bool) {
	n.mu.Lock()
	n.muted = muted
	n.mu.Unlock()
}

// Close releases the active decode session, if any.
func (n *Native) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.playing = false
	n.stopLocked()
	return nil
}

// stopLocked tears down the pump and session. Caller holds n.mu; the
// session position is preserved for resume.
func (n *Native) stopLocked() {
	if n.pump != nil {
		n.pump.cancel()
		n.pump = nil
	}
	if n.session != nil {
		n.pos = n.session.Position()
		n.session.Close()
		n.session = nil
	}
}

// run pumps decoded frames at realtime pace, applying volume scaling,
// until EOF or cancellation.
func (n *Native) run(ctx context.Context, sess *engine.Session, p *pumpState) {
	defer close(p.done)

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
				n.finish(sess)
			} else if !errors.Is(err, io.ErrClosedPipe) {
				n.log.Warn("pcm read failed", "err", err)
			}
			return
		}

		n.mu.Lock()
		vol := n.volume
		if n.muted {
			vol = 0
		}
		n.mu.Unlock()

		scalePCM(buf, vol)
		if err := n.sink.WritePCM(buf); err != nil {
			n.log.Warn("sink write failed", "err", err)
			return
		}

		n.hook.time(sess.Position())

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

func (n *Native) finish(sess *engine.Session) {
	n.mu.Lock()
	if n.session == sess {
		n.playing = false
		n.pos = sess.Position()
		n.session = nil
		sess.Close()
	}
	n.mu.Unlock()
	n.hook.ended()
}

// scalePCM applies linear gain to interleaved s16le samples in place.
func scalePCM(b []byte, gain float64) {
	if gain >= 1 {
		return
	}
	if gain <= 0 {
		for i := range b {
			b[i] = 0
		}
		return
	}
	for i := 0; i+1 < len(b); i += 2 {
		v := int16(binary.LittleEndian.Uint16(b[i : i+2]))
		scaled := math.Round(float64(v) * gain)
		binary.LittleEndian.PutUint16(b[i:i+2], uint16(int16(scaled)))
	}
}
