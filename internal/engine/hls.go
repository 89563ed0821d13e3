package engine

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/arviel/mediactl/internal/hlsctl"
)

// Transport is the optional playback-control surface of an engine,
// used by the adaptive provider to drive the decode session.
type Transport interface {
	ResumePlayback(offset float64) error
	PausePlayback() float64
	Position() float64
	PCMSession() *Session
}

// HLSEngine is the default adaptive-streaming engine: FFmpeg demuxes
// the HLS playlist directly, so levels, segments and recovery all ride
// on the decode session.
type HLSEngine struct {
	log *slog.Logger
	cfg hlsctl.Config

	mu       sync.Mutex
	url      string
	surface  hlsctl.MediaSurface
	session  *Session
	position float64
	live     bool
	loaded   bool
	nextID   int
	subs     map[string]map[int]func(data any)
}

// NewFactory returns an engine factory producing FFmpeg-backed engines.
func NewFactory(log *slog.Logger) hlsctl.EngineFactory {
	if log == nil {
		log = slog.Default()
	}
	return func(cfg hlsctl.Config) (hlsctl.Engine, error) {
		return &HLSEngine{
			log:  log,
			cfg:  cfg,
			subs: make(map[string]map[int]func(data any)),
		}, nil
	}
}

func (e *HLSEngine) On(event string, fn func(data any)) (off func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subs[event] == nil {
		e.subs[event] = make(map[int]func(data any))
	}
	id := e.nextID
	e.nextID++
	e.subs[event][id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs[event], id)
	}
}

func (e *HLSEngine) emit(event string, data any) {
	e.mu.Lock()
	fns := make([]func(data any), 0, len(e.subs[event]))
	for _, fn := range e.subs[event] {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn(data)
	}
}

func (e *HLSEngine) AttachMedia(surface hlsctl.MediaSurface) error {
	e.mu.Lock()
	e.surface = surface
	e.mu.Unlock()
	e.emit(hlsctl.EventMediaAttached, nil)
	return nil
}

// LoadSource sets the playlist URL for the next StartLoad.
func (e *HLSEngine) LoadSource(url string) {
	e.mu.Lock()
	e.url = url
	e.loaded = false
	e.mu.Unlock()
}

// StartLoad probes the playlist and announces manifest/level metadata.
// Also the network-error recovery path: a reload re-probes from the
// current position without tearing the instance down.
func (e *HLSEngine) StartLoad() {
	e.mu.Lock()
	url := e.url
	e.mu.Unlock()
	if url == "" {
		return
	}

	go func() {
		info, err := Probe(context.Background(), url)
		if err != nil {
			e.emit(hlsctl.EventError, hlsctl.ErrorData{
				Fatal:    true,
				Category: hlsctl.ErrorCategoryNetwork,
				Err:      err,
			})
			return
		}

		e.mu.Lock()
		e.live = info.Live
		e.loaded = true
		e.mu.Unlock()

		e.emit(hlsctl.EventManifestLoaded, info)
		e.emit(hlsctl.EventLevelLoaded, hlsctl.LevelData{
			Live:          info.Live,
			TotalDuration: info.Duration,
		})
	}()
}

// RecoverMediaError reopens the decode session in place at the last
// known position.
func (e *HLSEngine) RecoverMediaError() {
	e.mu.Lock()
	pos := e.position
	if e.session != nil {
		pos = e.session.Position()
	}
	e.mu.Unlock()

	e.log.Warn("recovering media error", "position", pos)
	if err := e.ResumePlayback(pos); err != nil {
		e.emit(hlsctl.EventError, hlsctl.ErrorData{
			Fatal:    true,
			Category: hlsctl.ErrorCategoryOther,
			Err:      err,
		})
	}
}

func (e *HLSEngine) Destroy() {
	e.mu.Lock()
	sess := e.session
	e.session = nil
	e.subs = make(map[string]map[int]func(data any))
	e.surface = nil
	e.mu.Unlock()
	if sess != nil {
		sess.Close()
	}
}

func (e *HLSEngine) LiveSyncPosition() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.live || e.session == nil {
		return math.NaN()
	}
	return e.session.Position()
}

// ResumePlayback opens the decode session at offset, replacing any
// previous one.
func (e *HLSEngine) ResumePlayback(offset float64) error {
	e.mu.Lock()
	url := e.url
	old := e.session
	e.mu.Unlock()

	if old != nil {
		old.Close()
	}

	sess, err := Open(context.Background(), url, offset)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.session = sess
	e.position = offset
	e.mu.Unlock()
	return nil
}

// PausePlayback closes the decode session and returns the position to
// resume from.
func (e *HLSEngine) PausePlayback() float64 {
	e.mu.Lock()
	sess := e.session
	e.session = nil
	e.mu.Unlock()

	if sess == nil {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.position
	}
	pos := sess.Position()
	sess.Close()

	e.mu.Lock()
	e.position = pos
	e.mu.Unlock()
	return pos
}

func (e *HLSEngine) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		return e.session.Position()
	}
	return e.position
}

func (e *HLSEngine) PCMSession() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}
