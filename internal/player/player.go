// Package player assembles the per-session playback machinery: the
// observable store, the request queue and manager, the source selector
// and the adaptive-streaming lifecycle controller.
package player

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/arviel/mediactl/internal/config"
	"github.com/arviel/mediactl/internal/engine"
	"github.com/arviel/mediactl/internal/hlsctl"
	"github.com/arviel/mediactl/internal/media"
	"github.com/arviel/mediactl/internal/provider"
	"github.com/arviel/mediactl/internal/repository"
	"github.com/arviel/mediactl/internal/rx"
)

const DefaultVolume = 100

// Player is one playback session. All state reads go through Store();
// all mutations go through the request methods, which serialize intent
// through the request queue.
type Player struct {
	log       *slog.Logger
	cfg       *config.Config
	repo      *repository.Repo
	sessionID string

	store     *media.Store
	queue     *media.RequestQueue
	events    *media.Dispatcher
	selector  *media.Selector
	manager   *media.RequestManager
	hls       *hlsctl.Controller
	idle      *media.IdleTimer
	scheduler rx.Scheduler

	pw *media.PlaybackWriter
	sw *media.StreamWriter

	loop atomic.Bool

	closeOnce sync.Once
}

func NewPlayer(cfg *config.Config, repo *repository.Repo, sessionID string, log *slog.Logger) *Player {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("session", sessionID)

	p := &Player{
		log:       log,
		cfg:       cfg,
		repo:      repo,
		sessionID: sessionID,
		store:     media.NewStore(),
		queue:     media.NewRequestQueue(),
		events:    media.NewDispatcher(),
		scheduler: &rx.TickScheduler{},
	}
	p.pw = p.store.PlaybackWriter()
	p.sw = p.store.StreamWriter()

	p.hls = hlsctl.NewController(
		p.store,
		p.events,
		engine.NewFactory(log),
		hlsctl.UserConfig{LowLatency: cfg.LowLatency, LowLatencyExplicit: cfg.LowLatencyExplicit},
		p.scheduler,
		log,
	)

	p.idle = media.NewIdleTimer(cfg.IdleTimeout, p.onIdle)

	p.manager = media.NewRequestManager(p.store, p.events, p.queue, media.RequestManagerConfig{
		Fullscreen:      provider.NewScreenAdapter(true),
		Orientation:     provider.NewOrientationAdapter(cfg.OrientationLock != ""),
		OrientationLock: media.OrientationLock(cfg.OrientationLock),
		Scheduler:       p.scheduler,
		Idle:            p.idle,
		Logger:          log,
	})

	// FFmpeg demuxes HLS playlists directly, so native playback of
	// streaming formats is always available.
	nativeHLS := func() bool { return true }
	p.selector = media.NewSelector(p.store, p.events, p.queue, p.makeProvider, nativeHLS, log)
	p.selector.SetPreferNativeHLS(cfg.PreferNativeHLS)

	p.applySettings()
	return p
}

// applySettings folds persisted per-session preferences into the fresh
// store.
func (p *Player) applySettings() {
	if p.repo == nil {
		return
	}
	s, err := p.repo.UpsertSettings(context.Background(), p.sessionID)
	if err != nil || s == nil {
		return
	}
	vol := float64(s.DefaultVolume) / 100
	if vol < 0 || vol > 1 {
		vol = 1
	}
	p.pw.SetVolume(vol)
	p.pw.SetMuted(s.DefaultMuted)
	if s.PreferNativeHLS {
		p.selector.SetPreferNativeHLS(true)
	}
}

func (p *Player) hooks() provider.Hooks {
	return provider.Hooks{
		OnCanPlay: func() {
			p.pw.SetCanPlay(true)
		},
		OnDuration: func(d float64) {
			p.sw.SetDuration(d)
			p.events.Dispatch(media.Event{Type: media.EventDurationChange, Detail: d})
		},
		OnSeekable: func(r media.TimeRange) {
			p.pw.SetSeekable(r)
			p.pw.SetCanSeek(r.End > r.Start)
		},
		OnTime: func(t float64) {
			p.pw.SetCurrentTime(t)
		},
		OnEnded: p.onEnded,
	}
}

func (p *Player) onEnded() {
	p.pw.SetPaused(true)
	p.pw.SetEnded(true)
	if p.loop.Load() {
		p.manager.Loop(context.Background(), nil)
	}
}

// makeProvider is the selector's provider factory.
func (p *Player) makeProvider(loader media.Loader, src media.Source) (media.Provider, error) {
	sink := provider.DiscardSink()
	switch loader.Name() {
	case "hls":
		return provider.NewAdaptive(p.hls, p.hooks(), sink, p.log), nil
	case "audio":
		return provider.NewNative(media.MediaTypeAudio, p.hooks(), sink, p.log), nil
	case "video":
		return provider.NewNative(media.MediaTypeVideo, p.hooks(), sink, p.log), nil
	}
	return nil, fmt.Errorf("no provider for loader %q", loader.Name())
}

func (p *Player) onIdle() {
	p.log.Info("user idle, pausing playback")
	if err := p.manager.Pause(context.Background(), nil); err != nil {
		p.log.Debug("idle pause skipped", "err", err)
	}
}

// Store exposes the observable state for reads and subscriptions.
func (p *Player) Store() *media.Store { return p.store }

// Events exposes the player event bus.
func (p *Player) Events() *media.Dispatcher { return p.events }

func (p *Player) trusted() *media.Request {
	p.idle.Activity()
	return &media.Request{Trusted: true}
}

// SetSources replaces the candidate source list and permits loading.
func (p *Player) SetSources(srcs []media.Source) {
	p.selector.SetSources(srcs)
	p.manager.StartLoading(p.trusted())
}

func (p *Player) SetPreferNativeHLS(v bool) { p.selector.SetPreferNativeHLS(v) }

func (p *Player) SetStreamTypeHint(hint media.StreamType) { p.sw.SetStreamType(hint) }

func (p *Player) Play(ctx context.Context) error { return p.manager.Play(ctx, p.trusted()) }

func (p *Player) Pause(ctx context.Context) error { return p.manager.Pause(ctx, p.trusted()) }

func (p *Player) Seek(seconds float64) error {
	req := p.trusted()
	p.manager.Seeking(seconds, req)
	return p.manager.Seek(seconds, req)
}

func (p *Player) SeekToLiveEdge() { p.manager.SeekToLiveEdge(p.trusted()) }

func (p *Player) SetVolume(volume float64) { p.manager.SetVolume(volume, p.trusted()) }

func (p *Player) Mute()   { p.manager.Mute(p.trusted()) }
func (p *Player) Unmute() { p.manager.Unmute(p.trusted()) }

func (p *Player) EnterFullscreen(ctx context.Context) error {
	return p.manager.EnterFullscreen(ctx, p.trusted())
}

func (p *Player) ExitFullscreen(ctx context.Context) error {
	return p.manager.ExitFullscreen(ctx, p.trusted())
}

func (p *Player) PauseIdleTracking()  { p.manager.PauseIdle(p.trusted()) }
func (p *Player) ResumeIdleTracking() { p.manager.ResumeIdle(p.trusted()) }

func (p *Player) ShowPoster() { p.manager.ShowPoster() }
func (p *Player) HidePoster() { p.manager.HidePoster() }

// SetLoop arms or disarms replay-on-end.
func (p *Player) SetLoop(v bool) { p.loop.Store(v) }

func (p *Player) Looping() bool { return p.loop.Load() }

// Close tears down selection, any attached provider and the engine.
func (p *Player) Close() {
	p.closeOnce.Do(func() {
		p.idle.Stop()
		p.selector.Close()
		p.hls.Teardown()
	})
}
