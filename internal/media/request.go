package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/arviel/mediactl/internal/rx"
)

var (
	// ErrNotReady is returned when a provider-dependent request arrives
	// before the provider reports the can-play milestone.
	ErrNotReady = errors.New("media not ready")

	// ErrFullscreenUnsupported is returned when neither the player nor
	// the attached provider exposes a fullscreen surface.
	ErrFullscreenUnsupported = errors.New("fullscreen not supported")
)

// Volume restored when unmuting a session whose volume is exactly zero,
// so unmuting is always audible.
const unmuteVolumeFloor = 0.25

// Seek targets are pulled this far inside the seekable range to avoid
// boundary discontinuities.
const seekBoundaryPad = 0.1

// A trusted seek landing this far behind the live edge marks the user
// as intentionally behind it.
const behindLiveEdgeThreshold = 2.0

// PlayFailDetail is the detail payload of a play-fail event.
type PlayFailDetail struct {
	Autoplay bool
}

// RequestManager validates discrete playback intents against current
// state, forwards them to the attached provider, and reconciles
// failures back into observable state. It is the sole writer of the
// store's playback-intent fields.
type RequestManager struct {
	log       *slog.Logger
	store     *Store
	w         *PlaybackWriter
	queue     *RequestQueue
	events    *Dispatcher
	scheduler rx.Scheduler
	idle      *IdleTimer

	fullscreen      FullscreenAdapter
	orientation     OrientationAdapter
	orientationLock OrientationLock
}

// RequestManagerConfig carries the optional collaborators.
type RequestManagerConfig struct {
	Fullscreen      FullscreenAdapter
	Orientation     OrientationAdapter
	OrientationLock OrientationLock
	Scheduler       rx.Scheduler
	Idle            *IdleTimer
	Logger          *slog.Logger
}

func NewRequestManager(store *Store, events *Dispatcher, queue *RequestQueue, cfg RequestManagerConfig) *RequestManager {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	sched := cfg.Scheduler
	if sched == nil {
		sched = &rx.TickScheduler{}
	}
	return &RequestManager{
		log:             log,
		store:           store,
		w:               store.PlaybackWriter(),
		queue:           queue,
		events:          events,
		scheduler:       sched,
		idle:            cfg.Idle,
		fullscreen:      cfg.Fullscreen,
		orientation:     cfg.Orientation,
		orientationLock: cfg.OrientationLock,
	}
}

// provider returns the attached provider once the can-play milestone is
// reached. Provider-dependent requests arriving earlier are a fatal,
// surfaced error rather than a silent no-op.
func (m *RequestManager) provider(action string) (Provider, error) {
	prov := m.store.Provider().Get()
	if prov == nil || !m.store.CanPlay().Get() {
		return nil, fmt.Errorf("%s request: %w", action, ErrNotReady)
	}
	return prov, nil
}

// StartLoading permits media loading, which cascades into provider
// setup. No-op when loading is already permitted.
func (m *RequestManager) StartLoading(req *Request) {
	if m.store.CanLoad().Get() {
		return
	}
	m.queue.Enqueue(withType(req, RequestLoad))
	m.w.SetCanLoad(true)
}

// Mute is a no-op when already muted.
func (m *RequestManager) Mute(req *Request) {
	if m.store.Muted().Get() {
		return
	}
	m.queue.Enqueue(withType(req, RequestVolume))
	m.w.SetMuted(true)
	if prov := m.store.Provider().Get(); prov != nil {
		prov.SetMuted(true)
	}
}

// Unmute restores the floor volume when the session volume is exactly
// zero so unmuting always produces audible output.
func (m *RequestManager) Unmute(req *Request) {
	if !m.store.Muted().Get() {
		return
	}
	m.queue.Enqueue(withType(req, RequestVolume))
	if m.store.Volume().Get() == 0 {
		m.w.SetVolume(unmuteVolumeFloor)
		if prov := m.store.Provider().Get(); prov != nil {
			prov.SetVolume(unmuteVolumeFloor)
		}
	}
	m.w.SetMuted(false)
	if prov := m.store.Provider().Get(); prov != nil {
		prov.SetMuted(false)
	}
}

// Play forwards a play intent to the provider. Rejections surface as a
// play-fail event carrying the cause and an autoplay flag.
func (m *RequestManager) Play(ctx context.Context, req *Request) error {
	if !m.store.Paused().Get() {
		return nil
	}
	prov, err := m.provider("play")
	if err != nil {
		return err
	}

	m.queue.Enqueue(withType(req, RequestPlay))
	if err := prov.Play(ctx); err != nil {
		trigger := m.queue.Serve(RequestPlay)
		m.events.Dispatch(Event{
			Type:    EventPlayFail,
			Detail:  PlayFailDetail{Autoplay: req == nil || !req.Trusted},
			Trigger: trigger,
			Err:     err,
		})
		return err
	}

	m.w.SetPaused(false)
	m.w.SetEnded(false)
	m.queue.Serve(RequestPlay)
	return nil
}

// Pause forwards a pause intent. A failed pause is not actionable by
// the user, so rejections are logged and the attribution abandoned.
func (m *RequestManager) Pause(ctx context.Context, req *Request) error {
	if m.store.Paused().Get() {
		return nil
	}
	prov, err := m.provider("pause")
	if err != nil {
		return err
	}

	m.queue.Enqueue(withType(req, RequestPause))
	if err := prov.Pause(ctx); err != nil {
		m.queue.Delete(RequestPause)
		m.log.Warn("pause request failed", "provider", prov.Name(), "err", err)
		return nil
	}

	m.w.SetPaused(true)
	m.queue.Serve(RequestPause)
	return nil
}

// Seeking marks an in-progress scrub. Purely advisory; the provider is
// not consulted until the seek commits.
func (m *RequestManager) Seeking(seconds float64, req *Request) {
	m.queue.Enqueue(withType(req, RequestSeeking))
	m.w.SetSeeking(true)
	m.queue.Serve(RequestSeeking)
}

// Seek commits a seek. The target is clamped inside the seekable range;
// a non-finite clamped target or disallowed seeking leaves current time
// unchanged. A trusted seek landing well behind the live edge marks the
// stream as user-behind-live-edge, suppressing edge snapping elsewhere.
func (m *RequestManager) Seek(seconds float64, req *Request) error {
	prov, err := m.provider("seek")
	if err != nil {
		return err
	}

	m.w.SetSeeking(false)

	if !m.store.CanSeek().Get() {
		return nil
	}

	// A window narrower than both boundary pads has no valid target.
	r := m.store.Seekable().Get()
	if r.End-r.Start < 2*seekBoundaryPad {
		return nil
	}

	if m.store.Ended().Get() {
		// Replay: seeking after end re-arms playback.
		m.w.SetEnded(false)
	}

	target := clamp(seconds, r.Start+seekBoundaryPad, r.End-seekBoundaryPad)
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return nil
	}

	m.queue.Enqueue(withType(req, RequestSeeked))

	if m.store.Live().Get() && req != nil && req.Trusted {
		edge := m.liveEdge()
		if !math.IsNaN(edge) && target <= edge-behindLiveEdgeThreshold {
			m.w.SetUserBehindLiveEdge(true)
		}
	}

	prov.SetCurrentTime(target)
	m.w.SetCurrentTime(target)
	m.queue.Serve(RequestSeeked)
	return nil
}

// SeekToLiveEdge snaps a live stream back to its live-sync position.
// No-op when not live, already at the edge, or seeking is disallowed.
// Failures are logged, never surfaced.
func (m *RequestManager) SeekToLiveEdge(req *Request) {
	if !m.store.Live().Get() || !m.store.CanSeek().Get() {
		return
	}
	if m.store.AtLiveEdge(behindLiveEdgeThreshold) {
		return
	}
	prov, err := m.provider("live-edge seek")
	if err != nil {
		m.log.Warn("seek to live edge failed", "err", err)
		return
	}

	m.queue.Enqueue(withType(req, RequestSeeked))
	edge := m.liveEdge()
	if math.IsNaN(edge) {
		m.log.Warn("seek to live edge failed", "err", errors.New("live edge unknown"))
		m.queue.Delete(RequestSeeked)
		return
	}

	m.w.SetUserBehindLiveEdge(false)
	prov.SetCurrentTime(edge)
	m.w.SetCurrentTime(edge)
	m.queue.Serve(RequestSeeked)
}

// liveEdge returns the tracked live-sync position, falling back to
// seekableEnd-2 when the engine has not reported one.
func (m *RequestManager) liveEdge() float64 {
	edge := m.store.LiveSyncPosition().Get()
	if math.IsNaN(edge) || math.IsInf(edge, 0) {
		end := m.store.Seekable().Get().End
		if end <= 0 {
			return math.NaN()
		}
		edge = end - behindLiveEdgeThreshold
	}
	return edge
}

// SetVolume applies a volume change. An audible volume arriving while
// muted also clears mute, mirroring the unmute floor-volume rule.
func (m *RequestManager) SetVolume(volume float64, req *Request) {
	volume = clamp(volume, 0, 1)
	if volume == m.store.Volume().Get() {
		return
	}
	m.queue.Enqueue(withType(req, RequestVolume))
	m.w.SetVolume(volume)
	prov := m.store.Provider().Get()
	if prov != nil {
		prov.SetVolume(volume)
	}
	if volume > 0 && m.store.Muted().Get() {
		m.w.SetMuted(false)
		if prov != nil {
			prov.SetMuted(false)
		}
	}
	m.queue.Serve(RequestVolume)
}

// fullscreenAdapter resolves the target surface: the player-level
// capability when supported, else the provider's own.
func (m *RequestManager) fullscreenAdapter() (FullscreenAdapter, error) {
	if m.fullscreen != nil && m.fullscreen.Supported() {
		return m.fullscreen, nil
	}
	if prov := m.store.Provider().Get(); prov != nil {
		if fp, ok := prov.(FullscreenProvider); ok {
			if fs := fp.Fullscreen(); fs != nil && fs.Supported() {
				return fs, nil
			}
		}
	}
	return nil, ErrFullscreenUnsupported
}

// EnterFullscreen enters fullscreen on the resolved surface. A
// configured orientation lock is applied before entering. All failures
// surface as a fullscreen-error event carrying the cause.
func (m *RequestManager) EnterFullscreen(ctx context.Context, req *Request) error {
	if m.store.Fullscreen().Get() {
		return nil
	}
	fs, err := m.fullscreenAdapter()
	if err != nil {
		m.events.Dispatch(Event{Type: EventFullscreenError, Err: err, Trigger: req})
		return err
	}

	m.queue.Enqueue(withType(req, RequestFullscreen))

	if m.orientationLock != "" && m.orientation != nil && m.orientation.Supported() {
		if err := m.orientation.Lock(ctx, m.orientationLock); err != nil {
			m.queue.Delete(RequestFullscreen)
			m.events.Dispatch(Event{Type: EventFullscreenError, Err: err, Trigger: req})
			return err
		}
	}

	if err := fs.Enter(ctx); err != nil {
		m.queue.Delete(RequestFullscreen)
		m.events.Dispatch(Event{Type: EventFullscreenError, Err: err, Trigger: req})
		return err
	}

	m.w.SetFullscreen(true)
	m.queue.Serve(RequestFullscreen)
	return nil
}

// ExitFullscreen releases any active orientation lock before exiting.
func (m *RequestManager) ExitFullscreen(ctx context.Context, req *Request) error {
	if !m.store.Fullscreen().Get() {
		return nil
	}
	fs, err := m.fullscreenAdapter()
	if err != nil {
		m.events.Dispatch(Event{Type: EventFullscreenError, Err: err, Trigger: req})
		return err
	}

	m.queue.Enqueue(withType(req, RequestFullscreen))

	if m.orientation != nil && m.orientation.Locked() {
		if err := m.orientation.Unlock(ctx); err != nil {
			m.queue.Delete(RequestFullscreen)
			m.events.Dispatch(Event{Type: EventFullscreenError, Err: err, Trigger: req})
			return err
		}
	}

	if err := fs.Exit(ctx); err != nil {
		m.queue.Delete(RequestFullscreen)
		m.events.Dispatch(Event{Type: EventFullscreenError, Err: err, Trigger: req})
		return err
	}

	m.w.SetFullscreen(false)
	m.queue.Serve(RequestFullscreen)
	return nil
}

// PauseIdle suspends the idle-detection timer. Pure delegation.
func (m *RequestManager) PauseIdle(req *Request) {
	m.queue.Enqueue(withType(req, RequestUserIdle))
	if m.idle != nil {
		m.idle.Pause()
	}
	m.w.SetUserIdlePaused(true)
	m.queue.Serve(RequestUserIdle)
}

// ResumeIdle resumes the idle-detection timer. Pure delegation.
func (m *RequestManager) ResumeIdle(req *Request) {
	m.queue.Enqueue(withType(req, RequestUserIdle))
	if m.idle != nil {
		m.idle.Resume()
	}
	m.w.SetUserIdlePaused(false)
	m.queue.Serve(RequestUserIdle)
}

// ShowPoster permits poster loading.
func (m *RequestManager) ShowPoster() { m.w.SetCanLoadPoster(true) }

// HidePoster blocks poster loading.
func (m *RequestManager) HidePoster() { m.w.SetCanLoadPoster(false) }

// Loop replays ended media. The replay is deferred one frame so it
// cannot race the end-of-media transition; on failure both the looping
// and replay flags are rolled back.
func (m *RequestManager) Loop(ctx context.Context, req *Request) {
	m.scheduler.OnFrame(func() {
		wasLooping := m.store.Looping().Get()
		wasEnded := m.store.Ended().Get()

		m.w.SetLooping(true)
		m.w.SetEnded(false)

		if err := m.Play(ctx, req); err != nil {
			m.w.SetLooping(wasLooping)
			m.w.SetEnded(wasEnded)
			m.log.Warn("loop replay failed", "err", err)
		}
	})
}

func withType(req *Request, t RequestType) *Request {
	if req == nil {
		return &Request{Type: t}
	}
	r := *req
	r.Type = t
	return &r
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(hi, v))
}
