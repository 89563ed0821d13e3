package hlsctl

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/arviel/mediactl/internal/media"
	"github.com/arviel/mediactl/internal/rx"
)

// Controller owns exactly one engine instance per provider attachment.
// Lifecycle: absent -> attached -> destroyed, re-entrant across
// attach cycles.
type Controller struct {
	log       *slog.Logger
	store     *media.Store
	sw        *media.StreamWriter
	events    *media.Dispatcher
	factory   EngineFactory
	userCfg   UserConfig
	scheduler rx.Scheduler

	instance *rx.Cell[Engine]

	mu         sync.Mutex
	engine     Engine
	passNames  []string          // registered pass-through event names
	subscribed map[string]func() // event name -> unsubscribe, dedup set
	internal   []func()          // internal handler unsubscribes
	onReady    []func(Engine)
	liveEffect *rx.Effect
}

func NewController(
	store *media.Store,
	events *media.Dispatcher,
	factory EngineFactory,
	userCfg UserConfig,
	scheduler rx.Scheduler,
	log *slog.Logger,
) *Controller {
	if log == nil {
		log = slog.Default()
	}
	if scheduler == nil {
		scheduler = &rx.TickScheduler{}
	}
	return &Controller{
		log:       log,
		store:     store,
		sw:        store.StreamWriter(),
		events:    events,
		factory:   factory,
		userCfg:   userCfg,
		scheduler: scheduler,
		instance: rx.NewCellFunc[Engine](nil, func(a, b Engine) bool {
			return a == b
		}),
		subscribed: make(map[string]func()),
	}
}

// Instance is the published engine reference; nil while absent or after
// an unrecoverable error.
func (c *Controller) Instance() rx.Signal[Engine] { return c.instance }

// OnInstance queues fn to run exactly once when an engine instance
// becomes available. If one is already attached, fn runs immediately.
func (c *Controller) OnInstance(fn func(Engine)) {
	c.mu.Lock()
	eng := c.engine
	if eng == nil {
		c.onReady = append(c.onReady, fn)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	fn(eng)
}

// Listen registers an engine-native event for pass-through translation.
// If an engine is attached, the subscription is established now;
// otherwise it is picked up on the next attach. Re-registering an
// already-subscribed event is a no-op.
func (c *Controller) Listen(engineEvent string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.passNames {
		if n == engineEvent {
			return
		}
	}
	c.passNames = append(c.passNames, engineEvent)
	if c.engine != nil {
		c.subscribePassLocked(c.engine, engineEvent)
	}
}

// subscribePassLocked wires one pass-through event if not already
// subscribed. Caller holds c.mu.
func (c *Controller) subscribePassLocked(eng Engine, name string) {
	if _, dup := c.subscribed[name]; dup {
		return
	}
	playerName := media.EventType(CamelToKebab(name))
	c.subscribed[name] = eng.On(name, func(data any) {
		c.events.Dispatch(media.Event{Type: playerName, Detail: data})
	})
}

// config resolves the construction configuration. The low-latency flag
// is read from the current stream-type hint without establishing a
// reactive dependency, so stream-type changes never reinitialize the
// engine; the user config only overrides it when explicit.
func (c *Controller) config() Config {
	hint := c.store.StreamType().Get()
	low := hint == media.StreamTypeLiveLL || hint == media.StreamTypeLiveDVRLL
	if c.userCfg.LowLatencyExplicit {
		low = c.userCfg.LowLatency
	}
	return Config{LowLatency: low, Options: c.userCfg.Options}
}

// Setup constructs the engine and attaches it to surface. onComplete is
// invoked last, signalling provider-setup completion.
func (c *Controller) Setup(surface MediaSurface, onComplete func()) error {
	if c.factory == nil {
		return fmt.Errorf("hlsctl: no engine factory configured")
	}

	eng, err := c.factory(c.config())
	if err != nil {
		return fmt.Errorf("hlsctl: engine construction: %w", err)
	}

	c.mu.Lock()
	c.engine = eng
	for _, name := range c.passNames {
		c.subscribePassLocked(eng, name)
	}
	c.internal = append(c.internal,
		eng.On(EventError, func(data any) { c.onError(eng, data) }),
		eng.On(EventLevelLoaded, func(data any) { c.onLevelLoaded(surface, data) }),
	)
	ready := c.onReady
	c.onReady = nil
	c.mu.Unlock()

	c.instance.Set(eng)
	for _, fn := range ready {
		fn(eng)
	}
	c.log.Info("adaptive engine attached", "lowLatency", c.config().LowLatency)

	if err := eng.AttachMedia(surface); err != nil {
		c.Teardown()
		return fmt.Errorf("hlsctl: attach media: %w", err)
	}

	c.startLiveTracking(eng)

	if onComplete != nil {
		onComplete()
	}
	return nil
}

// onLevelLoaded classifies the stream and publishes duration. Only
// relevant until the player's first can-play milestone.
func (c *Controller) onLevelLoaded(surface MediaSurface, data any) {
	if c.store.CanPlay().Get() {
		return
	}
	level, ok := data.(LevelData)
	if !ok {
		return
	}

	st := media.StreamTypeOnDemand
	duration := level.TotalDuration
	if level.Live {
		// A live stream reporting a finite total duration has a
		// seekable DVR window.
		if duration > 0 && !math.IsInf(duration, 0) {
			st = media.StreamTypeLiveDVR
		} else {
			st = media.StreamTypeLive
		}
	}

	c.sw.SetLive(level.Live)
	c.sw.SetStreamType(st)
	c.events.Dispatch(media.Event{Type: media.EventStreamTypeChange, Detail: st})

	c.sw.SetDuration(duration)
	c.events.Dispatch(media.Event{Type: media.EventDurationChange, Detail: duration})

	// The native surface cannot infer readiness from engine internals.
	surface.ForceCanPlay()
}

// startLiveTracking runs a per-frame sampling loop publishing the
// engine's live-sync position while the stream is live. The loop stops,
// releasing its scheduling handle, when live flips false or on
// teardown.
func (c *Controller) startLiveTracking(eng Engine) {
	effect := rx.NewEffect(func(t *rx.Track) {
		if !rx.Read(t, c.store.Live()) {
			return
		}
		stop := rx.Loop(c.scheduler, func() bool {
			pos := eng.LiveSyncPosition()
			if math.IsNaN(pos) {
				pos = math.Inf(1)
			}
			c.sw.SetLiveSyncPosition(pos)
			return true
		})
		t.OnCleanup(stop)
	})

	c.mu.Lock()
	c.liveEffect = effect
	c.mu.Unlock()
}

// onError applies the tiered fatal-error recovery policy. Non-fatal
// errors are observed for diagnostics only.
func (c *Controller) onError(eng Engine, data any) {
	ed, ok := data.(ErrorData)
	if !ok {
		return
	}
	if !ed.Fatal {
		c.log.Debug("engine error", "category", ed.Category.String(), "err", ed.Err)
		return
	}

	switch ed.Category {
	case ErrorCategoryNetwork:
		c.log.Warn("fatal network error, restarting load", "err", ed.Err)
		eng.StartLoad()
	case ErrorCategoryMedia:
		c.log.Warn("fatal media error, attempting in-place recovery", "err", ed.Err)
		eng.RecoverMediaError()
	default:
		// Unrecoverable: destroy and clear so the attach effect must
		// fully re-run to recover.
		c.log.Error("unrecoverable engine error", "category", ed.Category.String(), "err", ed.Err)
		c.Teardown()
	}
}

// Teardown clears the pass-through dedup set, destroys the engine and
// clears the published reference, in that order, so no further events
// are processed once destruction begins.
func (c *Controller) Teardown() {
	c.mu.Lock()
	for name, off := range c.subscribed {
		off()
		delete(c.subscribed, name)
	}
	for _, off := range c.internal {
		off()
	}
	c.internal = nil
	eng := c.engine
	c.engine = nil
	effect := c.liveEffect
	c.liveEffect = nil
	c.mu.Unlock()

	if effect != nil {
		effect.Stop()
	}
	if eng != nil {
		eng.Destroy()
	}
	c.instance.Set(nil)
}
