package rx

import "sync"

// Track is handed to an effect body for the duration of one run. It
// collects the dependencies read and the cleanups registered during
// that run.
type Track struct {
	e    *Effect
	offs []func()
	// cleanups run in reverse order before the next run or on Stop.
	cleanups []func()
}

// OnCleanup registers fn to run before the effect's next run and when
// the effect is stopped. Resources created in a run must be released
// here so reruns never leak them.
func (t *Track) OnCleanup(fn func()) {
	t.cleanups = append(t.cleanups, fn)
}

// Read returns the signal's current value and subscribes the running
// effect to future changes of it for this run only.
func Read[T any](t *Track, s Signal[T]) T {
	off := s.watch(t.e.invalidate)
	t.offs = append(t.offs, off)
	return s.Get()
}

// Effect is a recomputation task. It runs once on creation and re-runs
// whenever a signal it read through Read changes. Dependency sets are
// rebuilt from scratch on every run.
type Effect struct {
	mu      sync.Mutex
	fn      func(t *Track)
	cur     *Track
	running bool
	dirty   bool
	stopped bool
}

// NewEffect creates the effect and performs its first run synchronously.
func NewEffect(fn func(t *Track)) *Effect {
	e := &Effect{fn: fn}
	e.run()
	return e
}

// invalidate schedules a rerun. A change arriving while the effect body
// is executing defers the rerun until the body returns, so a run always
// observes a settled world and never interleaves with itself.
func (e *Effect) invalidate() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	if e.running {
		e.dirty = true
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	e.run()
}

func (e *Effect) run() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.running = true
	prev := e.cur
	t := &Track{e: e}
	e.cur = t
	e.mu.Unlock()

	releaseTrack(prev)
	e.fn(t)

	e.mu.Lock()
	rerun := e.dirty
	e.dirty = false
	e.running = false
	e.mu.Unlock()

	if rerun {
		e.run()
	}
}

// Stop detaches the effect from all dependencies and runs its pending
// cleanups. The effect never runs again.
func (e *Effect) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	t := e.cur
	e.cur = nil
	e.mu.Unlock()

	releaseTrack(t)
}

func releaseTrack(t *Track) {
	if t == nil {
		return
	}
	for _, off := range t.offs {
		off()
	}
	for i := len(t.cleanups) - 1; i >= 0; i-- {
		t.cleanups[i]()
	}
}
