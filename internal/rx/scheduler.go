package rx

import (
	"sync"
	"time"
)

// Scheduler abstracts frame-rate callbacks. Production code uses a
// ticker-backed scheduler; tests step a ManualScheduler by hand.
type Scheduler interface {
	// OnFrame runs fn once on the next frame. The returned function
	// cancels the callback if it has not fired yet.
	OnFrame(fn func()) (cancel func())
}

// Loop invokes fn on every frame until the returned stop function is
// called. fn returning false also ends the loop.
func Loop(s Scheduler, fn func() bool) (stop func()) {
	var mu sync.Mutex
	stopped := false
	var cancel func()

	var arm func()
	arm = func() {
		cancel = s.OnFrame(func() {
			mu.Lock()
			if stopped {
				mu.Unlock()
				return
			}
			mu.Unlock()
			if !fn() {
				mu.Lock()
				stopped = true
				mu.Unlock()
				return
			}
			mu.Lock()
			if !stopped {
				arm()
			}
			mu.Unlock()
		})
	}
	mu.Lock()
	arm()
	mu.Unlock()

	return func() {
		mu.Lock()
		stopped = true
		c := cancel
		mu.Unlock()
		if c != nil {
			c()
		}
	}
}

// TickScheduler fires frames from a time.Timer, approximating a 60 Hz
// animation-frame source.
type TickScheduler struct {
	Interval time.Duration
}

func (s *TickScheduler) interval() time.Duration {
	if s.Interval <= 0 {
		return 16 * time.Millisecond
	}
	return s.Interval
}

func (s *TickScheduler) OnFrame(fn func()) (cancel func()) {
	t := time.AfterFunc(s.interval(), fn)
	return func() { t.Stop() }
}

// ManualScheduler queues frame callbacks until Step is called. Intended
// for tests.
type ManualScheduler struct {
	mu      sync.Mutex
	nextID  int
	pending map[int]func()
}

func (s *ManualScheduler) OnFrame(fn func()) (cancel func()) {
	s.mu.Lock()
	if s.pending == nil {
		s.pending = make(map[int]func())
	}
	id := s.nextID
	s.nextID++
	s.pending[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}
}

// Step fires all currently queued callbacks, in registration order for
// determinism. Callbacks queued while stepping wait for the next Step.
func (s *ManualScheduler) Step() {
	s.mu.Lock()
	ids := make([]int, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	// registration order
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.pending[id])
		delete(s.pending, id)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Pending reports how many callbacks are queued.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
