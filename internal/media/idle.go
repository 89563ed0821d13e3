package media

import (
	"sync"
	"time"
)

// IdleTimer fires OnIdle after a quiet period with no user activity.
// It can be paused and resumed by user-idle requests; while paused,
// activity is ignored and the timer never fires.
type IdleTimer struct {
	mu     sync.Mutex
	delay  time.Duration
	timer  *time.Timer
	paused bool
	onIdle func()
}

func NewIdleTimer(delay time.Duration, onIdle func()) *IdleTimer {
	return &IdleTimer{delay: delay, onIdle: onIdle}
}

// Activity restarts the countdown. Ignored while paused.
func (t *IdleTimer) Activity() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.paused || t.delay <= 0 {
		return
	}
	t.stopLocked()
	t.timer = time.AfterFunc(t.delay, t.fire)
}

func (t *IdleTimer) fire() {
	t.mu.Lock()
	paused := t.paused
	fn := t.onIdle
	t.mu.Unlock()
	if !paused && fn != nil {
		fn()
	}
}

// Pause suspends idle detection and cancels any pending countdown.
func (t *IdleTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = true
	t.stopLocked()
}

// Resume re-enables idle detection and restarts the countdown.
func (t *IdleTimer) Resume() {
	t.mu.Lock()
	t.paused = false
	t.mu.Unlock()
	t.Activity()
}

// Stop cancels the timer permanently.
func (t *IdleTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *IdleTimer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
