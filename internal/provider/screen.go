package provider

import (
	"context"
	"errors"
	"sync"

	"github.com/arviel/mediactl/internal/media"
)

// ScreenAdapter tracks fullscreen state for a headless display surface.
// It implements media.FullscreenAdapter.
type ScreenAdapter struct {
	mu        sync.Mutex
	active    bool
	supported bool
}

func NewScreenAdapter(supported bool) *ScreenAdapter {
	return &ScreenAdapter{supported: supported}
}

func (s *ScreenAdapter) Supported() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.supported
}

func (s *ScreenAdapter) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *ScreenAdapter) Enter(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.supported {
		return errors.New("fullscreen not supported")
	}
	s.active = true
	return nil
}

func (s *ScreenAdapter) Exit(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	return nil
}

// OrientationAdapter locks and unlocks the display orientation. It
// implements media.OrientationAdapter.
type OrientationAdapter struct {
	mu        sync.Mutex
	supported bool
	locked    bool
	lock      media.OrientationLock
}

func NewOrientationAdapter(supported bool) *OrientationAdapter {
	return &OrientationAdapter{supported: supported}
}

func (o *OrientationAdapter) Supported() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.supported
}

func (o *OrientationAdapter) Locked() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.locked
}

func (o *OrientationAdapter) Lock(_ context.Context, lock media.OrientationLock) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.supported {
		return errors.New("orientation lock not supported")
	}
	o.locked = true
	o.lock = lock
	return nil
}

func (o *OrientationAdapter) Unlock(context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.locked = false
	o.lock = ""
	return nil
}

// CurrentLock reports the active lock type, if any.
func (o *OrientationAdapter) CurrentLock() (media.OrientationLock, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lock, o.locked
}
