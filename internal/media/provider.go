package media

import "context"

// Preload hints handed to providers on load.
type Preload string

const (
	PreloadNone     Preload = "none"
	PreloadMetadata Preload = "metadata"
	PreloadAuto     Preload = "auto"
)

// Provider is the uniform playback contract. Exactly one provider is
// attached at a time; ownership transfers from the source selector to
// the request manager for the duration of the attachment.
type Provider interface {
	Name() string

	Play(ctx context.Context) error
	Pause(ctx context.Context) error

	SetCurrentTime(seconds float64)
	SetVolume(volume float64)
	SetMuted(muted bool)

	LoadSource(ctx context.Context, src Source, preload Preload) error
}

// FullscreenAdapter is the per-surface fullscreen capability. The
// request manager resolves between the player-level adapter and the
// provider's own one.
type FullscreenAdapter interface {
	Supported() bool
	Active() bool
	Enter(ctx context.Context) error
	Exit(ctx context.Context) error
}

// FullscreenProvider is implemented by providers with their own
// fullscreen surface.
type FullscreenProvider interface {
	Fullscreen() FullscreenAdapter
}

// OrientationLock is a screen-orientation lock preference.
type OrientationLock string

const (
	OrientationLandscape OrientationLock = "landscape"
	OrientationPortrait  OrientationLock = "portrait"
)

// OrientationAdapter controls screen orientation locking around
// fullscreen transitions.
type OrientationAdapter interface {
	Supported() bool
	Locked() bool
	Lock(ctx context.Context, lock OrientationLock) error
	Unlock(ctx context.Context) error
}

// ProviderFactory instantiates the concrete provider for a resolved
// loader. The session invokes it when the selector commits a new loader.
type ProviderFactory func(loader Loader, src Source) (Provider, error)
