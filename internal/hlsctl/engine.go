// Package hlsctl owns the adaptive-streaming engine's lifecycle: it
// creates and destroys the engine in lockstep with provider attachment,
// translates engine-native events into player-level events, tracks the
// live edge, and applies tiered fatal-error recovery.
package hlsctl

// Engine-native event names (camelCase convention).
const (
	EventError          = "hlsError"
	EventLevelLoaded    = "hlsLevelLoaded"
	EventManifestLoaded = "hlsManifestLoaded"
	EventMediaAttached  = "hlsMediaAttached"
)

// ErrorCategory buckets engine errors for the recovery policy.
type ErrorCategory int

const (
	ErrorCategoryOther ErrorCategory = iota
	ErrorCategoryNetwork
	ErrorCategoryMedia
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrorCategoryNetwork:
		return "network"
	case ErrorCategoryMedia:
		return "media"
	default:
		return "other"
	}
}

// ErrorData is the payload of an engine error event.
type ErrorData struct {
	Fatal    bool
	Category ErrorCategory
	Err      error
}

// LevelData is the payload of a level/metadata-loaded event.
type LevelData struct {
	Live          bool
	TotalDuration float64
}

// MediaSurface is the underlying media element the engine attaches to.
// ForceCanPlay exists because the element cannot infer readiness from
// streaming-engine internals on its own.
type MediaSurface interface {
	ForceCanPlay()
}

// Engine is the consumed adaptive-streaming engine contract.
type Engine interface {
	// On subscribes fn to an engine-native event; the returned function
	// removes the subscription.
	On(event string, fn func(data any)) (off func())

	AttachMedia(surface MediaSurface) error
	StartLoad()
	RecoverMediaError()
	Destroy()

	// LiveSyncPosition reports the live-edge target in seconds, or NaN
	// when unknown.
	LiveSyncPosition() float64
}

// Config is the engine construction configuration. LowLatency is
// inferred from the current stream-type hint unless the user config
// overrides it explicitly.
type Config struct {
	LowLatency bool
	Options    map[string]any
}

// UserConfig is user-supplied engine configuration. LowLatency is only
// applied when Explicit is set; otherwise the inferred value wins.
type UserConfig struct {
	LowLatency         bool
	LowLatencyExplicit bool
	Options            map[string]any
}

// EngineFactory constructs an engine instance. A nil factory means no
// adaptive engine is available in this build.
type EngineFactory func(cfg Config) (Engine, error)
