package config

import "time"

type Config struct {
	DataDir         string
	CacheDir        string
	CacheLimitBytes int64

	SpotifyClientID     string
	SpotifyClientSecret string

	PreferNativeHLS    bool
	LowLatency         bool
	LowLatencyExplicit bool

	IdleTimeout     time.Duration
	OrientationLock string

	LogLevel string
}
