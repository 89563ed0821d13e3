package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func mustAtoi64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func LoadConfig() (*Config, error) {
	dataDir := getenv("DATA_DIR", "./data")
	cacheDir := filepath.Join(dataDir, "cache")

	// CACHE_LIMIT is a plain byte count.
	cacheLimit := getenv("CACHE_LIMIT", "2147483648") // default 2GB

	idleSec, _ := strconv.Atoi(getenv("USER_IDLE_TIMEOUT", "300"))

	_, lowLatencySet := os.LookupEnv("HLS_LOW_LATENCY")

	cfg := &Config{
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		DataDir:             dataDir,
		CacheDir:            cacheDir,
		CacheLimitBytes:     mustAtoi64(cacheLimit),
		PreferNativeHLS:     getenv("PREFER_NATIVE_HLS", "false") == "true",
		LowLatency:          getenv("HLS_LOW_LATENCY", "false") == "true",
		LowLatencyExplicit:  lowLatencySet,
		IdleTimeout:         time.Duration(idleSec) * time.Second,
		OrientationLock:     getenv("ORIENTATION_LOCK", ""),
		LogLevel:            getenv("LOG_LEVEL", "info"),
	}

	_ = os.MkdirAll(cfg.DataDir, 0o755)
	_ = os.MkdirAll(cfg.CacheDir, 0o755)
	_ = os.MkdirAll(filepath.Join(cfg.CacheDir, "tmp"), 0o755)
	return cfg, nil
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
