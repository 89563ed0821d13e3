package repository

import "database/sql"

type Repo struct {
	db *sql.DB
}

type Settings struct {
	SessionID       string
	DefaultVolume   int
	DefaultMuted    bool
	PreferNativeHLS bool
	IdleTimeoutSec  int
	OrientationLock string
}

type Preset struct {
	ID        int64
	SessionID string
	Name      string
	Query     string
}

// ResolvedURL is a cached query-to-playable-URL mapping. Resolved URLs
// expire and are re-resolved after a reuse window.
type ResolvedURL struct {
	Key        string
	URL        string
	Live       bool
	ResolvedAt int64
}
