package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertSettings(ctx context.Context, session string) (*Settings, error) {
	_, _ = r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings(session_id) VALUES (?)`, session,
	)
	return r.GetSettings(ctx, session)
}

func (r *Repo) GetSettings(ctx context.Context, session string) (*Settings, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT session_id, default_volume, default_muted, prefer_native_hls,
	       idle_timeout_seconds, orientation_lock
	FROM settings WHERE session_id = ?`, session)

	var s Settings
	var b1, b2 int
	if err := row.Scan(
		&s.SessionID,
		&s.DefaultVolume,
		&b1, // default_muted
		&b2, // prefer_native_hls
		&s.IdleTimeoutSec,
		&s.OrientationLock,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}

	s.DefaultMuted = b1 != 0
	s.PreferNativeHLS = b2 != 0
	return &s, nil
}

func (r *Repo) UpdateSettings(ctx context.Context, s *Settings) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE settings SET
		  default_volume=?,
		  default_muted=?,
		  prefer_native_hls=?,
		  idle_timeout_seconds=?,
		  orientation_lock=?
		WHERE session_id=?`,
		s.DefaultVolume, boolToInt(s.DefaultMuted), boolToInt(s.PreferNativeHLS),
		s.IdleTimeoutSec, s.OrientationLock, s.SessionID,
	)
	return err
}

func (r *Repo) GetResolvedURL(ctx context.Context, key string, maxAge time.Duration) (*ResolvedURL, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT key, url, live, resolved_at FROM resolved_urls WHERE key=?`, key)
	var u ResolvedURL
	var live int
	if err := row.Scan(&u.Key, &u.URL, &live, &u.ResolvedAt); err != nil {
		return nil, err
	}
	u.Live = live != 0
	if time.Since(time.Unix(u.ResolvedAt, 0)) > maxAge {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (r *Repo) PutResolvedURL(ctx context.Context, u *ResolvedURL) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO resolved_urls(key, url, live, resolved_at) VALUES (?,?,?,?)`,
		u.Key, u.URL, boolToInt(u.Live), u.ResolvedAt,
	)
	return err
}

func (r *Repo) CacheTouch(ctx context.Context, hash string, size int64, created bool) error {
	now := time.Now().Unix()
	if created {
		_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO file_cache(hash,bytes,accessed_at,created_at) VALUES (?,?,?,COALESCE((SELECT created_at FROM file_cache WHERE hash=?),?))`,
			hash, size, now, hash, now)
		return err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE file_cache SET accessed_at=? WHERE hash=?`, now, hash)
	return err
}

func (r *Repo) CacheRemove(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM file_cache WHERE hash=?`, hash)
	return err
}

func (r *Repo) CacheTotalBytes(ctx context.Context) (int64, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(bytes),0) FROM file_cache`)
	var v int64
	if err := row.Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

func (r *Repo) CacheOldest(ctx context.Context) (string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT hash FROM file_cache ORDER BY accessed_at ASC LIMIT 1`)
	var hash string
	if err := row.Scan(&hash); err != nil {
		return "", err
	}
	return hash, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
