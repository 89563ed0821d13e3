package repository

import "context"

func (r *Repo) AddPreset(ctx context.Context, p *Preset) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO presets(session_id, name, query) VALUES (?,?,?)`,
		p.SessionID, p.Name, p.Query,
	)
	return err
}

func (r *Repo) RemovePreset(ctx context.Context, session, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM presets WHERE session_id=? AND name=?`, session, name)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repo) FindPreset(ctx context.Context, session, name string) (*Preset, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, session_id, name, query FROM presets WHERE session_id=? AND name=?`, session, name)
	var p Preset
	if err := row.Scan(&p.ID, &p.SessionID, &p.Name, &p.Query); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListPresets(ctx context.Context, session string) ([]Preset, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, session_id, name, query FROM presets WHERE session_id=? ORDER BY name ASC`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Preset
	for rows.Next() {
		var p Preset
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Name, &p.Query); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
