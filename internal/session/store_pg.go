package session

import (
	"context"
	"database/sql"
	"errors"
)

// PGStore keeps markers in the sessions table so they survive restarts.
type PGStore struct {
	DB *sql.DB
}

func (s *PGStore) Get(ctx context.Context, id string) (Marker, error) {
	const query = `
SELECT email
FROM sessions
WHERE id = $1
LIMIT 1`
	var marker Marker
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&marker.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Marker{}, ErrNotFound
		}
		return Marker{}, err
	}
	return marker, nil
}

func (s *PGStore) Set(ctx context.Context, id string, marker Marker) error {
	const query = `
INSERT INTO sessions (id, email, created_at)
VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email`
	_, err := s.DB.ExecContext(ctx, query, id, marker.Email)
	return err
}

func (s *PGStore) Clear(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1`
	_, err := s.DB.ExecContext(ctx, query, id)
	return err
}
