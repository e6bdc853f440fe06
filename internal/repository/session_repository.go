package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/chrolluash/rentconnect/internal/model"
	"github.com/chrolluash/rentconnect/internal/session"
	"github.com/chrolluash/rentconnect/internal/utils"
)

// SessionRepo keeps login sessions in the 'sessions' table.  Only the
// SHA-256 of the session id is stored, like a password hash.
type SessionRepo struct{ DB *sql.DB }

var _ session.Store = (*SessionRepo)(nil)

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Save inserts or replaces a session row and purges expired rows of the
// same user.
func (r *SessionRepo) Save(ctx context.Context, s *model.Session) error {
	_, err := r.DB.ExecContext(ctx,
		"REPLACE INTO sessions (id_hash, user_id, email, name, role, created_at, expires_at) VALUES (?,?,?,?,?,?,?)",
		utils.HashSessionID(s.ID), s.UserID, s.Email, s.Name, s.Role, s.CreatedAt.UTC(), s.ExpiresAt.UTC())
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id=? AND expires_at < UTC_TIMESTAMP()", s.UserID)
	return err
}

// Get returns a live session.  Expired rows read as session.ErrNotFound.
func (r *SessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	s := model.Session{ID: id}
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, email, name, role, created_at, expires_at FROM sessions WHERE id_hash=? LIMIT 1",
		utils.HashSessionID(id)).Scan(&s.UserID, &s.Email, &s.Name, &s.Role, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.Expired(time.Now().UTC()) {
		return nil, session.ErrNotFound
	}
	return &s, nil
}

// Delete removes a session row.  Unknown ids are not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE id_hash=?", utils.HashSessionID(id))
	return err
}
