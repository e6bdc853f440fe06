package session

import (
	"context"
	"errors"
	"time"

	"github.com/chrolluash/rentconnect/internal/model"
	"github.com/chrolluash/rentconnect/internal/utils"
)

// Manager issues, resolves and destroys sessions.  The cookie value is a
// signed token naming the record; the record must still exist in the store.
type Manager struct {
	store  Store
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{store: store, secret: secret, ttl: ttl, now: time.Now}
}

// TTL is the lifetime given to new sessions.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Start creates a session for u and returns it with its cookie token.
func (m *Manager) Start(ctx context.Context, u *model.User) (*model.Session, string, error) {
	sid, err := utils.NewSessionID()
	if err != nil {
		return nil, "", err
	}
	now := m.now().UTC()
	s := &model.Session{
		ID:        sid,
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.FullName(),
		Role:      u.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, "", err
	}
	token, err := utils.SignSessionToken(m.secret, utils.SessionClaims{
		SessionID: s.ID,
		UserID:    s.UserID,
		Role:      s.Role,
		ExpiresAt: s.ExpiresAt,
	})
	if err != nil {
		_ = m.store.Delete(ctx, s.ID)
		return nil, "", err
	}
	return s, token, nil
}

// Resolve maps a cookie token to its live session.  Forged, expired and
// destroyed sessions all yield ErrNotFound.
func (m *Manager) Resolve(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	claims, err := utils.ParseSessionToken(m.secret, token)
	if err != nil {
		return nil, ErrNotFound
	}
	s, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	// The record is authoritative; a token whose claims drifted from it is stale.
	if s.UserID != claims.UserID || s.Role != claims.Role {
		return nil, ErrNotFound
	}
	return s, nil
}

// End destroys the session named by token.  Unknown tokens are not an error.
func (m *Manager) End(ctx context.Context, token string) error {
	claims, err := utils.ParseSessionToken(m.secret, token)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, claims.SessionID); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
