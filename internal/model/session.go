package model

import "time"

// Session is the server-held record of an authenticated browser.  It is the
// only authorization token in the system; the cookie merely names it.
type Session struct {
    ID        string    `json:"id"`
    UserID    uint64    `json:"user_id"`
    Email     string    `json:"email"`
    Name      string    `json:"name"`
    Role      string    `json:"role"`
    CreatedAt time.Time `json:"created_at"`
    ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
    return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
