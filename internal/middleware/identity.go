package middleware

// identity.go holds the context keys written by SessionAuth and the
// helpers handlers use to read them back.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/chrolluash/rentconnect/internal/model"
)

// Context keys set by SessionAuth.
const (
    ctxSession = "session"
    ctxUserID  = "user_id"
    ctxRole    = "role"
)

// SessionFrom returns the session resolved for this request, or nil.
func SessionFrom(c echo.Context) *model.Session {
    s, _ := c.Get(ctxSession).(*model.Session)
    return s
}

// UserID returns the authenticated user id, or 0 for anonymous requests.
func UserID(c echo.Context) uint64 {
    id, _ := c.Get(ctxUserID).(uint64)
    return id
}

// Role returns the authenticated role, or "".
func Role(c echo.Context) string {
    r, _ := c.Get(ctxRole).(string)
    return r
}

// currentUserID renders the user id for rate limit keys.
func currentUserID(c echo.Context) string {
    if id := UserID(c); id != 0 {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
