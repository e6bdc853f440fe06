package middleware

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/chrolluash/rentconnect/internal/model"
)

// SessionCookie is the name of the cookie that carries the signed session token.
const SessionCookie = "rc_session"

// SessionResolver maps a cookie token to its live session.  *session.Manager
// satisfies it.
type SessionResolver interface {
    Resolve(ctx context.Context, token string) (*model.Session, error)
}

// SessionAuth rejects requests without a live session and stores the
// session, user id and role in the context.
func SessionAuth(r SessionResolver) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            s := resolve(c, r)
            if s == nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Please log in first"})
            }
            return next(c)
        }
    }
}

// OptionalSession resolves the session when one is present but lets
// anonymous requests through.
func OptionalSession(r SessionResolver) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            resolve(c, r)
            return next(c)
        }
    }
}

func resolve(c echo.Context, r SessionResolver) *model.Session {
    ck, err := c.Cookie(SessionCookie)
    if err != nil || ck.Value == "" {
        return nil
    }
    s, err := r.Resolve(c.Request().Context(), ck.Value)
    if err != nil {
        return nil
    }
    c.Set(ctxSession, s)
    c.Set(ctxUserID, s.UserID)
    c.Set(ctxRole, s.Role)
    return s
}
