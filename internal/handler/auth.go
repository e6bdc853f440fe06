package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/chrolluash/rentconnect/internal/middleware"
    "github.com/chrolluash/rentconnect/internal/model"
    "github.com/chrolluash/rentconnect/internal/service"
    "github.com/chrolluash/rentconnect/internal/utils"
)

// Accounts is the auth service as used by the handlers.
type Accounts interface {
    Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
    Login(ctx context.Context, in service.LoginInput) (*model.User, *model.Session, string, error)
    EmailRegistered(ctx context.Context, email string) (bool, error)
    CurrentUser(ctx context.Context, id uint64) (*model.User, error)
}

// SessionEnder destroys the session named by a cookie token.
type SessionEnder interface {
    End(ctx context.Context, token string) error
}

// CookieOptions controls the session cookie.
type CookieOptions struct {
    Secure bool
}

// AuthHandler bundles dependencies for the account endpoints.
type AuthHandler struct {
    accounts Accounts
    sessions SessionEnder
    cookie   CookieOptions
    base     string
    log      logrus.FieldLogger
}

func NewAuthHandler(a Accounts, s SessionEnder, cookie CookieOptions, publicBase string, log logrus.FieldLogger) *AuthHandler {
    return &AuthHandler{accounts: a, sessions: s, cookie: cookie, base: publicBase, log: log}
}

// ----- DTOs -----

type registerReq struct {
    FirstName    string `json:"firstName" form:"firstName"`
    LastName     string `json:"lastName" form:"lastName"`
    Email        string `json:"email" form:"email"`
    Contact      string `json:"contact" form:"contact"`
    Role         string `json:"role" form:"role"`
    Password     string `json:"password" form:"password"`
    AuthProvider string `json:"authProvider" form:"authProvider"`
}

type loginReq struct {
    Email         string `json:"email" form:"email"`
    Password      string `json:"password" form:"password"`
    RequestedRole string `json:"requestedRole" form:"requestedRole"`
}

type checkReq struct {
    Email string `json:"email" form:"email"`
}

type userView struct {
    ID             uint64     `json:"id"`
    FirstName      string     `json:"firstName"`
    LastName       string     `json:"lastName"`
    Name           string     `json:"name"`
    Email          string     `json:"email"`
    Contact        string     `json:"contact"`
    Role           string     `json:"role"`
    AuthProvider   string     `json:"authProvider"`
    ProfilePicture string     `json:"profile_picture,omitempty"`
    CreatedAt      time.Time  `json:"created_at"`
    LastLogin      *time.Time `json:"last_login,omitempty"`
}

func (h *AuthHandler) viewUser(u *model.User) userView {
    v := userView{
        ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Name: u.FullName(),
        Email: u.Email, Contact: u.ContactNumber, Role: u.Role, AuthProvider: u.AuthProvider,
        CreatedAt: u.CreatedAt, LastLogin: u.LastLogin,
    }
    if u.ProfilePicture != nil && *u.ProfilePicture != "" {
        v.ProfilePicture = utils.ResolvePhotoURL(*u.ProfilePicture, h.base)
    }
    return v
}

// Register creates an account.  No session is started.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return fail(c, h.log, service.Validation("Invalid request body"))
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    u, err := h.accounts.Register(ctx, service.RegisterInput{
        FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, ContactNumber: req.Contact,
        Role: req.Role, Password: req.Password, AuthProvider: req.AuthProvider,
    })
    if err != nil {
        return fail(c, h.log, err)
    }
    return success(c, http.StatusCreated, echo.Map{
        "message": "Registration successful. Please log in.",
        "user":    h.viewUser(u),
    })
}

// Login checks credentials, opens a session and sets the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return fail(c, h.log, service.Validation("Invalid request body"))
    }
    ctx, cancel := withTimeout(c)
    defer cancel()

    u, s, token, err := h.accounts.Login(ctx, service.LoginInput{
        Email: req.Email, Password: req.Password, RequestedRole: req.RequestedRole,
    })
    if err != nil {
        return fail(c, h.log, err)
    }
    c.SetCookie(h.sessionCookie(token, s.ExpiresAt))
    return success(c, http.StatusOK, echo.Map{
        "message": "Login successful",
        "user":    h.viewUser(u),
    })
}

// Logout ends the server session and expires the cookie.  It succeeds
// even when no session was present.
func (h *AuthHandler) Logout(c echo.Context) error {
    if ck, err := c.Cookie(middleware.SessionCookie); err == nil && ck.Value != "" {
        ctx, cancel := withTimeout(c)
        defer cancel()
        if err := h.sessions.End(ctx, ck.Value); err != nil {
            return fail(c, h.log, service.Internal(err))
        }
    }
    expired := h.sessionCookie("", time.Unix(0, 0))
    expired.MaxAge = -1
    c.SetCookie(expired)
    return success(c, http.StatusOK, echo.Map{"message": "Logged out"})
}

// Session returns the user of the current session.
func (h *AuthHandler) Session(c echo.Context) error {
    s := middleware.SessionFrom(c)
    if s == nil {
        return fail(c, h.log, service.Unauthorized("Please log in first"))
    }
    return success(c, http.StatusOK, echo.Map{
        "user": echo.Map{"id": s.UserID, "email": s.Email, "name": s.Name, "role": s.Role},
    })
}

// Me returns the full profile of the session user.
func (h *AuthHandler) Me(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()
    u, err := h.accounts.CurrentUser(ctx, middleware.UserID(c))
    if err != nil {
        return fail(c, h.log, err)
    }
    return success(c, http.StatusOK, echo.Map{"user": h.viewUser(u)})
}

// CheckUser reports whether an email is already registered.
func (h *AuthHandler) CheckUser(c echo.Context) error {
    var req checkReq
    if err := c.Bind(&req); err != nil {
        return fail(c, h.log, service.Validation("Invalid request body"))
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    exists, err := h.accounts.EmailRegistered(ctx, req.Email)
    if err != nil {
        return fail(c, h.log, err)
    }
    return success(c, http.StatusOK, echo.Map{"exists": exists})
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
    maxAge := int(time.Until(expires).Seconds())
    if maxAge < 0 {
        maxAge = 0
    }
    return &http.Cookie{
        Name:     middleware.SessionCookie,
        Value:    value,
        Path:     "/",
        Expires:  expires,
        MaxAge:   maxAge,
        HttpOnly: true,
        Secure:   h.cookie.Secure,
        SameSite: http.SameSiteLaxMode,
    }
}
