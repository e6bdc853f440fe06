// Package router wires handlers and middleware onto an Echo instance.
package router

import (
    "path/filepath"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/sirupsen/logrus"

    "github.com/chrolluash/rentconnect/internal/handler"
    "github.com/chrolluash/rentconnect/internal/middleware"
)

// Handlers groups the endpoint implementations.
type Handlers struct {
    Auth     *handler.AuthHandler
    Landlord *handler.LandlordHandler
    Tenant   *handler.TenantHandler
    Geocode  *handler.GeocodeHandler
    Profile  *handler.ProfileHandler
    Health   echo.HandlerFunc
}

// Options carries the cross-cutting pieces the routes need.
type Options struct {
    Sessions    middleware.SessionResolver
    Cache       *middleware.ResponseCache
    RateLimit   echo.MiddlewareFunc // nil disables limiting
    UploadDir   string              // directory that contains uploads/
    BodyLimit   string              // e.g. "50M"
    CORSOrigins []string
    Log         logrus.FieldLogger
}

// New builds the Echo server with the global middleware chain and every route.
func New(h Handlers, o Options) *echo.Echo {
    e := echo.New()
    e.HideBanner = true
    e.HidePort = true
    e.HTTPErrorHandler = handler.HTTPErrorHandler(o.Log)

    e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
    e.Use(middleware.RequestLogger(o.Log))
    e.Use(echomw.Recover())
    if len(o.CORSOrigins) > 0 {
        e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
            AllowOrigins:     o.CORSOrigins,
            AllowCredentials: true,
        }))
    }
    if o.BodyLimit != "" {
        e.Use(echomw.BodyLimit(o.BodyLimit))
    }
    if o.RateLimit == nil {
        o.RateLimit = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }

    e.Static("/uploads", filepath.Join(o.UploadDir, "uploads"))

    RegisterRoutes(e, h, o)
    RegisterLandlord(e, h, o)
    RegisterTenant(e, h, o)
    return e
}

// RegisterRoutes registers the account endpoints and everything that only
// needs a session of any role.
func RegisterRoutes(e *echo.Echo, h Handlers, o Options) {
    if h.Health != nil {
        e.GET("/healthz", h.Health)
    }

    e.POST("/register", h.Auth.Register)
    e.POST("/login", h.Auth.Login, o.RateLimit)
    e.POST("/logout", h.Auth.Logout)
    e.GET("/logout", h.Auth.Logout)
    e.POST("/users/check", h.Auth.CheckUser)
    e.GET("/session", h.Auth.Session, middleware.OptionalSession(o.Sessions))

    // Per route rather than a "" group, whose catch-all would put every
    // unknown path behind the session check.
    authed := middleware.SessionAuth(o.Sessions)
    e.GET("/profile", h.Auth.Me, authed)
    e.POST("/profile/picture", h.Profile.UploadPicture, authed)
}
