package router

import (
    "github.com/labstack/echo/v4"

    "github.com/chrolluash/rentconnect/internal/middleware"
    "github.com/chrolluash/rentconnect/internal/model"
)

// RegisterTenant registers the tenant listing.  Responses are cached per
// user and dropped whenever a property changes.
func RegisterTenant(e *echo.Echo, h Handlers, o Options) {
    g := e.Group(
        "/tenant",
        middleware.SessionAuth(o.Sessions),
        middleware.RequireRole(model.RoleTenant),
    )
    g.GET("/properties", h.Tenant.ListAvailable, o.Cache.Middleware())
}
