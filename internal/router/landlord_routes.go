package router

import (
    "github.com/labstack/echo/v4"

    "github.com/chrolluash/rentconnect/internal/middleware"
    "github.com/chrolluash/rentconnect/internal/model"
)

// RegisterLandlord registers the landlord property endpoints and the
// geocoder used by the property form.  All routes require a landlord session.
func RegisterLandlord(e *echo.Echo, h Handlers, o Options) {
    g := e.Group(
        "/landlord",
        middleware.SessionAuth(o.Sessions),
        middleware.RequireRole(model.RoleLandlord),
    )
    g.GET("/properties", h.Landlord.List)
    g.POST("/properties", h.Landlord.Create)
    // Static segment wins over :id in Echo's router.
    g.POST("/properties/delete", h.Landlord.DeleteByBody)
    g.GET("/properties/:id", h.Landlord.Get)
    g.POST("/properties/:id", h.Landlord.Update)
    g.PATCH("/properties/:id/status", h.Landlord.UpdateStatus)
    g.DELETE("/properties/:id", h.Landlord.Delete)
    g.DELETE("/properties/:id/photos/:photoId", h.Landlord.DeletePhoto)

    e.GET("/geocode", h.Geocode.Search,
        middleware.SessionAuth(o.Sessions),
        middleware.RequireRole(model.RoleLandlord),
        o.RateLimit,
    )
}
