package handler

import (
    "context"
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/chrolluash/rentconnect/internal/geocode"
)

// Locations searches addresses.
type Locations interface {
    Search(ctx context.Context, q string) ([]geocode.Place, error)
}

// GeocodeHandler proxies address searches for the property form map.
type GeocodeHandler struct {
    geo Locations
    log logrus.FieldLogger
}

func NewGeocodeHandler(g Locations, log logrus.FieldLogger) *GeocodeHandler {
    return &GeocodeHandler{geo: g, log: log}
}

// Search handles GET /geocode?q=.  Upstream problems come back as
// success=false with a 200.
func (h *GeocodeHandler) Search(c echo.Context) error {
    q := c.QueryParam("q")
    start := time.Now()
    places, err := h.geo.Search(c.Request().Context(), q)
    l := h.log.WithFields(logrus.Fields{"query": q, "latency_ms": time.Since(start).Milliseconds()})
    if err != nil {
        l.WithError(err).Info("geocode failed")
        return fail(c, h.log, err)
    }
    l.WithField("results", len(places)).Info("geocode")
    return success(c, http.StatusOK, echo.Map{
        "message": fmt.Sprintf("Found %d location(s)", len(places)),
        "data":    places,
    })
}
