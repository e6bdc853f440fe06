package handler

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/chrolluash/rentconnect/internal/model"
    "github.com/chrolluash/rentconnect/internal/service"
)

// TenantHandler serves the listing of available properties.
type TenantHandler struct {
    props Properties
    base  string
    log   logrus.FieldLogger
}

func NewTenantHandler(p Properties, publicBase string, log logrus.FieldLogger) *TenantHandler {
    return &TenantHandler{props: p, base: publicBase, log: log}
}

// parseFilter reads q, type, min_rent, max_rent and min_bedrooms.  Empty
// parameters mean no filter.
func parseFilter(c echo.Context) (model.PropertyFilter, error) {
    f := model.PropertyFilter{
        Query: strings.TrimSpace(c.QueryParam("q")),
        Type:  strings.ToLower(strings.TrimSpace(c.QueryParam("type"))),
    }
    var err error
    if v := c.QueryParam("min_rent"); v != "" {
        if f.MinRent, err = strconv.ParseFloat(v, 64); err != nil {
            return f, service.Validation("Invalid minimum rent")
        }
    }
    if v := c.QueryParam("max_rent"); v != "" {
        if f.MaxRent, err = strconv.ParseFloat(v, 64); err != nil {
            return f, service.Validation("Invalid maximum rent")
        }
    }
    if v := c.QueryParam("min_bedrooms"); v != "" {
        if f.MinBedrooms, err = strconv.Atoi(v); err != nil {
            return f, service.Validation("Invalid number of bedrooms")
        }
    }
    return f, nil
}

// ListAvailable returns available properties, newest first, with landlord
// contact details.
func (h *TenantHandler) ListAvailable(c echo.Context) error {
    f, err := parseFilter(c)
    if err != nil {
        return fail(c, h.log, err)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    items, err := h.props.ListAvailable(ctx, f)
    if err != nil {
        return fail(c, h.log, err)
    }
    return success(c, http.StatusOK, echo.Map{"properties": viewProperties(items, h.base), "count": len(items)})
}
