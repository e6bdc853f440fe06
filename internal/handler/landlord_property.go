package handler

import (
    "context"
    "errors"
    "mime/multipart"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/chrolluash/rentconnect/internal/middleware"
    "github.com/chrolluash/rentconnect/internal/model"
    "github.com/chrolluash/rentconnect/internal/service"
    "github.com/chrolluash/rentconnect/internal/storage"
)

// Properties is the property service as used by the handlers.
type Properties interface {
    Create(ctx context.Context, landlordID uint64, in service.PropertyInput, photos []storage.Upload) (*model.Property, error)
    Update(ctx context.Context, landlordID, id uint64, in service.PropertyInput, photos []storage.Upload) (*model.Property, error)
    UpdateStatus(ctx context.Context, landlordID, id uint64, status string) error
    Delete(ctx context.Context, landlordID, id uint64) error
    DeletePhoto(ctx context.Context, landlordID, propertyID, photoID uint64) error
    ListMine(ctx context.Context, landlordID uint64) ([]*model.Property, error)
    GetMine(ctx context.Context, landlordID, id uint64) (*model.Property, error)
    ListAvailable(ctx context.Context, f model.PropertyFilter) ([]*model.Property, error)
}

// LandlordHandler serves the landlord property endpoints.  Every route is
// behind SessionAuth and RequireRole(landlord).
type LandlordHandler struct {
    props Properties
    base  string
    log   logrus.FieldLogger
}

func NewLandlordHandler(p Properties, publicBase string, log logrus.FieldLogger) *LandlordHandler {
    return &LandlordHandler{props: p, base: publicBase, log: log}
}

var errInvalidID = service.Validation("Invalid property ID")

type statusReq struct {
    Status string `json:"status" form:"status"`
}

type deleteReq struct {
    PropertyID uint64 `json:"property_id" form:"property_id"`
}

// formInput reads the scalar property fields from the multipart form.
func formInput(c echo.Context) service.PropertyInput {
    return service.PropertyInput{
        Title:       c.FormValue("title"),
        Type:        c.FormValue("type"),
        Rent:        c.FormValue("rent"),
        Bedrooms:    c.FormValue("bedrooms"),
        Bathrooms:   c.FormValue("bathrooms"),
        Area:        c.FormValue("area"),
        Address:     c.FormValue("address"),
        Latitude:    c.FormValue("latitude"),
        Longitude:   c.FormValue("longitude"),
        Description: c.FormValue("description"),
        Status:      c.FormValue("status"),
    }
}

// formPhotos collects the files posted as "photos" (or "photos[]") in
// submission order.  A request without a multipart body has no photos.
func formPhotos(c echo.Context) ([]storage.Upload, error) {
    form, err := c.MultipartForm()
    if errors.Is(err, http.ErrNotMultipart) {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    var files []*multipart.FileHeader
    files = append(files, form.File["photos"]...)
    files = append(files, form.File["photos[]"]...)
    out := make([]storage.Upload, 0, len(files))
    for _, fh := range files {
        out = append(out, storage.FromMultipart(fh))
    }
    return out, nil
}

// List returns every property of the landlord, newest first.
func (h *LandlordHandler) List(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()
    items, err := h.props.ListMine(ctx, middleware.UserID(c))
    if err != nil {
        return fail(c, h.log, err)
    }
    return success(c, http.StatusOK, echo.Map{"properties": viewProperties(items, h.base), "count": len(items)})
}

// Get returns one owned property.
func (h *LandlordHandler) Get(c echo.Context) error {
    id, valid := pathID(c, "id")
    if !valid {
        return fail(c, h.log, errInvalidID)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    p, err := h.props.GetMine(ctx, middleware.UserID(c), id)
    if err != nil {
        return fail(c, h.log, err)
    }
    return success(c, http.StatusOK, echo.Map{"property": viewProperty(p, h.base)})
}

// Create lists a new property from a multipart form.
func (h *LandlordHandler) Create(c echo.Context) error {
    photos, err := formPhotos(c)
    if err != nil {
        return fail(c, h.log, service.Validation("Invalid upload"))
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    p, err := h.props.Create(ctx, middleware.UserID(c), formInput(c), photos)
    if err != nil {
        return fail(c, h.log, err)
    }
    return success(c, http.StatusCreated, echo.Map{
        "message":     "Property listed successfully!",
        "property_id": p.ID,
        "property":    viewProperty(p, h.base),
    })
}

// Update overwrites an owned property and appends any new photos.
func (h *LandlordHandler) Update(c echo.Context) error {
    id, valid := pathID(c, "id")
    if !valid {
        return fail(c, h.log, errInvalidID)
    }
    photos, err := formPhotos(c)
    if err != nil {
        return fail(c, h.log, service.Validation("Invalid upload"))
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    p, err := h.props.Update(ctx, middleware.UserID(c), id, formInput(c), photos)
    if err != nil {
        return fail(c, h.log, err)
    }
    return success(c, http.StatusOK, echo.Map{
        "message":  "Property updated successfully!",
        "property": viewProperty(p, h.base),
    })
}

// UpdateStatus changes only the status of an owned property.
func (h *LandlordHandler) UpdateStatus(c echo.Context) error {
    id, valid := pathID(c, "id")
    if !valid {
        return fail(c, h.log, errInvalidID)
    }
    var req statusReq
    if err := c.Bind(&req); err != nil {
        return fail(c, h.log, service.Validation("Invalid request body"))
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    if err := h.props.UpdateStatus(ctx, middleware.UserID(c), id, req.Status); err != nil {
        return fail(c, h.log, err)
    }
    return success(c, http.StatusOK, echo.Map{"message": "Property status updated", "status": req.Status})
}

// Delete removes the property named in the path.
func (h *LandlordHandler) Delete(c echo.Context) error {
    id, valid := pathID(c, "id")
    if !valid {
        return fail(c, h.log, errInvalidID)
    }
    return h.delete(c, id)
}

// DeleteByBody removes the property named by {"property_id": N}.
func (h *LandlordHandler) DeleteByBody(c echo.Context) error {
    var req deleteReq
    if err := c.Bind(&req); err != nil || req.PropertyID == 0 {
        return fail(c, h.log, errInvalidID)
    }
    return h.delete(c, req.PropertyID)
}

func (h *LandlordHandler) delete(c echo.Context, id uint64) error {
    ctx, cancel := withTimeout(c)
    defer cancel()
    if err := h.props.Delete(ctx, middleware.UserID(c), id); err != nil {
        return fail(c, h.log, err)
    }
    return success(c, http.StatusOK, echo.Map{"message": "Property deleted successfully!"})
}

// DeletePhoto removes one photo of an owned property.
func (h *LandlordHandler) DeletePhoto(c echo.Context) error {
    id, valid := pathID(c, "id")
    if !valid {
        return fail(c, h.log, errInvalidID)
    }
    photoID, valid := pathID(c, "photoId")
    if !valid {
        return fail(c, h.log, service.Validation("Invalid photo ID"))
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    if err := h.props.DeletePhoto(ctx, middleware.UserID(c), id, photoID); err != nil {
        return fail(c, h.log, err)
    }
    return success(c, http.StatusOK, echo.Map{"message": "Photo removed"})
}
