package handler

import (
    "context"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/chrolluash/rentconnect/internal/middleware"
    "github.com/chrolluash/rentconnect/internal/service"
    "github.com/chrolluash/rentconnect/internal/storage"
    "github.com/chrolluash/rentconnect/internal/utils"
)

// Pictures stores profile pictures.
type Pictures interface {
    UploadPicture(ctx context.Context, userID uint64, u *storage.Upload) (string, error)
}

type ProfileHandler struct {
    pics Pictures
    base string
    log  logrus.FieldLogger
}

func NewProfileHandler(p Pictures, publicBase string, log logrus.FieldLogger) *ProfileHandler {
    return &ProfileHandler{pics: p, base: publicBase, log: log}
}

// UploadPicture handles the multipart field "profile_picture".
func (h *ProfileHandler) UploadPicture(c echo.Context) error {
    var up *storage.Upload
    fh, err := c.FormFile("profile_picture")
    switch {
    case err == nil:
        u := storage.FromMultipart(fh)
        up = &u
    case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
    default:
        return fail(c, h.log, service.Validation("No file uploaded or upload error occurred"))
    }

    ctx, cancel := withTimeout(c)
    defer cancel()
    rel, err := h.pics.UploadPicture(ctx, middleware.UserID(c), up)
    if err != nil {
        return fail(c, h.log, err)
    }
    return success(c, http.StatusOK, echo.Map{
        "message":             "Profile picture updated successfully",
        "profile_picture":     rel,
        "profile_picture_url": utils.ResolvePhotoURL(rel, h.base),
    })
}
