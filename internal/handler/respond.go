package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/chrolluash/rentconnect/internal/service"
)

// reqTimeout bounds the database work of a single request.
const reqTimeout = 10 * time.Second

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), reqTimeout)
}

// statusFor maps a service error kind to its HTTP status.  Upstream
// failures are soft: the body carries success=false with a 200.
func statusFor(k service.Kind) int {
    switch k {
    case service.KindValidation:
        return http.StatusBadRequest
    case service.KindConflict:
        return http.StatusConflict
    case service.KindAuth:
        return http.StatusUnauthorized
    case service.KindRoleMismatch:
        return http.StatusForbidden
    case service.KindNotFound:
        return http.StatusNotFound
    case service.KindUpstream:
        return http.StatusOK
    default:
        return http.StatusInternalServerError
    }
}

// success writes {success:true, ...payload}.
func success(c echo.Context, status int, payload echo.Map) error {
    out := echo.Map{"success": true}
    for k, v := range payload {
        out[k] = v
    }
    return c.JSON(status, out)
}

// fail writes {success:false, message} for err.  Raw causes of storage and
// internal errors are logged and never sent.
func fail(c echo.Context, log logrus.FieldLogger, err error) error {
    kind := service.KindOf(err)
    status := statusFor(kind)
    if status >= http.StatusInternalServerError {
        log.WithError(err).WithFields(logrus.Fields{"path": c.Path(), "kind": kind}).Error("request failed")
    }
    return c.JSON(status, echo.Map{"success": false, "message": service.MessageOf(err)})
}

// HTTPErrorHandler renders framework errors (unknown route, bad method,
// body limit, recovered panics) in the same envelope as handler failures.
func HTTPErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }
        status := http.StatusInternalServerError
        msg := service.GenericMessage
        var he *echo.HTTPError
        if errors.As(err, &he) {
            status = he.Code
            if status < http.StatusInternalServerError {
                msg = http.StatusText(status)
                if m, isStr := he.Message.(string); isStr && m != "" {
                    msg = m
                }
            }
        } else if se := (*service.Error)(nil); errors.As(err, &se) {
            status = statusFor(se.Kind)
            msg = service.MessageOf(err)
        }
        if status >= http.StatusInternalServerError {
            log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
        }
        body := echo.Map{"success": false, "message": msg}
        if c.Request().Method == http.MethodHead {
            _ = c.NoContent(status)
            return
        }
        _ = c.JSON(status, body)
    }
}

// pathID parses a positive numeric route parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}
