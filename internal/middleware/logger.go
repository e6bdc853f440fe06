package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
)

// RequestLogger writes one structured line per request.  It expects the
// RequestID middleware to run first.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                // Let the error handler write the response so the status is final.
                c.Error(err)
            }
            res := c.Response()
            fields := logrus.Fields{
                "method":     c.Request().Method,
                "path":       c.Path(),
                "uri":        c.Request().RequestURI,
                "status":     res.Status,
                "latency_ms": time.Since(start).Milliseconds(),
                "req_id":     res.Header().Get(echo.HeaderXRequestID),
                "ip":         c.RealIP(),
            }
            if id := UserID(c); id != 0 {
                fields["user_id"] = id
            }
            entry := log.WithFields(fields)
            switch {
            case res.Status >= 500:
                entry.WithError(err).Error("request")
            case res.Status >= 400:
                entry.Warn("request")
            default:
                entry.Info("request")
            }
            return nil
        }
    }
}
