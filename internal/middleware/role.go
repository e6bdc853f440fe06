package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireRole aborts with 401 unless the session resolved by SessionAuth
// has the given role.  The message names the login the user should use.
func RequireRole(role string) echo.MiddlewareFunc {
    msg := "Unauthorized. Please login as a " + role + "."
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if Role(c) != role {
                return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": msg})
            }
            return next(c)
        }
    }
}
