package middleware

import (
	"net/http"

	"github.com/nbv3/kip-ventory/internal/common"

	"github.com/labstack/echo/v4"
)

// RequireAdmin rejects requests whose acting user lacks staff or superuser
// privileges. Services repeat this check; the middleware just fails fast for
// routes that are admin-only end to end.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := common.ActingUserFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if !user.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "Administrator privileges required")
			}
			return next(c)
		}
	}
}
