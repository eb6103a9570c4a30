package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/tokobaju/storefront/internal/api/cookie"
	"github.com/tokobaju/storefront/internal/core/domain"
	"github.com/tokobaju/storefront/internal/core/ports"
)

// RequireRole lets through only sessions holding role. Anonymous callers are
// treated as unauthenticated; authenticated callers with another role get 403.
func RequireRole(ac ports.AccessControl, cookies *cookie.Codec, role domain.Role, loginPath string) echo.MiddlewareFunc {
	return guard(cookies, loginPath, func(c echo.Context, token string) (domain.Decision, *domain.Identity, error) {
		return ac.RequireRole(c.Request().Context(), token, role)
	})
}
