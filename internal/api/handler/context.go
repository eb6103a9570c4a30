package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tokobaju/storefront/internal/api/middleware"
	"github.com/tokobaju/storefront/internal/core/domain"
)

// ctxIdentity returns the identity injected by the access guards. A missing
// identity means the route was mounted without a guard.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	id := middleware.Identity(c)
	if id == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return id, nil
}
