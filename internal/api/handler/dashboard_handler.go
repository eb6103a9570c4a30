package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tokobaju/storefront/internal/api/middleware"
	"github.com/tokobaju/storefront/internal/core/domain"
	"github.com/tokobaju/storefront/internal/core/ports"
)

// DashboardHandler serves the landing pages behind login.
type DashboardHandler struct {
	authService    ports.AuthService
	productService ports.ProductService
}

func NewDashboardHandler(authService ports.AuthService, productService ports.ProductService) *DashboardHandler {
	return &DashboardHandler{authService: authService, productService: productService}
}

type dashboardResponse struct {
	User *domain.User `json:"user"`
}

type adminDashboardResponse struct {
	User         *domain.User `json:"user"`
	ProductCount int64        `json:"product_count"`
}

// User is the landing page of any signed-in account.
//
// @Summary      User dashboard
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  map[string]string
// @Router       /dashboard [get]
func (h *DashboardHandler) User(c echo.Context) error {
	user, err := h.authService.CurrentUser(c.Request().Context(), middleware.SessionToken(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{User: user})
}

// Admin is the admin landing page with catalog totals.
//
// @Summary      Admin dashboard
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  adminDashboardResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /admin/dashboard [get]
func (h *DashboardHandler) Admin(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.authService.CurrentUser(ctx, middleware.SessionToken(c))
	if err != nil {
		return err
	}
	count, err := h.productService.Count(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminDashboardResponse{User: user, ProductCount: count})
}
