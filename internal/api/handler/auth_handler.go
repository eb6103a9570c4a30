package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tokobaju/storefront/internal/api/cookie"
	"github.com/tokobaju/storefront/internal/api/middleware"
	"github.com/tokobaju/storefront/internal/core/domain"
	"github.com/tokobaju/storefront/internal/core/ports"
)

const (
	userLanding  = "/dashboard"
	adminLanding = "/admin/dashboard"
)

type AuthHandler struct {
	authService ports.AuthService
	cookies     *cookie.Codec
	loginPath   string
}

// NewAuthHandler builds the auth endpoints. An empty loginPath falls back to
// middleware.DefaultLoginPath.
func NewAuthHandler(authService ports.AuthService, cookies *cookie.Codec, loginPath string) *AuthHandler {
	if loginPath == "" {
		loginPath = middleware.DefaultLoginPath
	}
	return &AuthHandler{authService: authService, cookies: cookies, loginPath: loginPath}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	// Role is accepted for compatibility and ignored.
	Role string `json:"role,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type provisionRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role"     validate:"required,oneof=user admin"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type loginResponse struct {
	User     *domain.User `json:"user"`
	Redirect string       `json:"redirect"`
}

// Register creates a new user account. The role is always "user".
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
// @Router       /auth/register/{role} [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Role == "" {
		req.Role = c.Param("role")
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{User: user})
}

// Login authenticates by email and password and sets the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	session, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	if err := h.cookies.Write(c, session); err != nil {
		return err
	}

	redirect := userLanding
	if user.Role == domain.RoleAdmin {
		redirect = adminLanding
	}
	return c.JSON(http.StatusOK, loginResponse{User: user, Redirect: redirect})
}

// Logout ends the caller's session. It succeeds without a session too.
// A GET sends the browser back to the login page.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Success      303
// @Router       /auth/logout [post]
// @Router       /auth/logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), h.cookies.Read(c)); err != nil {
		return err
	}
	h.cookies.Clear(c)

	if c.Request().Method == http.MethodGet {
		return c.Redirect(http.StatusSeeOther, h.loginPath)
	}
	return c.NoContent(http.StatusNoContent)
}

// LogoutAll revokes every session of the caller.
//
// @Summary      Logout everywhere
// @Tags         auth
// @Success      204
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.authService.LogoutAll(c.Request().Context(), id.UserID); err != nil {
		return err
	}
	h.cookies.Clear(c)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the account behind the session.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.authService.CurrentUser(c.Request().Context(), middleware.SessionToken(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// Provision creates an account with an explicit role.
//
// @Summary      Provision an account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      provisionRequest  true  "Account details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /admin/users [post]
func (h *AuthHandler) Provision(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req provisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	user, err := h.authService.Provision(c.Request().Context(), *id, ports.ProvisionInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{User: user})
}
