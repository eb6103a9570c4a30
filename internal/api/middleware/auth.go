package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tokobaju/storefront/internal/api/cookie"
	"github.com/tokobaju/storefront/internal/core/domain"
	"github.com/tokobaju/storefront/internal/core/ports"
)

// DefaultLoginPath is where unauthenticated browser requests are sent when no
// login path is configured. The page itself is served by the storefront UI.
const DefaultLoginPath = "/login"

// Context keys set for downstream handlers.
const (
	IdentityKey     = "identity"
	SessionTokenKey = "session_token"
)

// RequireAuthenticated lets through any request carrying a live session.
// Anonymous browser page loads are redirected to loginPath.
func RequireAuthenticated(ac ports.AccessControl, cookies *cookie.Codec, loginPath string) echo.MiddlewareFunc {
	return guard(cookies, loginPath, func(c echo.Context, token string) (domain.Decision, *domain.Identity, error) {
		return ac.RequireAuthenticated(c.Request().Context(), token)
	})
}

type decideFunc func(c echo.Context, token string) (domain.Decision, *domain.Identity, error)

func guard(cookies *cookie.Codec, loginPath string, decide decideFunc) echo.MiddlewareFunc {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := cookies.Read(c)
			decision, id, err := decide(c, token)
			if err != nil {
				return fmt.Errorf("access control: %w", err)
			}

			switch decision {
			case domain.Allow:
				c.Set(IdentityKey, id)
				c.Set(SessionTokenKey, token)
				return next(c)
			case domain.Unauthenticated:
				if cookies.Present(c) {
					cookies.Clear(c)
				}
				if wantsHTML(c.Request()) {
					return c.Redirect(http.StatusSeeOther, loginPath)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			default:
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
		}
	}
}

// wantsHTML reports whether the request is a browser page load.
func wantsHTML(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

// Identity returns the identity stored by the guards, or nil.
func Identity(c echo.Context) *domain.Identity {
	id, _ := c.Get(IdentityKey).(*domain.Identity)
	return id
}

// SessionToken returns the session token stored by the guards.
func SessionToken(c echo.Context) string {
	tok, _ := c.Get(SessionTokenKey).(string)
	return tok
}
