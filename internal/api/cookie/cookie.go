// Package cookie carries session tokens in a signed HttpOnly cookie.
//
// The cookie value is an HS256 JWT holding the opaque session token (sid) and
// its expiry. Signature or expiry failures read as "no session"; the session
// store remains the authority on whether the token is live.
package cookie

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/tokobaju/storefront/internal/core/domain"
)

const DefaultName = "storefront_session"

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type Codec struct {
	name   string
	secret []byte
	secure bool
	now    func() time.Time
}

func NewCodec(name, secret string, secure bool) *Codec {
	if name == "" {
		name = DefaultName
	}
	return &Codec{name: name, secret: []byte(secret), secure: secure, now: time.Now}
}

// Name returns the cookie name.
func (k *Codec) Name() string { return k.name }

// Sign wraps a session token into a signed cookie value.
func (k *Codec) Sign(s *domain.Session) (string, error) {
	if s == nil || s.Token == "" {
		return "", errors.New("cookie: empty session")
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: s.Token,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(k.now()),
		},
	})
	return t.SignedString(k.secret)
}

// Parse returns the session token inside value, or "" when value is not a
// cookie this codec signed or has expired.
func (k *Codec) Parse(value string) string {
	if value == "" {
		return ""
	}
	var c claims
	tkn, err := jwt.ParseWithClaims(value, &c, func(*jwt.Token) (any, error) {
		return k.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(k.now), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return ""
	}
	return c.SessionID
}

// Write sets the session cookie on the response.
func (k *Codec) Write(c echo.Context, s *domain.Session) error {
	value, err := k.Sign(s)
	if err != nil {
		return err
	}
	maxAge := int(s.ExpiresAt.Sub(k.now()).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetCookie(k.cookie(value, maxAge, s.ExpiresAt))
	return nil
}

// Read returns the session token carried by the request, or "".
func (k *Codec) Read(c echo.Context) string {
	ck, err := c.Cookie(k.name)
	if err != nil {
		return ""
	}
	return k.Parse(ck.Value)
}

// Present reports whether the request carries a session cookie at all,
// valid or not.
func (k *Codec) Present(c echo.Context) bool {
	ck, err := c.Cookie(k.name)
	return err == nil && ck.Value != ""
}

// Clear expires the session cookie on the client.
func (k *Codec) Clear(c echo.Context) {
	c.SetCookie(k.cookie("", -1, time.Unix(0, 0)))
}

func (k *Codec) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     k.name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   k.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
