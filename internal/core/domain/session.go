package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"
)

// SessionTokenBytes is the amount of randomness behind every session token.
const SessionTokenBytes = 32

// Session is an issued login. Token is only ever held by the client; stores
// keep HashSessionToken(Token).
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity returns the principal the session authenticates.
func (s *Session) Identity() *Identity {
	return &Identity{UserID: s.UserID, Role: s.Role}
}

// ExpiredAt reports whether the session is no longer live at t.
func (s *Session) ExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// NewSessionToken returns a URL-safe token drawn from crypto/rand.
func NewSessionToken() (string, error) {
	b := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashSessionToken is the lookup key stores use for a token.
func HashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
