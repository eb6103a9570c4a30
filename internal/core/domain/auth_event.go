package domain

import "time"

// AuthEventType names a transition of the authentication state machine.
type AuthEventType string

const (
	EventRegistered     AuthEventType = "registered"
	EventProvisioned    AuthEventType = "provisioned"
	EventLoginSucceeded AuthEventType = "login_succeeded"
	EventLoginFailed    AuthEventType = "login_failed"
	EventLoggedOut      AuthEventType = "logged_out"
	EventLoggedOutAll   AuthEventType = "logged_out_all"
)

// AuthEvent is one entry of the authentication audit trail.
type AuthEvent struct {
	Type       AuthEventType
	UserID     string // empty when the account is unknown
	Identifier string // email or username the caller supplied
	Timestamp  time.Time
}
