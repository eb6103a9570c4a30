package domain

// Decision is the outcome of an access-control check. It is a signal for the
// HTTP layer, not an error.
type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// DecideAuthenticated allows any live session.
func DecideAuthenticated(id *Identity) Decision {
	if id == nil {
		return Unauthenticated
	}
	return Allow
}

// DecideRole allows only a session whose role equals required. An anonymous
// caller is Unauthenticated; a caller holding another role is Forbidden.
func DecideRole(id *Identity, required Role) Decision {
	if id == nil {
		return Unauthenticated
	}
	switch required {
	case RoleUser, RoleAdmin:
		if id.Role == required {
			return Allow
		}
		return Forbidden
	default:
		return Forbidden
	}
}
