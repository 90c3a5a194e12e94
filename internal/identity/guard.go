package identity

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allowed Decision = iota
	Unauthorized
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Requirement is a handler's declared role requirement. An empty role set
// means authentication alone suffices.
type Requirement struct {
	Roles []string
}

// Check evaluates a requirement against a resolved identity. Pure function:
// nil user is Unauthorized, an empty requirement is Allowed, otherwise any
// overlapping role allows the call.
func Check(user *User, req Requirement) Decision {
	if user == nil {
		return Unauthorized
	}
	if len(req.Roles) == 0 {
		return Allowed
	}
	for _, role := range req.Roles {
		if user.HasRole(role) {
			return Allowed
		}
	}
	return Forbidden
}
