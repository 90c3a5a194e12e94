package identity

// Principal is the authentication context established by the transport layer,
// one value per inbound request. It is read-only for the request's duration
// and never persisted.
type Principal interface {
	principal()
}

// SessionPrincipal is the session-channel variant: an interactive OAuth login
// left a raw provider attribute bag and granted-authority tags behind.
type SessionPrincipal struct {
	Attributes  map[string]any
	Authorities []string
}

func (SessionPrincipal) principal() {}

// TokenPrincipal is the bearer-token variant: a thin username+authorities view
// produced after an upstream filter verified the token. The richer claims are
// recovered from the Authorization header by the resolver.
type TokenPrincipal struct {
	Username    string
	Authorities []string
}

func (TokenPrincipal) principal() {}
