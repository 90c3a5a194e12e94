package identity

import (
	"hash/fnv"
	"strings"
	"time"

	"github.com/Tianea2160/discipline/internal/logger"
	"github.com/Tianea2160/discipline/internal/token"
)

const bearerPrefix = "Bearer "

// ParseBearer extracts the token from an Authorization header value. Absence
// or a wrong prefix means "no token".
func ParseBearer(authorization string) string {
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return ""
	}
	return authorization[len(bearerPrefix):]
}

// Resolver normalizes a Principal into a canonical User. Resolution never
// fails: malformed claims or unexpected attribute shapes demote to a minimal
// identity or to nil, and only the explicit Require* entry points turn nil
// into an error.
type Resolver struct {
	codec *token.Codec

	now func() time.Time
}

func NewResolver(codec *token.Codec) *Resolver {
	return &Resolver{
		codec: codec,
		now:   time.Now,
	}
}

// Resolve produces the canonical identity for the request's principal.
// authorization is the raw Authorization header value; the token channel needs
// it to recover the full claim set from the bearer token.
func (r *Resolver) Resolve(p Principal, authorization string) *User {
	switch principal := p.(type) {
	case nil:
		return nil
	case SessionPrincipal:
		return r.resolveSession(principal)
	case *SessionPrincipal:
		if principal == nil {
			return nil
		}
		return r.resolveSession(*principal)
	case TokenPrincipal:
		return r.resolveToken(principal, authorization)
	case *TokenPrincipal:
		if principal == nil {
			return nil
		}
		return r.resolveToken(*principal, authorization)
	default:
		logger.Warn("unsupported principal type", map[string]any{
			"principal": p,
		})
		return nil
	}
}

func (r *Resolver) resolveSession(p SessionPrincipal) *User {
	attrs := ParseAttributes(p.Attributes)

	email := attrs.Email()
	name := attrs.DisplayName()
	subjectID := attrs.SubjectID()

	roles := stripAuthorityPrefix(p.Authorities)
	if len(roles) == 0 {
		roles = []string{RoleUser}
	}

	return &User{
		ExternalID:        r.deriveExternalID(subjectID, email),
		Email:             orSentinel(email, SentinelEmail),
		DisplayName:       orSentinel(name, SentinelName),
		Provider:          attrs.Provider(),
		ProviderSubjectID: orSentinel(subjectID, SentinelProviderID),
		Roles:             roles,
	}
}

func (r *Resolver) resolveToken(p TokenPrincipal, authorization string) *User {
	bearer := ParseBearer(authorization)
	if bearer == "" {
		return r.minimalTokenUser(p)
	}

	// Expiry is not re-checked here: the auth layer already accepted the
	// request, so even an expired-but-signed token still yields its claims.
	claims, err := r.codec.ParseUnchecked(bearer)
	if err != nil {
		logger.Warn("failed to parse bearer claims, using principal fallback", map[string]any{
			"error": err.Error(),
		})
		return r.minimalTokenUser(p)
	}

	email := fallback(claims.Subject, p.Username)
	name := fallback(claims.Name, p.Username)
	provider := fallback(claims.Provider, string(ProviderJWT))
	subjectID := fallback(claims.ProviderID, p.Username)

	return &User{
		ExternalID:        hashIdentifier(orSentinel(email, SentinelEmail)),
		Email:             orSentinel(email, SentinelEmail),
		DisplayName:       orSentinel(name, SentinelName),
		Provider:          Provider(orSentinel(provider, string(ProviderUnknown))),
		ProviderSubjectID: orSentinel(subjectID, SentinelProviderID),
		Roles:             stripAuthorityPrefix(p.Authorities),
	}
}

// minimalTokenUser is the best-effort identity when no token can be read back
// from the request.
func (r *Resolver) minimalTokenUser(p TokenPrincipal) *User {
	email := SentinelEmail
	if strings.Contains(p.Username, "@") {
		email = p.Username
	}

	return &User{
		ExternalID:        hashIdentifier(email),
		Email:             email,
		DisplayName:       orSentinel(p.Username, SentinelName),
		Provider:          ProviderJWT,
		ProviderSubjectID: orSentinel(p.Username, SentinelProviderID),
		Roles:             stripAuthorityPrefix(p.Authorities),
	}
}

// deriveExternalID hashes the provider subject id, or the email when the
// subject id is absent. A time-based pseudo-id is the last resort; it is not a
// durable key and callers must not treat it as one.
func (r *Resolver) deriveExternalID(subjectID, email string) int64 {
	identifier := subjectID
	if identifier == "" {
		identifier = email
	}
	if identifier == "" {
		return r.now().UnixMilli() % 1_000_000
	}
	return hashIdentifier(identifier)
}

func hashIdentifier(identifier string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identifier))
	return int64(h.Sum32())
}

func orSentinel(v, sentinel string) string {
	if v == "" {
		return sentinel
	}
	return v
}

func fallback(v, alt string) string {
	if v == "" {
		return alt
	}
	return v
}
