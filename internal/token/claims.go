// Package token signs, verifies, and parses the bearer tokens issued after
// OAuth login. Tokens are compact JWTs signed with HMAC-SHA256.
package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed payload of a bearer token. The subject is the user's
// email; name/provider/providerId mirror what the OAuth provider asserted at
// issuance time.
type Claims struct {
	jwt.RegisteredClaims

	Name       string `json:"name,omitempty"`
	Provider   string `json:"provider,omitempty"`
	ProviderID string `json:"providerId,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Claim names accepted in the extra-claims map of Codec.Issue.
const (
	ClaimName       = "name"
	ClaimProvider   = "provider"
	ClaimProviderID = "providerId"
	ClaimEmail      = "email"
)

// Custom returns the non-registered claims as a map, mirroring the shape
// passed to Codec.Issue.
func (c *Claims) Custom() map[string]string {
	out := make(map[string]string)
	if c.Name != "" {
		out[ClaimName] = c.Name
	}
	if c.Provider != "" {
		out[ClaimProvider] = c.Provider
	}
	if c.ProviderID != "" {
		out[ClaimProviderID] = c.ProviderID
	}
	if c.Email != "" {
		out[ClaimEmail] = c.Email
	}
	return out
}
