// Package identity normalizes the two authentication channels, interactive
// OAuth sessions and bearer-token API calls, into one canonical user
// representation, and decides whether that user may run a handler.
package identity

import (
	"slices"
	"strings"
)

// Sentinel values substituted for empty fields so that a resolved user never
// carries an empty email, name, provider, or provider subject id.
const (
	SentinelEmail      = "unknown@example.com"
	SentinelName       = "Unknown User"
	SentinelProviderID = "unknown"

	RoleUser  = "USER"
	RoleAdmin = "ADMIN"

	// authorityPrefix is stripped from granted-authority tags to obtain role names.
	authorityPrefix = "ROLE_"
)

// User is the canonical identity of the caller, independent of whether the
// request arrived with a session or a bearer token.
//
// ExternalID is a stable hash of the provider subject id (or email), not a
// database primary key; linking it to a persisted row is the business layer's
// job.
type User struct {
	ExternalID        int64    `json:"id"`
	Email             string   `json:"email"`
	DisplayName       string   `json:"name"`
	Provider          Provider `json:"provider"`
	ProviderSubjectID string   `json:"providerId"`
	Roles             []string `json:"roles"`
}

func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// stripAuthorityPrefix converts granted-authority tags into role names.
func stripAuthorityPrefix(authorities []string) []string {
	roles := make([]string, 0, len(authorities))
	for _, a := range authorities {
		roles = append(roles, strings.TrimPrefix(a, authorityPrefix))
	}
	return roles
}
