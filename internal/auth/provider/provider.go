package provider

import (
	"context"
)

// OAuthProvider defines the contract every external auth provider must
// implement. Implementations return the verified raw attribute bag only and
// must not perform user creation, linking, or session management; the
// identity layer classifies and extracts from the bag.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google", "apple").
	Name() string

	// AuthCodeURL returns the OAuth authorization URL.
	// State and PKCE parameters are provided by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode exchanges the authorization code for provider credentials,
	// verifies the ID token, and returns its claim bag.
	ExchangeCode(
		ctx context.Context,
		code string,
		codeVerifier string,
	) (map[string]any, error)
}
