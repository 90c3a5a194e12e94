package identity

import "strings"

// Provider tags the origin of an identity.
type Provider string

const (
	ProviderGoogle  Provider = "google"
	ProviderApple   Provider = "apple"
	ProviderJWT     Provider = "jwt"
	ProviderUnknown Provider = "unknown"
)

// Attributes is the typed view over a provider's raw attribute bag. Each
// extraction returns "" when the underlying field is missing or mistyped;
// sentinel substitution happens in the resolver, not here.
type Attributes interface {
	Provider() Provider
	Email() string
	DisplayName() string
	SubjectID() string
}

// DetectProvider classifies a raw attribute bag by its key set. The rule list
// is closed and ordered: first match wins. Unrelated extra keys never change
// the outcome.
func DetectProvider(raw map[string]any) Provider {
	_, hasSub := raw["sub"]
	switch {
	case hasSub && hasKey(raw, "email_verified"):
		return ProviderGoogle
	case hasSub && hasKey(raw, "is_private_email"):
		return ProviderApple
	default:
		return ProviderUnknown
	}
}

// ParseAttributes detects the provider and builds the matching typed record.
func ParseAttributes(raw map[string]any) Attributes {
	switch DetectProvider(raw) {
	case ProviderGoogle:
		return GoogleAttributes{
			Subject:       str(raw["sub"]),
			EmailAddr:     str(raw["email"]),
			EmailVerified: boolean(raw["email_verified"]),
			Name:          str(raw["name"]),
			Picture:       str(raw["picture"]),
		}
	case ProviderApple:
		attrs := AppleAttributes{
			Subject:        str(raw["sub"]),
			EmailAddr:      str(raw["email"]),
			IsPrivateEmail: boolean(raw["is_private_email"]),
		}
		// Apple delivers the name as a nested first/last structure.
		if name, ok := raw["name"].(map[string]any); ok {
			attrs.FirstName = str(name["firstName"])
			attrs.LastName = str(name["lastName"])
		}
		return attrs
	default:
		return UnknownAttributes{}
	}
}

// GoogleAttributes is the attribute record of a Google OIDC principal.
type GoogleAttributes struct {
	Subject       string
	EmailAddr     string
	EmailVerified bool
	Name          string
	Picture       string
}

func (GoogleAttributes) Provider() Provider    { return ProviderGoogle }
func (g GoogleAttributes) Email() string       { return g.EmailAddr }
func (g GoogleAttributes) DisplayName() string { return g.Name }
func (g GoogleAttributes) SubjectID() string   { return g.Subject }

// AppleAttributes is the attribute record of a Sign in with Apple principal.
type AppleAttributes struct {
	Subject        string
	EmailAddr      string
	IsPrivateEmail bool
	FirstName      string
	LastName       string
}

func (AppleAttributes) Provider() Provider  { return ProviderApple }
func (a AppleAttributes) Email() string     { return a.EmailAddr }
func (a AppleAttributes) SubjectID() string { return a.Subject }

func (a AppleAttributes) DisplayName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// UnknownAttributes is the empty record for unclassified bags.
type UnknownAttributes struct{}

func (UnknownAttributes) Provider() Provider  { return ProviderUnknown }
func (UnknownAttributes) Email() string       { return "" }
func (UnknownAttributes) DisplayName() string { return "" }
func (UnknownAttributes) SubjectID() string   { return "" }

func hasKey(raw map[string]any, key string) bool {
	_, ok := raw[key]
	return ok
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func boolean(v any) bool {
	b, _ := v.(bool)
	return b
}
