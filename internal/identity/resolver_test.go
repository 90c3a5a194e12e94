package identity

import (
	"hash/fnv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tianea2160/discipline/internal/token"
)

const resolverSecret = "0123456789abcdef0123456789abcdef"

func newTestResolver(t *testing.T) (*Resolver, *token.Codec) {
	t.Helper()
	codec, err := token.NewCodec(resolverSecret, time.Hour)
	require.NoError(t, err)
	return NewResolver(codec), codec
}

func fnvID(identifier string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identifier))
	return int64(h.Sum32())
}

func TestParseBearer(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ParseBearer("Bearer abc.def.ghi"))
	assert.Equal(t, "", ParseBearer(""))
	assert.Equal(t, "", ParseBearer("Basic dXNlcjpwdw=="))
	assert.Equal(t, "", ParseBearer("bearer abc"))
}

func TestResolveNilPrincipal(t *testing.T) {
	r, _ := newTestResolver(t)

	assert.Nil(t, r.Resolve(nil, ""))

	var sp *SessionPrincipal
	assert.Nil(t, r.Resolve(sp, ""))
}

func TestResolveUnsupportedPrincipal(t *testing.T) {
	r, _ := newTestResolver(t)

	type oddPrincipal struct{ Principal }
	assert.Nil(t, r.Resolve(oddPrincipal{}, ""))
}

func TestResolveGoogleSession(t *testing.T) {
	r, _ := newTestResolver(t)

	u := r.Resolve(SessionPrincipal{
		Attributes: map[string]any{
			"sub":            "g-123",
			"email":          "a@gmail.com",
			"email_verified": true,
			"name":           "Alice",
		},
		Authorities: []string{"ROLE_USER", "ROLE_ADMIN"},
	}, "")

	require.NotNil(t, u)
	assert.Equal(t, "a@gmail.com", u.Email)
	assert.Equal(t, "Alice", u.DisplayName)
	assert.Equal(t, ProviderGoogle, u.Provider)
	assert.Equal(t, "g-123", u.ProviderSubjectID)
	assert.Equal(t, []string{"USER", "ADMIN"}, u.Roles)
	assert.Equal(t, fnvID("g-123"), u.ExternalID)
	assert.True(t, u.IsAdmin())
}

func TestResolveSessionSentinels(t *testing.T) {
	r, _ := newTestResolver(t)

	u := r.Resolve(SessionPrincipal{
		Attributes: map[string]any{"sub": "g-9", "email_verified": true},
	}, "")

	require.NotNil(t, u)
	assert.Equal(t, SentinelEmail, u.Email)
	assert.Equal(t, SentinelName, u.DisplayName)
	assert.Equal(t, "g-9", u.ProviderSubjectID)
	// no authorities defaults the session channel to USER
	assert.Equal(t, []string{RoleUser}, u.Roles)
	// subject id is present, so the id hashes it rather than the email
	assert.Equal(t, fnvID("g-9"), u.ExternalID)
}

func TestResolveSessionFallsBackToEmailID(t *testing.T) {
	r, _ := newTestResolver(t)

	u := r.Resolve(SessionPrincipal{
		Attributes: map[string]any{"email": "solo@x.com", "name": "Solo"},
	}, "")

	require.NotNil(t, u)
	assert.Equal(t, ProviderUnknown, u.Provider)
	assert.Equal(t, SentinelProviderID, u.ProviderSubjectID)
	assert.Equal(t, fnvID("solo@x.com"), u.ExternalID)
}

func TestResolveSessionPseudoID(t *testing.T) {
	r, _ := newTestResolver(t)
	fixed := time.UnixMilli(1_234_567_890)
	r.now = func() time.Time { return fixed }

	u := r.Resolve(SessionPrincipal{Attributes: map[string]any{}}, "")

	require.NotNil(t, u)
	assert.Equal(t, fixed.UnixMilli()%1_000_000, u.ExternalID)
}

func TestResolveTokenWithBearer(t *testing.T) {
	r, codec := newTestResolver(t)

	raw, err := codec.Issue("a@x.com", map[string]string{
		token.ClaimName:       "Alice",
		token.ClaimProvider:   "google",
		token.ClaimProviderID: "g-123",
	})
	require.NoError(t, err)

	u := r.Resolve(TokenPrincipal{
		Username:    "a@x.com",
		Authorities: []string{"ROLE_USER"},
	}, "Bearer "+raw)

	require.NotNil(t, u)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "Alice", u.DisplayName)
	assert.Equal(t, ProviderGoogle, u.Provider)
	assert.Equal(t, "g-123", u.ProviderSubjectID)
	assert.Equal(t, []string{"USER"}, u.Roles)
	assert.Equal(t, fnvID("a@x.com"), u.ExternalID)
}

func TestResolveTokenExpiredStillYieldsClaims(t *testing.T) {
	// the auth layer accepted the request, so resolution reads the claims back
	// even when the token has since expired
	codec, err := token.NewCodec(resolverSecret, time.Millisecond)
	require.NoError(t, err)
	r := NewResolver(codec)

	raw, err := codec.Issue("a@x.com", map[string]string{token.ClaimName: "Alice"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, token.ErrTokenExpired)

	u := r.Resolve(TokenPrincipal{Username: "a@x.com"}, "Bearer "+raw)

	require.NotNil(t, u)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "Alice", u.DisplayName)
}

func TestResolveTokenClaimFallbacks(t *testing.T) {
	r, codec := newTestResolver(t)

	// subject only: name, provider and subject id fall back
	raw, err := codec.Issue("a@x.com", nil)
	require.NoError(t, err)

	u := r.Resolve(TokenPrincipal{Username: "a@x.com"}, "Bearer "+raw)

	require.NotNil(t, u)
	assert.Equal(t, "a@x.com", u.DisplayName)
	assert.Equal(t, ProviderJWT, u.Provider)
	assert.Equal(t, "a@x.com", u.ProviderSubjectID)
}

func TestResolveTokenGarbageBearerFallsBack(t *testing.T) {
	r, _ := newTestResolver(t)

	u := r.Resolve(TokenPrincipal{Username: "a@x.com"}, "Bearer not-a-token")

	require.NotNil(t, u)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, ProviderJWT, u.Provider)
	assert.Equal(t, fnvID("a@x.com"), u.ExternalID)
}

func TestResolveTokenWithoutBearer(t *testing.T) {
	r, _ := newTestResolver(t)

	u := r.Resolve(TokenPrincipal{
		Username:    "service-account",
		Authorities: []string{"ROLE_ADMIN"},
	}, "")

	require.NotNil(t, u)
	// a username without an @ is not usable as an email
	assert.Equal(t, SentinelEmail, u.Email)
	assert.Equal(t, "service-account", u.DisplayName)
	assert.Equal(t, ProviderJWT, u.Provider)
	assert.Equal(t, "service-account", u.ProviderSubjectID)
	assert.Equal(t, []string{"ADMIN"}, u.Roles)
}

func TestResolveTokenEmptyPrincipal(t *testing.T) {
	r, _ := newTestResolver(t)

	u := r.Resolve(TokenPrincipal{}, "")

	require.NotNil(t, u)
	assert.Equal(t, SentinelEmail, u.Email)
	assert.Equal(t, SentinelName, u.DisplayName)
	assert.Equal(t, SentinelProviderID, u.ProviderSubjectID)
	assert.Empty(t, u.Roles)
}

func TestResolveIsDeterministic(t *testing.T) {
	r, codec := newTestResolver(t)

	raw, err := codec.Issue("a@x.com", map[string]string{token.ClaimName: "Alice"})
	require.NoError(t, err)

	p := TokenPrincipal{Username: "a@x.com", Authorities: []string{"ROLE_USER"}}
	first := r.Resolve(p, "Bearer "+raw)
	second := r.Resolve(p, "Bearer "+raw)

	assert.Equal(t, first, second)
}
