package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestCodec(t *testing.T, ttl time.Duration) *Codec {
	t.Helper()
	codec, err := NewCodec(testSecret, ttl)
	require.NoError(t, err)
	return codec
}

func TestNewCodecValidation(t *testing.T) {
	_, err := NewCodec("too-short", time.Hour)
	assert.ErrorIs(t, err, ErrSecretTooShort)

	_, err = NewCodec(testSecret, 0)
	assert.ErrorIs(t, err, ErrNonPositiveExpiry)
}

func TestIssueRequiresSubject(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	_, err := codec.Issue("", nil)
	assert.ErrorIs(t, err, ErrEmptySubject)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	extra := map[string]string{
		ClaimName:       "A",
		ClaimProvider:   "google",
		ClaimProviderID: "42",
	}
	raw, err := codec.Issue("a@x.com", extra)
	require.NoError(t, err)

	claims, err := codec.Verify(raw)
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, extra, claims.Custom())
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}

func TestVerifyRejectsForgedToken(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	other := newTestCodec(t, time.Hour)
	other.secret = []byte("ffffffffffffffffffffffffffffffff")

	raw, err := other.Issue("a@x.com", nil)
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	_, err := codec.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyExpired(t *testing.T) {
	codec := newTestCodec(t, time.Minute)

	raw, err := codec.Issue("a@x.com", map[string]string{ClaimName: "A"})
	require.NoError(t, err)

	// move the clock past the TTL
	codec.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err = codec.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestForgedBeatsExpired(t *testing.T) {
	// a forged token that is also expired must read as invalid, not expired
	codec := newTestCodec(t, time.Minute)
	other := newTestCodec(t, time.Minute)
	other.secret = []byte("ffffffffffffffffffffffffffffffff")

	raw, err := other.Issue("a@x.com", nil)
	require.NoError(t, err)

	codec.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err = codec.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseUncheckedSkipsExpiry(t *testing.T) {
	codec := newTestCodec(t, time.Minute)

	extra := map[string]string{
		ClaimName:       "A",
		ClaimProvider:   "google",
		ClaimProviderID: "42",
	}
	raw, err := codec.Issue("a@x.com", extra)
	require.NoError(t, err)

	codec.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, ErrTokenExpired)

	claims, err := codec.ParseUnchecked(raw)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, extra, claims.Custom())
}

func TestParseUncheckedStillChecksSignature(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	other := newTestCodec(t, time.Hour)
	other.secret = []byte("ffffffffffffffffffffffffffffffff")

	raw, err := other.Issue("a@x.com", nil)
	require.NoError(t, err)

	_, err = codec.ParseUnchecked(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
