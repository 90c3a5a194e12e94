package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid covers bad signatures and malformed structure.
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrTokenExpired means the signature checked out but the token is past its expiry.
	ErrTokenExpired = errors.New("token has expired")

	ErrEmptySubject      = errors.New("token subject must not be empty")
	ErrSecretTooShort    = errors.New("jwt secret must be at least 32 characters")
	ErrNonPositiveExpiry = errors.New("token ttl must be positive")
)

// Codec issues and verifies HMAC-SHA256 signed bearer tokens. The signing key
// and TTL are fixed at construction and never mutated.
type Codec struct {
	secret []byte
	ttl    time.Duration

	now func() time.Time
}

func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if len(secret) < 32 {
		return nil, ErrSecretTooShort
	}
	if ttl <= 0 {
		return nil, ErrNonPositiveExpiry
	}
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue creates a signed token for the subject. The extra map carries the
// optional name/provider/providerId/email claims; unknown keys are ignored.
func (c *Codec) Issue(subject string, extra map[string]string) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}

	now := c.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Name:       extra[ClaimName],
		Provider:   extra[ClaimProvider],
		ProviderID: extra[ClaimProviderID],
		Email:      extra[ClaimEmail],
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and the expiry, in that order: a forged token is
// reported invalid even when it would also be expired.
func (c *Codec) Verify(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ParseUnchecked verifies the signature but skips all claim validation,
// expiry included. The identity resolver uses it to recover claims from a
// token the surrounding auth layer already accepted.
func (c *Codec) ParseUnchecked(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return c.secret, nil
}
