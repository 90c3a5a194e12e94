// Package middleware establishes the per-request authentication context and
// injects the resolved identity into handlers.
package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Tianea2160/discipline/internal/identity"
	"github.com/Tianea2160/discipline/internal/logger"
	"github.com/Tianea2160/discipline/internal/session"
	"github.com/Tianea2160/discipline/internal/token"
)

// AuthoritySource yields the granted-authority tags for a bearer-token
// subject.
type AuthoritySource interface {
	AuthoritiesByEmail(ctx context.Context, email string) ([]string, error)
}

type AuthContext struct {
	sessions    session.Store
	codec       *token.Codec
	authorities AuthoritySource
	resolver    *identity.Resolver
}

func NewAuthContext(
	sessions session.Store,
	codec *token.Codec,
	authorities AuthoritySource,
	resolver *identity.Resolver,
) *AuthContext {
	return &AuthContext{
		sessions:    sessions,
		codec:       codec,
		authorities: authorities,
		resolver:    resolver,
	}
}

// Establish builds the request's Principal from whichever channel
// authenticated it (session cookie first, bearer token second) and resolves
// the canonical identity exactly once. Anonymous requests proceed with no
// principal; protected handlers reject them later.
func (a *AuthContext) Establish() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := a.establishPrincipal(c)
		if principal == nil {
			c.Next()
			return
		}

		ctx := identity.WithPrincipal(c.Request.Context(), principal)

		user := a.resolver.Resolve(principal, c.GetHeader("Authorization"))
		if user != nil {
			ctx = identity.WithUser(ctx, user)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (a *AuthContext) establishPrincipal(c *gin.Context) identity.Principal {
	if principal := a.sessionPrincipal(c); principal != nil {
		return principal
	}
	return a.tokenPrincipal(c)
}

func (a *AuthContext) sessionPrincipal(c *gin.Context) identity.Principal {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	sess, err := a.sessions.Get(c.Request.Context(), cookie.Value)
	if err != nil {
		logger.Error("session lookup failed", map[string]any{
			"error": err.Error(),
		})
		return nil
	}
	if sess == nil {
		return nil
	}

	if time.Now().After(sess.ExpiresAt) {
		_ = a.sessions.Delete(c.Request.Context(), cookie.Value)
		return nil
	}

	return identity.SessionPrincipal{
		Attributes:  sess.Attributes,
		Authorities: sess.Authorities,
	}
}

func (a *AuthContext) tokenPrincipal(c *gin.Context) identity.Principal {
	bearer := identity.ParseBearer(c.GetHeader("Authorization"))
	if bearer == "" {
		return nil
	}

	claims, err := a.codec.Verify(bearer)
	if err != nil {
		logger.Warn("bearer token rejected", map[string]any{
			"error": err.Error(),
			"path":  c.Request.URL.Path,
		})
		return nil
	}

	authorities, err := a.authorities.AuthoritiesByEmail(c.Request.Context(), claims.Subject)
	if err != nil {
		logger.Error("authority lookup failed", map[string]any{
			"error": err.Error(),
		})
		authorities = []string{"ROLE_" + identity.RoleUser}
	}

	return identity.TokenPrincipal{
		Username:    claims.Subject,
		Authorities: authorities,
	}
}
