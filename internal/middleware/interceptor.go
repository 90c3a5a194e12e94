package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tianea2160/discipline/internal/httpx"
	"github.com/Tianea2160/discipline/internal/identity"
)

// IdentityHandler is a handler that declared, at registration time, that it
// wants the resolved identity appended to its arguments.
type IdentityHandler func(c *gin.Context, user *identity.User)

// Interceptor is the single injection surface: every handler that wants the
// caller's identity, or declares a role requirement, registers through it.
// The role check runs before the handler body; identity resolution happens
// once per request (in AuthContext) and is shared by every wrapper on the
// same invocation.
type Interceptor struct {
	// enforce=false skips role checks (local development); injection and the
	// authentication requirement are never disabled.
	enforce bool
}

func NewInterceptor(enforce bool) *Interceptor {
	return &Interceptor{enforce: enforce}
}

// Authenticated wraps a handler with an identity-wanting parameter and no
// explicit role requirement: failing to resolve an identity is itself enough
// to reject the call.
func (i *Interceptor) Authenticated(h IdentityHandler) gin.HandlerFunc {
	return i.Authorized(nil, h)
}

// Authorized enforces the role requirement, then injects the identity. The
// handler body never runs on an Unauthorized or Forbidden outcome.
func (i *Interceptor) Authorized(roles []string, h IdentityHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := identity.FromContext(c.Request.Context())
		if !ok {
			httpx.AbortUnauthorized(c)
			return
		}

		if i.enforce && len(roles) > 0 {
			switch identity.Check(user, identity.Requirement{Roles: roles}) {
			case identity.Unauthorized:
				httpx.AbortUnauthorized(c)
				return
			case identity.Forbidden:
				httpx.AbortForbidden(c)
				return
			}
		}

		h(c, user)
	}
}

// BindIdentified binds the JSON request body, then supplies the identity
// after the bound argument, so a handler declared as (request, identity) can
// be invoked from a request that only carried the request body.
func BindIdentified[T any](i *Interceptor, h func(c *gin.Context, req T, user *identity.User)) gin.HandlerFunc {
	return i.Authenticated(func(c *gin.Context, user *identity.User) {
		var req T
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.AbortError(c, http.StatusBadRequest, "Bad Request", "invalid request body")
			return
		}
		h(c, req, user)
	})
}
