package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Tianea2160/discipline/internal/auth/provider"
	"github.com/Tianea2160/discipline/internal/identity"
	"github.com/Tianea2160/discipline/internal/logger"
	"github.com/Tianea2160/discipline/internal/session"
	"github.com/Tianea2160/discipline/internal/token"
	"github.com/Tianea2160/discipline/internal/user"
)

const sessionTTL = 24 * time.Hour

type Handler struct {
	providers    *provider.Registry
	sessionStore session.Store
	users        *user.Service
	codec        *token.Codec
}

func NewHandler(
	registry *provider.Registry,
	sessionStore session.Store,
	users *user.Service,
	codec *token.Codec,
) *Handler {
	return &Handler{
		providers:    registry,
		sessionStore: sessionStore,
		users:        users,
		codec:        codec,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/oauth/login/:provider", h.login)
	r.GET("/oauth/callback/:provider", h.callback)
	r.POST("/oauth/callback/:provider", h.callback) // apple uses form_post
	r.POST("/auth/logout", h.Logout)
	r.POST("/api/auth/oauth/login", h.OAuthLogin)
}

func (h *Handler) login(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state := generateState(c)
	_, codeChallenge := generatePKCE(c)

	authURL := p.AuthCodeURL(state, codeChallenge)
	c.Redirect(http.StatusFound, authURL)
}

func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	if errParam := callbackValue(c, "error"); errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     callbackValue(c, "error_description"),
		})
		c.Redirect(http.StatusFound, "/oauth/login/"+providerName)
		return
	}

	code := callbackValue(c, "code")
	if code == "" {
		logger.Error("oidc callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing pkce verifier",
		})
		return
	}

	attrs, err := p.ExchangeCode(c.Request.Context(), code, codeVerifier)
	if err != nil {
		logger.Warn("oauth code exchange failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	mergeAppleUserPayload(c, attrs)

	parsed := identity.ParseAttributes(attrs)
	u, isNew, err := h.users.FindOrCreate(c.Request.Context(), user.Profile{
		Email:      parsed.Email(),
		Name:       parsed.DisplayName(),
		Picture:    pictureOf(parsed),
		Provider:   string(parsed.Provider()),
		ProviderID: parsed.SubjectID(),
	})
	if err != nil {
		logger.Error("failed to resolve user row", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to resolve user",
		})
		return
	}

	bearer, err := h.codec.Issue(u.Email, map[string]string{
		token.ClaimName:       u.Name,
		token.ClaimProvider:   u.Provider,
		token.ClaimProviderID: u.ProviderID,
		token.ClaimEmail:      u.Email,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to issue token",
		})
		return
	}

	sessionID, err := session.GenerateID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create session",
		})
		return
	}

	now := time.Now()
	expiresAt := now.Add(sessionTTL)

	sess := session.Session{
		SessionID:   sessionID,
		UserID:      u.Email,
		Attributes:  attrs,
		Authorities: []string{u.Authority()},
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
	}

	if err := h.sessionStore.Create(c.Request.Context(), sess); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to persist session",
		})
		return
	}

	session.SetCookie(c.Writer, sessionID, expiresAt, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("oauth login succeeded", map[string]any{
		"user_id":  u.ID,
		"provider": u.Provider,
		"is_new":   isNew,
		"ip":       c.ClientIP(),
	})

	c.Header("Authorization", "Bearer "+bearer)
	c.JSON(http.StatusOK, gin.H{
		"status":      "authenticated",
		"token":       bearer,
		"is_new_user": isNew,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		// best-effort: an already-gone session still logs out
		_ = h.sessionStore.Delete(c.Request.Context(), cookie.Value)
		logger.Info("logout", map[string]any{
			"ip": c.ClientIP(),
		})
	}

	session.ClearCookie(c.Writer, session.CookieOptions{
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	c.Status(http.StatusNoContent)
}

// callbackValue reads a callback parameter from the query string or, for
// apple's form_post mode, the posted form.
func callbackValue(c *gin.Context, key string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return c.PostForm(key)
}

// mergeAppleUserPayload folds apple's one-time "user" form field (the only
// place the name ever appears) into the attribute bag.
func mergeAppleUserPayload(c *gin.Context, attrs map[string]any) {
	raw := callbackValue(c, "user")
	if raw == "" {
		return
	}

	var payload struct {
		Name map[string]any `json:"name"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		logger.Warn("unparseable apple user payload", map[string]any{
			"error": err.Error(),
		})
		return
	}
	if len(payload.Name) > 0 {
		attrs["name"] = payload.Name
	}
}

func pictureOf(attrs identity.Attributes) string {
	if g, ok := attrs.(identity.GoogleAttributes); ok {
		return g.Picture
	}
	return ""
}
