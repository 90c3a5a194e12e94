package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tianea2160/discipline/internal/logger"
	"github.com/Tianea2160/discipline/internal/token"
	"github.com/Tianea2160/discipline/internal/user"
)

// oauthLoginRequest is the client-side login contract: a native app already
// completed the provider handshake itself and submits the asserted profile to
// obtain a bearer token.
type oauthLoginRequest struct {
	Provider   string `json:"provider" binding:"required"`
	ProviderID string `json:"providerId" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"required"`
	Picture    string `json:"picture"`
}

type oauthLoginResponse struct {
	Success   bool           `json:"success"`
	Token     string         `json:"token"`
	User      oauthLoginUser `json:"user"`
	Message   string         `json:"message"`
	IsNewUser bool           `json:"isNewUser"`
}

type oauthLoginUser struct {
	ID         int64    `json:"id"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Provider   string   `json:"provider"`
	ProviderID string   `json:"providerId"`
	Picture    string   `json:"picture,omitempty"`
	Roles      []string `json:"roles"`
	IsAdmin    bool     `json:"isAdmin"`
}

func (h *Handler) OAuthLogin(c *gin.Context) {
	var req oauthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	u, isNew, err := h.users.FindOrCreate(c.Request.Context(), user.Profile{
		Email:      req.Email,
		Name:       req.Name,
		Picture:    req.Picture,
		Provider:   req.Provider,
		ProviderID: req.ProviderID,
	})
	if err != nil {
		logger.Error("oauth login failed", map[string]any{
			"provider": req.Provider,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process login"})
		return
	}

	bearer, err := h.codec.Issue(u.Email, map[string]string{
		token.ClaimName:       u.Name,
		token.ClaimProvider:   u.Provider,
		token.ClaimProviderID: u.ProviderID,
		token.ClaimEmail:      u.Email,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	message := "login succeeded"
	if isNew {
		message = "new account created"
	}

	c.JSON(http.StatusOK, oauthLoginResponse{
		Success: true,
		Token:   bearer,
		User: oauthLoginUser{
			ID:         u.ID,
			Email:      u.Email,
			Name:       u.Name,
			Provider:   u.Provider,
			ProviderID: u.ProviderID,
			Picture:    u.Picture,
			Roles:      []string{string(u.Role)},
			IsAdmin:    u.Role == user.RoleAdmin,
		},
		Message:   message,
		IsNewUser: isNew,
	})
}
