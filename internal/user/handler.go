package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tianea2160/discipline/internal/identity"
	"github.com/Tianea2160/discipline/internal/middleware"
)

// Handler serves the account endpoints. Every route receives the caller's
// canonical identity through the interceptor instead of re-extracting it.
type Handler struct {
	interceptor *middleware.Interceptor
}

func NewHandler(interceptor *middleware.Interceptor) *Handler {
	return &Handler{interceptor: interceptor}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/user")
	api.GET("/profile", h.interceptor.Authenticated(h.profile))
	api.GET("/admin", h.interceptor.Authorized([]string{identity.RoleAdmin}, h.admin))
	api.GET("/dashboard", h.interceptor.Authenticated(h.dashboard))
	api.GET("/settings", h.interceptor.Authenticated(h.settings))
}

func (h *Handler) profile(c *gin.Context, current *identity.User) {
	c.JSON(http.StatusOK, gin.H{
		"id":       current.ExternalID,
		"email":    current.Email,
		"name":     current.DisplayName,
		"provider": current.Provider,
		"roles":    current.Roles,
	})
}

func (h *Handler) admin(c *gin.Context, current *identity.User) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "admin-only information",
		"adminUser": current.DisplayName,
	})
}

func (h *Handler) dashboard(c *gin.Context, current *identity.User) {
	c.JSON(http.StatusOK, gin.H{
		"welcome":  "hello, " + current.DisplayName,
		"provider": string(current.Provider) + " account",
		"email":    current.Email,
	})
}

func (h *Handler) settings(c *gin.Context, current *identity.User) {
	c.JSON(http.StatusOK, gin.H{
		"userId":   current.ExternalID,
		"email":    current.Email,
		"name":     current.DisplayName,
		"provider": current.Provider,
		"isAdmin":  current.IsAdmin(),
		"availableSettings": []string{
			"profile",
			"notifications",
			"privacy",
		},
	})
}
