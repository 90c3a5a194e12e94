package checklist

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tianea2160/discipline/internal/httpx"
	"github.com/Tianea2160/discipline/internal/identity"
	"github.com/Tianea2160/discipline/internal/middleware"
)

type Handler struct {
	service   *Service
	recommend *Service

	interceptor *middleware.Interceptor
}

func NewHandler(service, recommend *Service, interceptor *middleware.Interceptor) *Handler {
	return &Handler{
		service:     service,
		recommend:   recommend,
		interceptor: interceptor,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/checklist")
	api.POST("/generate", middleware.BindIdentified(h.interceptor, h.generate))
	api.POST("/generate/sample", h.interceptor.Authenticated(h.generateSample))
	api.GET("/templates", h.templates)
	api.GET("/me", h.interceptor.Authenticated(h.listMine))

	r.POST("/api/recommend-checklist", middleware.BindIdentified(h.interceptor, h.recommendGenerate))
}

func (h *Handler) generate(c *gin.Context, req Request, current *identity.User) {
	resp, err := h.service.Generate(c.Request.Context(), req, current)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) generateSample(c *gin.Context, current *identity.User) {
	resp, err := h.service.Generate(c.Request.Context(), Request{
		Goal: "have a productive day",
	}, current)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// recommendGenerate always targets today and surfaces generation failures
// instead of substituting a fallback list.
func (h *Handler) recommendGenerate(c *gin.Context, req Request, current *identity.User) {
	req.Date = ""
	resp, err := h.recommend.Generate(c.Request.Context(), req, current)
	if err != nil {
		if errors.Is(err, ErrGenerationFailed) {
			httpx.AbortError(c, http.StatusInternalServerError,
				"Recommend Check List Generation Error",
				"could not generate the recommended checklist, try again shortly")
			return
		}
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listMine(c *gin.Context, current *identity.User) {
	responses, err := h.service.ListForUser(c.Request.Context(), current)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checklists": responses})
}

// templates lists frequently used goal templates. Static, no auth required.
func (h *Handler) templates(c *gin.Context) {
	c.JSON(http.StatusOK, map[string][]string{
		"learning": {
			"study a language",
			"learn a new programming language",
			"take an online course",
			"read a book",
		},
		"health": {
			"work out",
			"keep a healthy diet",
			"get enough sleep",
			"stretch",
		},
		"work": {
			"finish the project",
			"prepare for the meeting",
			"improve focus",
			"improve team collaboration",
		},
		"development": {
			"build a new feature",
			"refactor code",
			"write tests",
			"write documentation",
		},
		"hobby": {
			"start a new hobby",
			"do something creative",
			"plan a trip",
			"spend time with friends",
		},
	})
}
