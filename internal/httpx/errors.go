// Package httpx owns the HTTP error surface: the JSON error body every
// failure renders, and the middleware that turns panics and unhandled errors
// into 500 responses (with a Discord report for server-side failures).
package httpx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Tianea2160/discipline/internal/identity"
	"github.com/Tianea2160/discipline/internal/logger"
	"github.com/Tianea2160/discipline/internal/notify"
)

// ErrorResponse is the uniform error body. No internal error detail or claim
// content leaks to the caller; the message is always a safe, human-readable
// summary.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	RequestID string    `json:"request_id,omitempty"`
}

// AbortError writes the uniform error body and stops the handler chain.
func AbortError(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Error:     kind,
		Message:   message,
		Path:      c.Request.URL.Path,
		RequestID: c.GetString(requestIDKey),
	})
}

func AbortUnauthorized(c *gin.Context) {
	AbortError(c, http.StatusUnauthorized, "Unauthorized", "login required")
}

func AbortForbidden(c *gin.Context) {
	AbortError(c, http.StatusForbidden, "Forbidden", "insufficient role")
}

const requestIDKey = "requestID"

// RequestID assigns each request an id carried in responses and error reports.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// Recover converts panics into 500 responses and reports them to Discord with
// the caller's identity when one resolved.
func Recover(notifier *notify.DiscordNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.Error("panic recovered", map[string]any{
				"panic":      fmt.Sprint(r),
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(requestIDKey),
			})

			reportServerError(c, notifier, "panic", fmt.Sprint(r))

			AbortError(c, http.StatusInternalServerError,
				"Internal Server Error", "the server hit an unexpected error")
		}()

		c.Next()

		// Handler-attached errors that nothing rendered become a 500.
		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			logger.Error("unhandled handler error", map[string]any{
				"error":      err.Error(),
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(requestIDKey),
			})

			reportServerError(c, notifier, "error", err.Error())

			AbortError(c, http.StatusInternalServerError,
				"Internal Server Error", "the server hit an unexpected error")
		}
	}
}

// reportServerError fires the Discord report without blocking the response.
func reportServerError(c *gin.Context, notifier *notify.DiscordNotifier, kind, message string) {
	if notifier == nil {
		return
	}

	report := notify.ErrorReport{
		Kind:       kind,
		Message:    message,
		RequestURI: c.Request.URL.RequestURI(),
		UserAgent:  c.Request.UserAgent(),
	}
	if user, ok := identity.FromContext(c.Request.Context()); ok {
		report.UserID = fmt.Sprint(user.ExternalID)
	}

	// Detached context: the report must outlive the request.
	go func() {
		if err := notifier.SendErrorReport(context.Background(), report); err != nil {
			logger.Error("failed to send discord notification", map[string]any{
				"error": err.Error(),
			})
		}
	}()
}

// NotFound renders the uniform body for unknown routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		AbortError(c, http.StatusNotFound, "Not Found", "the requested resource does not exist")
	}
}
