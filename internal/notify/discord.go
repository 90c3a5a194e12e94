// Package notify delivers best-effort operational notifications to a Discord
// webhook. Delivery failures are logged and swallowed; the request that
// triggered a notification is never failed by it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	sendTimeout = 5 * time.Second

	embedColorRed = 15158332

	maxMessageLen   = 500
	maxUserAgentLen = 100
)

type DiscordNotifier struct {
	webhookURL string
	enabled    bool
	client     *http.Client
}

// NewDiscordNotifier builds a notifier. When enabled is false or the webhook
// URL is empty every send is a no-op.
func NewDiscordNotifier(webhookURL string, enabled bool) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		enabled:    enabled && webhookURL != "",
		client:     &http.Client{Timeout: sendTimeout},
	}
}

// ErrorReport describes a server-side failure worth alerting on.
type ErrorReport struct {
	Kind       string
	Message    string
	RequestURI string
	UserAgent  string
	UserID     string
}

// SendErrorReport posts the report as a Discord embed. Safe to call from a
// goroutine; errors are logged by the caller's logger via the returned error.
func (n *DiscordNotifier) SendErrorReport(ctx context.Context, report ErrorReport) error {
	if !n.enabled {
		return nil
	}

	payload := webhookPayload{
		Content: "🚨 **server error**",
		Embeds:  []embed{buildErrorEmbed(report)},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func buildErrorEmbed(report ErrorReport) embed {
	now := time.Now()

	fields := []embedField{
		{Name: "error type", Value: orDash(report.Kind), Inline: true},
		{Name: "occurred at", Value: now.Format("2006-01-02 15:04:05"), Inline: true},
	}
	if report.RequestURI != "" {
		fields = append(fields, embedField{Name: "request uri", Value: report.RequestURI})
	}
	if report.UserID != "" {
		fields = append(fields, embedField{Name: "user id", Value: report.UserID, Inline: true})
	}
	if report.UserAgent != "" {
		fields = append(fields, embedField{Name: "user agent", Value: truncate(report.UserAgent, maxUserAgentLen)})
	}
	if report.Message != "" {
		fields = append(fields, embedField{Name: "error message", Value: truncate(report.Message, maxMessageLen)})
	}

	return embed{
		Title:       "🔥 server 500 error",
		Description: "the application hit an unexpected error.",
		Color:       embedColorRed,
		Fields:      fields,
		Timestamp:   now.Format(time.RFC3339),
	}
}

type webhookPayload struct {
	Content string  `json:"content"`
	Embeds  []embed `json:"embeds"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields"`
	Timestamp   string       `json:"timestamp"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
