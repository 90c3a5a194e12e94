package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "gpt-4o-mini", cfg.AIModel)
	assert.False(t, cfg.DiscordWebhookEnabled)
	assert.True(t, cfg.AuthEnforce)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("AUTH_ENFORCE", "false")
	t.Setenv("DISCORD_WEBHOOK_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.False(t, cfg.AuthEnforce)
	assert.True(t, cfg.DiscordWebhookEnabled)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_TTL", "not-a-duration")
	t.Setenv("AUTH_ENFORCE", "definitely")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.True(t, cfg.AuthEnforce)
}
