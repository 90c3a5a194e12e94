package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	JWTSecret string
	JWTTTL    time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	AppleClientID     string
	AppleClientSecret string
	AppleRedirectURL  string

	RedisAddr     string
	RedisPassword string

	DatabaseDSN string

	AIBaseURL string
	AIAPIKey  string
	AIModel   string

	DiscordWebhookURL     string
	DiscordWebhookEnabled bool

	// AuthEnforce disables role checks when false. Decided once at startup;
	// identity injection itself is never disabled.
	AuthEnforce bool
}

func Load() Config {

	// Best-effort: a missing .env is fine, real deployments use the environment.
	_ = godotenv.Load()

	cfg := Config{

		AppPort: getEnv("APP_PORT", "8080"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		AppleClientID:     os.Getenv("APPLE_CLIENT_ID"),
		AppleClientSecret: os.Getenv("APPLE_CLIENT_SECRET"),
		AppleRedirectURL:  os.Getenv("APPLE_REDIRECT_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		AIBaseURL: os.Getenv("AI_BASE_URL"),
		AIAPIKey:  os.Getenv("AI_API_KEY"),
		AIModel:   getEnv("AI_MODEL", "gpt-4o-mini"),

		DiscordWebhookURL:     os.Getenv("DISCORD_WEBHOOK_URL"),
		DiscordWebhookEnabled: getBool("DISCORD_WEBHOOK_ENABLED", false),

		AuthEnforce: getBool("AUTH_ENFORCE", true),
	}

	return cfg

}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
