package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Tianea2160/discipline/internal/ai"
	authhandler "github.com/Tianea2160/discipline/internal/auth/handler"
	"github.com/Tianea2160/discipline/internal/auth/provider"
	"github.com/Tianea2160/discipline/internal/auth/provider/apple"
	"github.com/Tianea2160/discipline/internal/auth/provider/google"
	"github.com/Tianea2160/discipline/internal/checklist"
	"github.com/Tianea2160/discipline/internal/config"
	"github.com/Tianea2160/discipline/internal/httpx"
	"github.com/Tianea2160/discipline/internal/identity"
	"github.com/Tianea2160/discipline/internal/logger"
	"github.com/Tianea2160/discipline/internal/middleware"
	"github.com/Tianea2160/discipline/internal/notify"
	"github.com/Tianea2160/discipline/internal/session"
	"github.com/Tianea2160/discipline/internal/token"
	"github.com/Tianea2160/discipline/internal/user"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, nil, err
	}

	sessionStore := session.NewRedisStore(infra.Redis.Client)

	userStore := user.NewSQLStore(infra.DB)
	userService := user.NewService(userStore)

	resolver := identity.NewResolver(codec)
	authContext := middleware.NewAuthContext(sessionStore, codec, userStore, resolver)
	interceptor := middleware.NewInterceptor(cfg.AuthEnforce)

	googleProvider, err := google.New(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	providers := []provider.OAuthProvider{googleProvider}

	// Apple stays optional: local setups rarely have the signed client secret.
	if cfg.AppleClientID != "" {
		appleProvider, err := apple.New(
			ctx,
			cfg.AppleClientID,
			cfg.AppleClientSecret,
			cfg.AppleRedirectURL,
		)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, appleProvider)
	}

	registry := provider.NewRegistry(providers...)

	authHandler := authhandler.NewHandler(registry, sessionStore, userService, codec)
	userHandler := user.NewHandler(interceptor)

	generator, err := ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
	if err != nil {
		return nil, nil, err
	}

	checklistService := checklist.NewService(
		checklist.NewSQLStore(infra.DB, checklist.TableChecklists),
		generator,
		true,
	)
	recommendService := checklist.NewService(
		checklist.NewSQLStore(infra.DB, checklist.TableRecommendChecklists),
		generator,
		false,
	)
	checklistHandler := checklist.NewHandler(checklistService, recommendService, interceptor)

	notifier := notify.NewDiscordNotifier(cfg.DiscordWebhookURL, cfg.DiscordWebhookEnabled)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(httpx.RequestID())
	router.Use(httpx.Recover(notifier))
	router.Use(authContext.Establish())
	router.NoRoute(httpx.NotFound())

	// ----------------------------
	// Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)
	userHandler.RegisterRoutes(router)
	checklistHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	for _, route := range router.Routes() {
		logger.Debug("route registered", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
