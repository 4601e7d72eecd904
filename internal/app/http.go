package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"authcore/internal/auth/credentials"
	"authcore/internal/auth/federation"
	"authcore/internal/auth/handler"
	"authcore/internal/auth/resolver"
	"authcore/internal/config"
	"authcore/internal/metrics"
	"authcore/internal/middleware"
	"authcore/internal/post"
	"authcore/internal/session"
	"authcore/internal/token"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	router, stop, err := newRouter(ctx, cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	return router, func() error {
		stop()
		return infra.Close()
	}, nil
}

func newRouter(ctx context.Context, cfg config.Config, infra *Infra) (*gin.Engine, func(), error) {
	// ----------------------------
	// Dependencies
	// ----------------------------

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(registry)

	codec, err := token.NewCodec(cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
	if err != nil {
		return nil, nil, err
	}

	users := credentials.NewSQLStore(infra.DB)
	credentialService := credentials.NewService(users)

	sessions, err := session.NewManager(
		codec,
		session.NewRedisRevocationStore(infra.Redis.Client),
		credentialService,
		session.Config{
			AccessTTL:  cfg.AccessTokenTTL,
			RefreshTTL: cfg.RefreshTokenTTL,
		},
		session.WithMetrics(recorder),
	)
	if err != nil {
		return nil, nil, err
	}

	providerClient := &http.Client{Timeout: cfg.ProviderTimeout}
	providers, err := setupProviders(ctx, cfg, providerClient)
	if err != nil {
		return nil, nil, err
	}

	federationService := federation.NewService(
		providers,
		resolver.NewStoreResolver(users),
		sessions,
		federation.WithTimeout(cfg.ProviderTimeout),
		federation.WithMetrics(recorder),
	)

	if cfg.LoginRatePerMinute <= 0 {
		return nil, nil, errors.New("login rate must be positive")
	}
	limiter := middleware.NewRateLimiter(middleware.PerMinute(cfg.LoginRatePerMinute, cfg.LoginRateBurst))

	cookies := session.CookieOptions{
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	authHandler := handler.NewHandler(
		sessions,
		credentialService,
		federationService,
		cookies,
		limiter,
	)
	postHandler := post.NewHandler(post.NewStore(infra.DB), authHandler.Auth())

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	authHandler.RegisterRoutes(router)
	postHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	return router, limiter.Stop, nil
}
