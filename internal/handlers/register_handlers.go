package handlers

import (
	"log/slog"
	"time"

	"github.com/SscSPs/tax_filing_app/cmd/docs"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/middleware"
	"github.com/SscSPs/tax_filing_app/internal/platform/config"
	"github.com/SscSPs/tax_filing_app/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	analytics *utils.PosthogClientWrapper,
) {
	r.Use(corsMiddleware(cfg))

	r.GET("/health", getHealth)

	api := r.Group("/api/v1")
	if rl := apiRateLimiter(cfg); rl != nil {
		api.Use(middleware.RateLimit(rl))
	}

	// Register public authentication routes
	registerAuthRoutes(api, services.Auth)

	// Everything else needs a bearer token
	setupAPIV1Routes(api, cfg, services, analytics)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes applies the auth middleware and delegates to specific entity route registrations
func setupAPIV1Routes(
	api *gin.RouterGroup,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	analytics *utils.PosthogClientWrapper,
) {
	v1 := api.Group("", middleware.AuthMiddleware(cfg.JWTSecret), middleware.PosthogMiddleware(analytics))

	registerFilingRoutes(v1, services, analytics)
	registerPaymentRoutes(v1, services, analytics)
	registerMessageRoutes(v1, services)
	registerUserRoutes(v1, services.User)
	registerCaseRoutes(v1, services)
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	corsCfg.AddAllowHeaders("Authorization")
	corsCfg.AddExposeHeaders("X-Request-ID")
	corsCfg.MaxAge = 12 * time.Hour
	return cors.New(corsCfg)
}

// apiRateLimiter returns nil when RATE_LIMIT is empty or malformed.
func apiRateLimiter(cfg *config.Config) *limiter.Limiter {
	if cfg.RateLimit == "" {
		return nil
	}
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		slog.Warn("Invalid RATE_LIMIT, API rate limiting disabled", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
		return nil
	}
	return limiter.New(memory.NewStore(), rate)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
