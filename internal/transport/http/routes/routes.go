package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-content/internal/infra/config"
	"github.com/arklim/social-platform-content/internal/transport/http/handlers"
	"github.com/arklim/social-platform-content/internal/transport/http/middleware"
	"github.com/arklim/social-platform-content/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth      *usecase.AuthService
	Passwords *usecase.PasswordService
	Posts     *usecase.PostService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Services ServiceSet
	Database DatabaseChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.HTTP.AllowedOrigins))

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err == nil {
		r.Use(metrics.Handler())
	} else if deps.Logger != nil {
		deps.Logger.Warn("http metrics disabled", zap.Error(err))
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)
	optionalAuth := middleware.OptionalAuth(deps.Services.Auth)

	healthOptions := make([]handlers.HealthOption, 0, 1)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		authHandler.RegisterRoutes(api.Group("/auth"))

		passwordHandler := handlers.NewPasswordHandler(deps.Services.Passwords)
		api.POST("/password/change", authMiddleware, passwordHandler.ChangePassword)

		postHandler := handlers.NewPostHandler(deps.Services.Posts)
		posts := api.Group("/posts")
		{
			posts.GET("/public", postHandler.ListPublic)
			posts.GET("/feed", optionalAuth, postHandler.Feed)
			posts.GET("/mine", authMiddleware, postHandler.ListMine)
			posts.GET("/mine/count", authMiddleware, postHandler.CountMine)
			posts.POST("", authMiddleware, postHandler.Create)
			posts.GET("/:id", optionalAuth, postHandler.Get)
			posts.PATCH("/:id", authMiddleware, postHandler.Update)
			posts.DELETE("/:id", authMiddleware, postHandler.Delete)
		}
	}

	return r
}
