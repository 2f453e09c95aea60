package router

import (
	"github.com/franciscosanchezn/store-ratings-api/docs"
	"github.com/franciscosanchezn/store-ratings-api/internal/config"
	"github.com/franciscosanchezn/store-ratings-api/internal/controllers"
	"github.com/franciscosanchezn/store-ratings-api/internal/middleware"
	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/franciscosanchezn/store-ratings-api/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// New builds the HTTP engine with every route of the API
func New(cfg *config.Config, registry *services.Registry, tokens middleware.TokenVerifier) *gin.Engine {
	router := gin.New()
	// client IPs come from forwarding headers only when the peer is a trusted proxy
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.WithError(err).Warn("Invalid trusted proxies, ignoring forwarding headers")
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(log.StandardLogger()),
		middleware.SecurityHeaders(),
		middleware.Compression(),
		middleware.CORS(cfg.CORSOrigins),
	)

	// health checks stay outside the rate limited group
	router.GET("/health", controllers.HealthCheck)
	if cfg.APIBasePath != "" {
		router.GET(cfg.APIBasePath+"/health", controllers.HealthCheck)
	}
	router.NoRoute(controllers.NotFound)

	setupRoutes(router.Group(cfg.APIBasePath), cfg, registry, tokens)

	// Swagger documentation
	docs.SwaggerInfo.BasePath = cfg.APIBasePath
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}

func setupRoutes(api *gin.RouterGroup, cfg *config.Config, registry *services.Registry, tokens middleware.TokenVerifier) {
	authController := controllers.NewAuthController(registry.Auth)
	adminController := controllers.NewAdminController(registry.Users, registry.Stores, registry.Dashboard)
	userController := controllers.NewUserController(registry.Users, registry.Stores)
	ownerController := controllers.NewStoreOwnerController(registry.Stores)
	ratingController := controllers.NewRatingController(registry.Ratings)

	api.Use(
		middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow),
		middleware.SlowDown(cfg.SlowDownAfter, cfg.SlowDownDelay, cfg.RateLimitWindow),
	)

	// Public routes
	api.POST("/register", authController.Register)
	api.POST("/login", authController.Login)

	// Everything below requires a valid bearer token
	protected := api.Group("")
	protected.Use(middleware.Authenticate(tokens, registry.Users))
	{
		adminApi := protected.Group("/admin")
		adminApi.Use(middleware.RequireRole(models.RoleAdmin))
		{
			adminApi.GET("/dashboard", adminController.Dashboard)
			adminApi.GET("/users", adminController.ListUsers)
			adminApi.POST("/users", adminController.CreateUser)
			adminApi.DELETE("/users/:id", adminController.DeleteUser)
			adminApi.GET("/stores", adminController.ListStores)
			adminApi.POST("/stores", adminController.CreateStore)
			adminApi.DELETE("/stores/:id", adminController.DeleteStore)
		}

		userApi := protected.Group("/user")
		userApi.Use(middleware.RequireRole(models.RoleUser))
		{
			userApi.GET("/stores", userController.ListStores)
			userApi.PUT("/password", userController.ChangePassword)
		}

		ownerApi := protected.Group("/store-owner")
		ownerApi.Use(middleware.RequireRole(models.RoleStoreOwner))
		{
			ownerApi.GET("/dashboard", ownerController.Dashboard)
		}

		// any authenticated role may rate
		protected.POST("/ratings", ratingController.SubmitRating)
	}
}
