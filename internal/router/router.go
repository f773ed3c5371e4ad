package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/recipepal/server/internal/api"
	"github.com/recipepal/server/internal/middleware"
)

// Setup configures the application routes.
func Setup(
	db *gorm.DB,
	authHandler *api.AuthHandler,
	recipeHandler *api.RecipeHandler,
	validator middleware.TokenValidator,
	allowedOrigins []string,
	rateLimiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORS(allowedOrigins))

	router.GET("/health", api.HealthHandler(db))

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(validator))

	var mutation []gin.HandlerFunc
	if rateLimiter != nil {
		mutation = append(mutation, rateLimiter.Middleware())
	}
	recipeHandler.RegisterRoutes(protected, mutation...)

	return router
}
