package controllers

import (
	_ "github.com/franciscosanchezn/gin-recipe-api/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-recipe-api/internal/metrics"
	"github.com/franciscosanchezn/gin-recipe-api/internal/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouteOptions configures the shared endpoints and route protection
type RouteOptions struct {
	// AuthSecret enables bearer authentication on mutating routes when set
	AuthSecret string
	// Metrics is served on /metrics when set
	Metrics *metrics.Metrics
}

// SetupRoutes defines the routes for the Gin router
func SetupRoutes(router *gin.Engine, recipes RecipeController, opts RouteOptions) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	api := router.Group("/api/recipes")
	{
		api.GET("", recipes.GetAllRecipes)
		api.GET("/search/:query", recipes.SearchRecipes)
		api.GET("/type/:type", recipes.GetRecipesByType)
		api.GET("/:id", recipes.GetRecipeByID)
		api.GET("/:id/versions", recipes.GetRecipeVersions)

		// Writers may create recipes; only admins may delete them.
		// Without a secret every route is open.
		writers := api.Group("")
		admins := api.Group("")
		if opts.AuthSecret != "" {
			secret := []byte(opts.AuthSecret)
			writers.Use(middleware.BearerAuth(secret), middleware.RequireRole(middleware.RoleAdmin, middleware.RoleEditor))
			admins.Use(middleware.BearerAuth(secret), middleware.RequireRole(middleware.RoleAdmin))
		}

		writers.POST("", recipes.CreateRecipe)
		writers.POST("/generate", recipes.GenerateRecipe)
		writers.POST("/enhance", recipes.EnhanceRecipe)
		admins.DELETE("/:id", recipes.DeleteRecipe)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
