package main

import (
	"fmt"

	"github.com/franciscosanchezn/gin-recipe-api/internal/config"
	"github.com/franciscosanchezn/gin-recipe-api/internal/controllers"
	"github.com/franciscosanchezn/gin-recipe-api/internal/database"
	"github.com/franciscosanchezn/gin-recipe-api/internal/llm"
	"github.com/franciscosanchezn/gin-recipe-api/internal/metrics"
	"github.com/franciscosanchezn/gin-recipe-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// @title Recipe API
// @version 1.0
// @description Generate, enhance and store recipes with a language model
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration := loadConfig()
	applyLogLevel(configuration.LogLevel)

	appMetrics := metrics.New()

	// Initialize storage, services and controllers
	store := setupStore(configuration)
	modelClient := llm.NewClient(llm.Config{
		APIKey:  configuration.OpenAIAPIKey,
		BaseURL: configuration.OpenAIBaseURL,
		Model:   configuration.OpenAIModel,
		Timeout: configuration.ModelTimeout,
	}, appMetrics)
	recipeService := services.NewRecipeService(store, modelClient, appMetrics)
	recipeController := controllers.NewRecipeController(recipeService, configuration.ModelTimeout)

	if configuration.SeedSampleData {
		_, err := services.SeedSampleRecipes(recipeService)
		checkPanicErr(err)
	}

	// Initialize Gin router
	router := setupRouter(configuration, recipeController, appMetrics)

	// Start the server
	log.Infof("Starting server on %s:%d", configuration.Host, configuration.Port)
	checkPanicErr(router.Run(fmt.Sprintf("%v:%d", configuration.Host, configuration.Port)))
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
		gin.SetMode(gin.ReleaseMode)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// applyLogLevel overrides the environment default when LOG_LEVEL is set explicitly
func applyLogLevel(level string) {
	if config.GetEnvWithDefault("LOG_LEVEL", "") == "" {
		return
	}
	parsed, err := log.ParseLevel(level)
	checkPanicErr(err)
	log.SetLevel(parsed)
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	log.Info("Loading configuration from environment variables")
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	log.Infof("Configuration loaded: %s", conf)
	return conf
}

// setupStore selects the recipe store for the configured driver
func setupStore(conf *config.Config) services.RecipeStore {
	if conf.StoreDriver == config.StoreDriverMemory {
		log.Info("Using in-memory recipe store; recipes are lost on restart")
		return services.NewMemoryRecipeStore()
	}

	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.StoreDriver,
		URL:      conf.DatabaseURL,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		Path:     conf.DBPath,
	})
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))
	return services.NewRecipeStore(db)
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter(conf *config.Config, recipeController controllers.RecipeController, appMetrics *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(appMetrics))

	if conf.AuthEnabled() {
		log.Info("Bearer authentication enabled for mutating routes")
	} else {
		log.Warn("AUTH_SECRET not set, all routes are open")
	}

	controllers.SetupRoutes(router, recipeController, controllers.RouteOptions{
		AuthSecret: conf.AuthSecret,
		Metrics:    appMetrics,
	})
	return router
}
