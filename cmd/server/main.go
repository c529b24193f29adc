package main

import (
	"fmt"
	"net/http"
	"os"

	"stocksphere/internal/config"
	"stocksphere/internal/database"
	"stocksphere/internal/handlers"
	"stocksphere/internal/logger"
	"stocksphere/internal/middleware"
	"stocksphere/internal/portfolio"
	"stocksphere/internal/quote"
	"stocksphere/internal/services"
	"stocksphere/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "stocksphere/internal/docs" // Import swagger docs
)

// @title           StockSphere API
// @version         1.0
// @description     StockSphere is a personal stock portfolio tracker: register, manage holdings, and view computed portfolio metrics.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	stockService := services.NewStockService(db)

	// Price enrichment: a quote client is only wired when enabled and a key
	// is configured; otherwise metrics fall back to stored prices.
	var quoter portfolio.Quoter
	if appConfig.QuoteEnrich && appConfig.QuoteAPIKey != "" {
		quoter = quote.NewClient(
			&http.Client{Timeout: appConfig.QuoteTimeout},
			appConfig.QuoteBaseURL,
			appConfig.QuoteAPIKey,
		)
		log.Infof("Price enrichment enabled (provider %s)", appConfig.QuoteBaseURL)
	} else {
		log.Info("Price enrichment disabled, metrics use stored prices")
	}

	engine := portfolio.NewEngine(quoter, portfolio.Config{
		Enrich:         appConfig.QuoteEnrich,
		ConversionRate: appConfig.ConversionRate,
		QuoteTimeout:   appConfig.QuoteTimeout,
		MaxConcurrent:  appConfig.QuoteMaxConcurrent,
	})
	metricsService := services.NewMetricsService(stockService, engine)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	stockHandler := handlers.NewStockHandler(stockService, metricsService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API group
	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Stock routes. The metrics route must be registered before the
	// parameterized routes so "metrics" is not parsed as a stock ID.
	stocks := protected.Group("/stocks")
	stocks.GET("/metrics", stockHandler.GetMetrics)
	stocks.GET("", stockHandler.ListStocks)
	stocks.POST("", stockHandler.CreateStock)
	stocks.PUT("/:id", stockHandler.UpdateStock)
	stocks.DELETE("/:id", stockHandler.DeleteStock)

	log.Infof("Starting StockSphere backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
