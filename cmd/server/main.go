package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wanderplan/trip-planner-backend/internal/config"
	"github.com/wanderplan/trip-planner-backend/internal/database"
	"github.com/wanderplan/trip-planner-backend/internal/handlers"
	"github.com/wanderplan/trip-planner-backend/internal/middleware"
	"github.com/wanderplan/trip-planner-backend/internal/services"
	"github.com/wanderplan/trip-planner-backend/pkg/flightsearch"
	"github.com/wanderplan/trip-planner-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Wanderplan Trip Planner Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Repositories
	userRepository := database.NewUserRepository(db)
	refreshTokenRepository := database.NewRefreshTokenRepository(db)
	userSessionRepository := database.NewUserSessionRepository(db)
	tripRepository := database.NewTripRepository(db)
	flightRepository := database.NewFlightRepository(db)

	// One-shot cleanup of expired refresh tokens on boot
	go func() {
		deleted, err := refreshTokenRepository.DeleteExpiredTokens()
		if err != nil {
			logger.Warnf("Failed to clean up expired refresh tokens: %v", err)
			return
		}
		if deleted > 0 {
			logger.Infof("Cleaned up %d expired refresh tokens", deleted)
		}
	}()

	// Services
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	searchClient := flightsearch.NewClient(flightsearch.Config{
		APIURL:         cfg.FlightSearch.APIURL,
		APIKey:         cfg.FlightSearch.APIKey,
		Currency:       cfg.FlightSearch.Currency,
		Language:       cfg.FlightSearch.Language,
		Country:        cfg.FlightSearch.Country,
		BookingBaseURL: cfg.FlightSearch.BookingBaseURL,
		Timeout:        time.Duration(cfg.FlightSearch.TimeoutSeconds) * time.Second,
	})
	if cfg.FlightSearch.APIKey == "" {
		logger.Warn("SERPAPI_KEY not set, flight search requests will fail")
	}
	selectionService := services.NewSelectionService(
		services.NewTripStore(tripRepository, flightRepository),
		searchClient,
	)
	logger.Info("Services initialized")

	// Handlers
	authHandler := handlers.NewAuthHandler(jwtService, userRepository, refreshTokenRepository, userSessionRepository, cfg)
	tripHandler := handlers.NewTripHandler(tripRepository)
	flightHandler := handlers.NewFlightHandler(tripRepository, flightRepository)
	searchHandler := handlers.NewSearchHandler(searchClient)
	selectionHandler := handlers.NewSelectionHandler(selectionService)

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthCheckHandler(db))

	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh-token", authHandler.RefreshToken)

			// Protected routes (require JWT authentication)
			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.POST("/logout", authHandler.Logout)
				protected.POST("/logout-all", authHandler.LogoutAll)
				protected.GET("/profile", authHandler.GetProfile)
				protected.PUT("/profile", authHandler.UpdateProfile)
				protected.GET("/sessions", authHandler.ListSessions)
			}
		}

		// Flight search proxy (protected)
		flights := v1.Group("/flights")
		flights.Use(middleware.AuthMiddleware(jwtService))
		{
			flights.POST("/search", searchHandler.SearchFlights)
		}

		// Trip routes (all protected)
		trips := v1.Group("/trips")
		trips.Use(middleware.AuthMiddleware(jwtService))
		{
			trips.POST("", tripHandler.CreateTrip)
			trips.GET("", tripHandler.ListTrips)
			trips.GET("/:tripId", tripHandler.GetTrip)
			trips.PUT("/:tripId", tripHandler.UpdateTrip)
			trips.DELETE("/:tripId", tripHandler.DeleteTrip)

			// Saved flights for a trip
			trips.GET("/:tripId/flights", flightHandler.ListFlights)
			trips.POST("/:tripId/flights", flightHandler.ReplaceFlightPair)
			trips.DELETE("/:tripId/flights", flightHandler.DeleteFlight)
			trips.DELETE("/:tripId/flights/:flightId/outbound", flightHandler.DeleteOutboundFlight)
			trips.DELETE("/:tripId/flights/:flightId/return", flightHandler.DeleteReturnFlight)

			// Flight selection workflow
			trips.GET("/:tripId/selection", selectionHandler.GetState)
			trips.POST("/:tripId/selection/search", selectionHandler.SearchOutbound)
			trips.POST("/:tripId/selection/outbound", selectionHandler.SelectOutbound)
			trips.POST("/:tripId/selection/return", selectionHandler.SelectReturn)
			trips.POST("/:tripId/selection/confirm", selectionHandler.Confirm)
			trips.POST("/:tripId/selection/cancel", selectionHandler.Cancel)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, ok := middleware.GetUserContext(c); ok {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
