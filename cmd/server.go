package cmd

import (
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tonearm/config"
	"tonearm/handlers"
	"tonearm/middleware"
	"tonearm/services"
	"tonearm/websocket"
)

// NewLogger builds the process logger. Release mode gets production
// JSON output, everything else the development console encoder.
func NewLogger() *zap.Logger {
	if os.Getenv("GIN_MODE") == gin.ReleaseMode {
		logger, err := zap.NewProduction()
		if err == nil {
			return logger
		}
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// StartWebServer starts the web server
func StartWebServer(port int) {
	// Set production mode if not specified
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := NewLogger()
	defer logger.Sync()

	// Initialize services
	hub := websocket.NewHub(logger)
	go hub.Run()

	prober := services.NewFFProbe(config.GetProbeCommand(), config.GetProbeTimeout(), logger)
	scanner := services.NewScanner(prober, logger, hub)
	library := services.NewLocalFiles(config.GetMediaPaths(), config.GetIncludeVideo(), prober, scanner, logger)

	// Initialize handlers
	libraryHandler := handlers.NewLibraryHandler(library, logger)
	scanHandler := handlers.NewScanHandler(library, hub, logger)
	healthHandler := handlers.NewHealthHandler()
	settingsHandler := handlers.NewSettingsHandler()

	// Setup router
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply middleware
	r.Use(middleware.CORS())
	r.Use(middleware.Logging(logger))

	// Setup routes
	setupRoutes(r, libraryHandler, scanHandler, healthHandler, settingsHandler)

	// Start server
	portStr := strconv.Itoa(port)
	if serverPort := os.Getenv("SERVER_PORT"); serverPort != "" {
		portStr = serverPort
	}

	logger.Info("tonearm web server starting",
		zap.String("port", portStr),
		zap.Strings("mediaPaths", config.GetMediaPaths()))
	if err := r.Run(":" + portStr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

// setupRoutes configures all the HTTP routes
func setupRoutes(r *gin.Engine, libraryHandler *handlers.LibraryHandler, scanHandler *handlers.ScanHandler, healthHandler *handlers.HealthHandler, settingsHandler *handlers.SettingsHandler) {
	// Health check endpoint
	r.GET("/health", healthHandler.HealthCheck)

	// API routes group
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/status", healthHandler.APIStatus)

		// Library endpoints
		libraryGroup := apiGroup.Group("/library")
		{
			libraryGroup.GET("", libraryHandler.ListURIs)
			libraryGroup.GET("/entry", libraryHandler.GetEntry)
			libraryGroup.GET("/canplay", libraryHandler.CanPlay)
			libraryGroup.GET("/stream", libraryHandler.StreamEntry)
			libraryGroup.GET("/search", libraryHandler.Search)
		}

		// Scan status endpoint
		apiGroup.GET("/scan/status", scanHandler.Status)

		// WebSocket endpoints for real-time scan progress
		wsGroup := apiGroup.Group("/ws")
		{
			// WebSocket endpoint for specific scan progress
			wsGroup.GET("/scan/:scanId", scanHandler.HandleWebSocketConnection)

			// WebSocket endpoint for all scans
			wsGroup.GET("/scan", scanHandler.HandleWebSocketAllConnection)
		}

		// Settings endpoints
		apiGroup.GET("/settings", settingsHandler.GetSettings)
		apiGroup.POST("/settings", settingsHandler.UpdateSettings)
	}
}
