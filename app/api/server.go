package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware so the one-page UI can call the API from anywhere
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Routes
	setupRoutes(r, handler)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler) {
	// Combined calendar endpoints
	r.POST("/calendars/combined.ics", handler.PostCombined)
	r.GET("/calendars/combined.ics", handler.GetCombined)

	// Legacy single-source endpoint
	r.GET("/calendar/:b64url/:b64allowlist/filtered.ics", handler.GetLegacyCalendar)

	// Short link resolution
	r.GET("/s/:key", handler.ResolveShortLink)

	// Preset feeds
	r.GET("/feeds/:name", handler.GetPresetFeed)

	// Health endpoint
	r.GET("/health", handler.GetHealth)

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "fical",
			"description": "Filtering proxy for remote iCalendar feeds",
			"endpoints": map[string]string{
				"combined": "/calendars/combined.ics (POST body or GET ?payload=<base64 JSON>)",
				"legacy":   "/calendar/<b64url>/<b64allowlist>/filtered.ics",
				"short":    "/s/<key>",
				"presets":  "/feeds/<name>",
				"health":   "/health",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
