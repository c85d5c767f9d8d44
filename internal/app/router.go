package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"rutaflow/internal/handler"
	"rutaflow/internal/logger"
	"rutaflow/internal/middleware"
	internalRedis "rutaflow/internal/redis"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	DriverHandler    *handler.DriverHandler
	SettingsHandler  *handler.SettingsHandler
	TripHandler      *handler.TripHandler
	ShiftHandler     *handler.ShiftHandler
	StatsHandler     *handler.StatsHandler
	AssistantHandler *handler.AssistantHandler
	Idempotency      internalRedis.IdempotencyStoreInterface
	NewRelicApp      *newrelic.Application
	Logger           *logger.Logger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	if deps.Logger != nil {
		router.Use(gin.LoggerWithWriter(deps.Logger.Writer()))
	} else {
		router.Use(gin.Logger())
	}

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.NewRelicAttributes())
	}

	if deps.Idempotency != nil {
		router.Use(middleware.Idempotency(deps.Idempotency, deps.Logger))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Registration is the only route without a driver header.
		v1.POST("/drivers/register", deps.DriverHandler.Register)

		authed := v1.Group("", middleware.DriverIdentity())
		authed.GET("/me", deps.DriverHandler.Me)

		// Settings routes.
		settings := authed.Group("/settings")
		{
			settings.GET("", deps.SettingsHandler.Get)
			settings.PUT("", deps.SettingsHandler.Update)
		}

		// Trip routes.
		trips := authed.Group("/trips")
		{
			trips.POST("", deps.TripHandler.Create)
			trips.GET("", deps.TripHandler.GetAll)
			trips.POST("/preview", deps.TripHandler.Preview)
			trips.GET("/export", deps.TripHandler.Export)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.GET("/:id/receipt", deps.TripHandler.Receipt)
			trips.DELETE("/:id", deps.TripHandler.Delete)
		}

		// Shift routes.
		shift := authed.Group("/shift")
		{
			shift.GET("", deps.ShiftHandler.Get)
			shift.POST("/start", deps.ShiftHandler.Start)
			shift.POST("/position", deps.ShiftHandler.Position)
			shift.POST("/trip/start", deps.ShiftHandler.StartTrip)
			shift.POST("/trip/end", deps.ShiftHandler.EndTrip)
			shift.POST("/end", deps.ShiftHandler.End)
		}

		// Stats routes.
		stats := authed.Group("/stats")
		{
			stats.GET("", deps.StatsHandler.Get)
			stats.GET("/days", deps.StatsHandler.Days)
		}

		// Assistant routes.
		assistant := authed.Group("/assistant")
		{
			assistant.GET("", deps.AssistantHandler.Greeting)
			assistant.POST("/chat", deps.AssistantHandler.Chat)
			assistant.POST("/extract", deps.AssistantHandler.Extract)
		}
	}

	return router
}
