package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evdash/evdash-backend-go/internal/config"
	"github.com/evdash/evdash-backend-go/internal/handler"
	"github.com/evdash/evdash-backend-go/internal/middleware"
	"github.com/evdash/evdash-backend-go/internal/observability/metrics"
)

// Handlers bundles the HTTP handlers wired into the router.
type Handlers struct {
	Trips  *handler.TripHandler
	Upload *handler.UploadHandler
	Stats  *handler.StatsHandler
	Energy *handler.EnergyHandler
	Backup *handler.BackupHandler
	Status *handler.StatusHandler
	Export *handler.ExportHandler
}

// SetupRouter builds the Gin engine with all routes and middleware.
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(metrics.Middleware())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RateLimit(120, time.Minute))
	{
		api.GET("/health", h.Status.Health)
		api.GET("/db_status", h.Status.DBStatus)
		api.GET("/system/status", h.Status.SystemStatus)

		api.GET("/trips", h.Trips.GetTrips)
		api.GET("/trips/export", h.Export.ExportTrips)
		api.GET("/consumption", h.Stats.GetConsumption)
		api.GET("/monthly", h.Stats.GetMonthly)

		api.GET("/energy_costs", h.Energy.GetEnergyCosts)
		api.POST("/energy_costs", h.Energy.PostEnergyCosts)

		api.GET("/backup/export", h.Backup.Export)
		api.POST("/backup/info", h.Backup.Info)

		// Mutating the trip store requires a token when auth is configured.
		protected := api.Group("")
		protected.Use(middleware.RequireToken(cfg.AuthSecret))
		{
			protected.POST("/upload", h.Upload.Upload)
			protected.POST("/backup/import", h.Backup.Import)
		}
	}

	return r
}
