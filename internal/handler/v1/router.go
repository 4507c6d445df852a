package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clinicbook/clinicbook/pkg/metrics"
)

type RouterConfig struct {
	Environment string
	Version     string

	Logger    *zap.Logger
	Metrics   *metrics.Collector
	Persons   *PersonHandler
	Appts     *AppointmentHandler
	Reports   *ReportHandler
	DBHealthy func() error
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(cfg.Logger), Metrics(cfg.Metrics))

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.DBHealthy != nil {
			if err := cfg.DBHealthy(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.Version})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")
	{
		persons := api.Group("/persons")
		{
			persons.POST("", cfg.Persons.Create)
			persons.GET("", cfg.Persons.List)
			persons.GET("/:id", cfg.Persons.Get)
			persons.PATCH("/:id", cfg.Persons.Update)
			persons.DELETE("/:id", cfg.Persons.Delete)
			persons.POST("/:id/toggle-enabled", cfg.Persons.ToggleEnabled)
			persons.GET("/dni/:dni", cfg.Persons.GetByDNI)
		}

		appts := api.Group("/appointments")
		{
			appts.POST("", cfg.Appts.Create)
			appts.GET("", cfg.Appts.List)
			appts.GET("/available-slots", cfg.Appts.AvailableSlots)
			appts.GET("/:id", cfg.Appts.Get)
			appts.PATCH("/:id", cfg.Appts.Update)
			appts.DELETE("/:id", cfg.Appts.Delete)
			appts.POST("/:id/cancel", cfg.Appts.Cancel)
			appts.POST("/:id/confirm", cfg.Appts.Confirm)
			appts.POST("/:id/attend", cfg.Appts.MarkAttended)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/appointments/by-date", cfg.Reports.ByDate)
			reports.GET("/appointments/by-person/:dni", cfg.Reports.ByPersonDNI)
			reports.GET("/appointments/confirmed", cfg.Reports.ConfirmedBetween)
			reports.GET("/cancellations/month", cfg.Reports.CancelledThisMonth)
			reports.GET("/cancellations/frequent", cfg.Reports.FrequentCancellers)
			reports.GET("/persons", cfg.Reports.Persons)
		}
	}

	return r
}
