package router

import (
	"fmt"
	"net/http"

	"medreminder/internal/interfaces/api/handler"
	"medreminder/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds the dependencies for the router.
type Config struct {
	LineHandler         *handler.LineHandler // nil when LINE is not configured
	NotificationHandler *handler.NotificationHandler
	MedicineHandler     *handler.MedicineHandler
	Gatherer            prometheus.Gatherer
	Logger              logger.Logger
}

// NewRouter creates and configures a new Echo router.
func NewRouter(cfg *Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewRequestValidator()

	// Middleware
	e.Use(middleware.RequestID())
	// Use custom logger that integrates with our logger interface
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogHost:      true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			cfg.Logger.Info(fmt.Sprintf("REQUEST: method=%s, uri=%s, status=%d, latency=%s, req_id=%s",
				v.Method, v.URI, v.Status, v.Latency, v.RequestID,
			))
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Line-Signature"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Routes
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := e.Group("/api/v1")

	medicines := api.Group("/medicines")
	medicines.POST("", cfg.MedicineHandler.Create)
	medicines.GET("/:id", cfg.MedicineHandler.Get)
	medicines.PUT("/:id", cfg.MedicineHandler.Update)
	medicines.DELETE("/:id", cfg.MedicineHandler.Delete)
	medicines.POST("/:id/reminders", cfg.NotificationHandler.ScheduleReminders)
	medicines.DELETE("/:id/reminders", cfg.NotificationHandler.CancelReminders)

	notifications := api.Group("/notifications")
	notifications.POST("/initialize", cfg.NotificationHandler.Initialize)
	notifications.GET("/scheduled", cfg.NotificationHandler.ListScheduled)
	notifications.POST("/responses", cfg.NotificationHandler.Respond)

	// LINE Webhook Endpoint
	// Note: LINE Platform requires POST for webhook
	if cfg.LineHandler != nil {
		e.POST("/callback", cfg.LineHandler.HandleWebhook)
	} else {
		cfg.Logger.Warn("LINE is not configured, /callback is disabled")
	}

	cfg.Logger.Info("Router initialized with routes.")
	return e
}
