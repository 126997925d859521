package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Application Layer
	appService "medreminder/internal/application/service"
	"medreminder/internal/config"

	// Infrastructure Layer
	"medreminder/internal/infrastructure/database/sqlite"
	"medreminder/internal/infrastructure/healthapi"
	lineClient "medreminder/internal/infrastructure/line"
	"medreminder/internal/infrastructure/notifier"
	"medreminder/internal/infrastructure/scheduler"

	// Interfaces Layer
	"medreminder/internal/interfaces/api/handler"
	"medreminder/internal/interfaces/api/router"

	// Packages
	appLogger "medreminder/internal/pkg/logger"
	"medreminder/internal/pkg/metrics"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

func gracefulShutdown(
	apiServer *http.Server,
	notifications appService.NotificationService,
	center *notifier.Center,
	db *gorm.DB,
	appLog appLogger.Logger,
	done chan bool,
) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	appLog.Info("Shutting down gracefully, press Ctrl+C again to force")

	// Stop accepting responses, then stop the triggers.
	notifications.Shutdown()
	appLog.Info("Stopping notification center...")
	center.Stop()
	appLog.Info("Notification center stopped.")

	appLog.Info("Closing database connection...")
	if err := sqlite.CloseDB(db); err != nil {
		appLog.Error("Error closing database", err)
	} else {
		appLog.Info("Database connection closed.")
	}

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", err)
	}

	appLog.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	// --- Initialization ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("🔴 ERROR: %v", err)
	}
	appLog := appLogger.New(cfg.LogLevel, cfg.LogFormat)
	appLog.Info("Logger initialized.")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(reg)

	// --- Infrastructure ---
	db, err := sqlite.NewDB(cfg.DBURL)
	if err != nil {
		appLog.Error("Failed to open database", err)
		os.Exit(1)
	}
	kvRepo := sqlite.NewKeyValueRepository(db)
	triggerIndex := sqlite.NewTriggerIndexRepository(kvRepo)
	appLog.Info("Database and repositories initialized.")

	healthAPI := healthapi.NewClient(cfg.HealthAPI.BaseURL, cfg.HealthAPI.Token, cfg.HealthAPI.Timeout, appLog)
	cronScheduler := scheduler.NewScheduler(appLog, time.Local)

	centerOpts := []notifier.Option{
		notifier.WithPlatform(cfg.Notifications.Platform),
		notifier.WithMetrics(appMetrics),
		notifier.WithPrompter(func(context.Context, notifier.Capabilities) notifier.PermissionStatus {
			if cfg.Notifications.Permission == "denied" {
				return notifier.PermissionDenied
			}
			return notifier.PermissionGranted
		}),
	}

	var line *lineClient.Client
	var alerter appService.Alerter = appService.NewLogAlerter(appLog)
	if cfg.Line.Enabled() {
		line, err = lineClient.NewClient(
			cfg.Line.ChannelSecret,
			cfg.Line.ChannelToken,
			kvRepo,
			cfg.Line.RecipientID,
			cfg.Notifications.SnoozeEnabled,
			appLog,
		)
		if err != nil {
			appLog.Error("Failed to create LINE client", err)
			os.Exit(1)
		}
		alerter = line
		centerOpts = append(centerOpts, notifier.WithPresenter(line))
	} else {
		appLog.Warn("CHANNEL_SECRET or CHANNEL_ACCESS_TOKEN not set, reminders are only logged")
	}

	center := notifier.NewCenter(cronScheduler, appLog, centerOpts...)

	// --- Application Services ---
	// Initialize services (order matters for dependency injection workaround)
	notificationSvc := appService.NewNotificationService(center, alerter, appService.NotificationSettings{
		SnoozeEnabled:    cfg.Notifications.SnoozeEnabled,
		DismissOnStartup: cfg.Notifications.DismissOnStartup,
		ResponseTimeout:  cfg.Notifications.ResponseTimeout,
	}, appLog)
	schedulerSvc := appService.NewSchedulerService(center, triggerIndex, notificationSvc, appMetrics, cfg.Notifications.SnoozeDelay, appLog)
	reconciler := appService.NewUsageReconciler(healthAPI, appMetrics, cfg.Notifications.UsageLogAttempts, cfg.Notifications.UsageLogBackoff, appLog)
	// The dispatcher registers itself as the response handler of notificationSvc.
	appService.NewResponseDispatcher(center, notificationSvc, schedulerSvc, reconciler, alerter, appMetrics, appLog)
	medicineSvc := appService.NewMedicineService(healthAPI, schedulerSvc, appLog)
	appLog.Info("Application services initialized.")

	// --- Initialize Notifications ---
	if err := notificationSvc.Initialize(context.Background()); err != nil {
		// Log the error but continue starting the server; the next
		// scheduling call retries initialization.
		appLog.Error("Failed to initialize notifications on startup", err)
	}

	// --- API Handlers ---
	routerCfg := &router.Config{
		NotificationHandler: handler.NewNotificationHandler(center, notificationSvc, schedulerSvc, appLog),
		MedicineHandler:     handler.NewMedicineHandler(medicineSvc, appLog),
		Gatherer:            reg,
		Logger:              appLog,
	}
	if line != nil {
		routerCfg.LineHandler = handler.NewLineHandler(line, kvRepo, center, notificationSvc, schedulerSvc, appLog)
	}
	appLog.Info("API handlers initialized.")

	// --- Router ---
	echoRouter := router.NewRouter(routerCfg)

	// --- HTTP Server ---
	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      echoRouter,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// --- Start Server & Shutdown Handling ---
	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, notificationSvc, center, db, appLog, done)

	appLog.Info(fmt.Sprintf("Server starting on port %d", cfg.Port))
	err = apiServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		appLog.Error("HTTP server ListenAndServe error", err)
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for graceful shutdown signal
	<-done
	appLog.Info("Graceful shutdown complete.")
}
