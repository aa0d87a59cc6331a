// @title Short Positions API
// @version 1.0
// @description Loads daily aggregated short position reports and compares them across dates.
// @BasePath /
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/shortpositions/config"
	"github.com/epeers/shortpositions/docs"
	"github.com/epeers/shortpositions/internal/asic"
	"github.com/epeers/shortpositions/internal/cache"
	"github.com/epeers/shortpositions/internal/handlers"
	"github.com/epeers/shortpositions/internal/metrics"
	"github.com/epeers/shortpositions/internal/services"
	"github.com/epeers/shortpositions/internal/util"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	configureLogging(cfg)

	loc := util.LoadReportLocation(cfg.ReportTimezone)

	// Initialize the regulator client and locator
	client := asic.NewClient(cfg.LandingURL,
		asic.WithTimeout(cfg.FetchTimeout),
		asic.WithRateLimit(cfg.RequestsPerSecond),
	)
	locator := asic.NewLocator(client, cfg.DownloadURL,
		asic.WithProbeDays(cfg.ProbeDays),
		asic.WithParallelProbe(cfg.ProbeParallel),
		asic.WithLocation(loc),
	)

	// Initialize caches
	reportCache := cache.NewMemoryCache(cfg.ReportCacheTTL)

	// Initialize services
	parser := services.NewCSVParser(loc, nil)
	reportSvc := services.NewReportService(client, locator, reportCache, parser, cfg.DownloadURL, loc)
	sessionSvc := services.NewSessionService(cfg.WindowCapacity, cfg.SessionTTL)
	comparisonSvc := services.NewComparisonService(loc)

	// Initialize handlers
	reportHandler := handlers.NewReportHandler(reportSvc, sessionSvc, cfg.ProbeDays)
	windowHandler := handlers.NewWindowHandler(sessionSvc)
	compareHandler := handlers.NewCompareHandler(comparisonSvc, sessionSvc)

	router := handlers.NewRouter(reportHandler, windowHandler, compareHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Info("Server exited")
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if level < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
}
