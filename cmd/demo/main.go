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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/snauth/authbridge/internal/config"
	"github.com/snauth/authbridge/internal/engine"
	"github.com/snauth/authbridge/internal/logging"
	"github.com/snauth/authbridge/internal/middleware"
	"github.com/snauth/authbridge/internal/observability"
	"github.com/snauth/authbridge/internal/webview"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Initialize logger first
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}

	// Development sessions get verbose diagnostics
	if config.AppConfig.Environment == "development" {
		logging.SetLevel(zapcore.DebugLevel)
	}

	// Initialize observability
	observability.InitTracer()
	defer observability.ShutdownTracer()

	// Connect the engine client
	eng := engine.NewHTTPEngine(config.AppConfig.EngineBaseURL, config.AppConfig.EngineRequestTimeout)
	defer eng.Close()

	// Set Gin mode
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router with middleware
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		cors.Default(),
	)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Demo page and the bridge endpoint it connects to
	bridge := webview.NewBridge(eng, config.AppConfig.Environment, logging.Logger)
	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", webview.DemoPage())
	})
	router.GET("/bridge", gin.WrapH(bridge.Handler()))

	// Create server with timeouts. The bridge endpoint holds long-lived
	// WebSocket connections, so no write timeout is set.
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", config.AppConfig.Port),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logging.Logger.Info("starting demo server",
			zap.Int("port", config.AppConfig.Port),
			zap.String("environment", config.AppConfig.Environment),
			zap.String("engine", config.AppConfig.EngineBaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logging.Logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("server forced to shutdown", zap.Error(err))
	}

	logging.Logger.Info("server exited")
}
