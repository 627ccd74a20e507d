package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snauth/authbridge/internal/config"
	"github.com/snauth/authbridge/internal/enginestub"
	"github.com/snauth/authbridge/internal/logging"
	"github.com/snauth/authbridge/internal/middleware"
	"go.uber.org/zap"
)

const defaultPort = 8090

func main() {
	// Initialize logger first
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}

	// Flow coordination lives in Redis when one is configured so multiple
	// stub instances see the same verification traffic. Otherwise an
	// in-process bus is enough.
	bus := enginestub.NewMemoryBus()
	if config.AppConfig.RedisURI != "" {
		redisBus, err := enginestub.NewRedisBus(
			config.AppConfig.RedisURI,
			config.AppConfig.RedisPassword,
			config.AppConfig.RedisDB,
			logging.Logger,
		)
		if err != nil {
			logging.Logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		bus = redisBus
		logging.Logger.Info("using Redis flow bus")
	}

	service := enginestub.NewService(bus, config.AppConfig.StubOTP, logging.Logger)

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
	)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	enginestub.NewHandlers(service).Register(router)

	port := defaultPort
	if v := os.Getenv("STUB_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			logging.Logger.Fatal("invalid STUB_PORT", zap.String("value", v), zap.Error(err))
		}
		port = p
	}

	// The start endpoint streams responses for the lifetime of an OTP
	// journey, so no write timeout is set.
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logging.Logger.Info("starting engine stub",
			zap.Int("port", port),
			zap.String("environment", config.AppConfig.Environment),
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
