// Package main is the entry point for the SSQ API
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/ssqapi/internal/api"
	"github.com/nsvirk/ssqapi/internal/api/middleware"
	"github.com/nsvirk/ssqapi/internal/config"
	"github.com/nsvirk/ssqapi/internal/repository"
	"github.com/nsvirk/ssqapi/internal/service"
	"github.com/nsvirk/ssqapi/pkg/utils/zaplogger"
)

func main() {
	// Load configuration
	cfg, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Print the configuration
	fmt.Println(cfg.String())

	// Connect to Postgres
	db, err := repository.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}

	// Connect Redis
	redisClient, err := repository.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Init logger
	err = zaplogger.InitLogger(db)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Setup logger
	defer zaplogger.Sync()
	zaplogger.SetLogLevel(cfg.ServerLogLevel)

	// startUpMessage
	zaplogger.Info(cfg.APIName + " - " + cfg.APIVersion + " initialized")
	zaplogger.Info("Postgres initialized")
	zaplogger.Info("Redis initialized")

	services, err := api.NewServices(cfg, db, redisClient)
	if err != nil {
		zaplogger.Fatal("Failed to initialize services", zaplogger.Fields{"error": err.Error()})
	}

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = api.HTTPErrorHandler

	// Setup middleware
	middleware.SetupLoggerMiddleware(e)

	// Setup routes
	api.SetupRoutes(e, cfg, services)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup and start cron jobs
	cronService := service.NewCronService(cfg.CrawlSchedule, services.Crawl, services.Auth)
	cronService.Start()

	// Relay history changes to Redis subscribers
	publishService := service.NewPublishService(repository.NewRedisPublisher(redisClient), cfg.PostgresDsn)
	go publishService.RelayHistoryEvents(ctx)

	// Start the server
	go startServer(e, cfg)

	<-ctx.Done()
	zaplogger.Info("SERVER SHUTTING DOWN")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zaplogger.Error("Server shutdown failed", zaplogger.Fields{"error": err.Error()})
	}
	<-cronService.Stop().Done()
	redisClient.Close()
}

// startServer starts the Echo server on the specified port
func startServer(e *echo.Echo, cfg *config.Config) {
	port := cfg.ServerPort
	if port == "" {
		port = "3007"
	}
	zaplogger.Info("SERVER STARTED ON PORT " + port)
	if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zaplogger.Fatal("Server stopped", zaplogger.Fields{"error": err.Error()})
	}
}
