package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"go.uber.org/zap"

	"paperindex/infrastructure/config"
	"paperindex/infrastructure/di"
	"paperindex/interfaces/http/rest"
)

func main() {
	// Initialize context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container
	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Shutdown()

	handler := newHandler(container)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.QueryTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("storeBackend", cfg.StoreBackend),
			zap.String("table", cfg.TableName),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	container.Logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}

	container.Logger.Info("Server stopped")
}

// newHandler builds the HTTP handler, wrapped in an X-Ray segment per
// request when tracing is enabled
func newHandler(container *di.Container) http.Handler {
	cfg := container.Config
	router := rest.NewRouter(
		container.Router,
		container.Backend.Inspector,
		container.Metrics,
		rest.Options{
			EnableCORS:     cfg.EnableCORS,
			Debug:          cfg.IsDevelopment(),
			RequestTimeout: cfg.QueryTimeout + time.Second,
		},
		container.Logger,
	)

	handler := router.Setup()
	if cfg.EnableTracing {
		handler = xray.Handler(xray.NewFixedSegmentNamer("paperindex-api"), handler)
	}
	return handler
}
