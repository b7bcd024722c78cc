package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rooftop-vision/config"
	"rooftop-vision/handlers"
	"rooftop-vision/metrics"
	"rooftop-vision/providers"

	"github.com/apex/log"
)

func main() {
	// Load configuration
	cfg := config.Load()

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Invalid LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	analyzer, err := providers.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize analyzer: %v", err)
	}

	// Requests still get a structured config_missing result without a key.
	if providers.APIKeyMissing(cfg) {
		log.Warnf("No API key configured for provider %s; analyses will fail until one is set", analyzer.SourceName())
	}

	metrics.Register()

	h := handlers.NewHandlers(analyzer, cfg.MaxUploadBytes)

	router, err := handlers.NewRouter(h, cfg.TrustedProxies, cfg.RateLimitPerMinute)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	// The write timeout must outlive the upstream call.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 15*time.Second,
	}

	go func() {
		log.Infof("Starting rooftop vision service on port %s (provider %s)", cfg.Port, analyzer.SourceName())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
