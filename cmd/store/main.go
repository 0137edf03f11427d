// Command store serves the reference content store the feed client talks to.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"twitter-clone/internal/config"
	"twitter-clone/internal/database"
	"twitter-clone/internal/handlers"
	"twitter-clone/internal/middleware"
	"twitter-clone/internal/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := database.NewRepository(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open %s database: %v", cfg.Database.Type, err)
	}

	metrics := utils.NewMetricsCollector()
	server := handlers.NewServer(repo, metrics, cfg.Dataset, cfg.Token)

	mux := http.NewServeMux()
	server.Routes(mux)

	var handler http.Handler = mux
	if cfg.Server.MetricsEnabled {
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
		handler = middleware.NewPrometheusMiddleware(handler, metrics.Registry())
	}
	handler = middleware.CORSMiddleware(middleware.DefaultCORSConfig(cfg.AllowedOrigins))(handler)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"addr":     serverAddr,
			"dataset":  cfg.Dataset,
			"database": cfg.Database.Type,
		}).Info("Starting content store")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down content store...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
	}
	if err := repo.Close(shutdownCtx); err != nil {
		log.Errorf("Failed to close database: %v", err)
	}
}
