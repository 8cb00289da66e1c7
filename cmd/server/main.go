package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tlo-gateway/internal/platform/config"
	"tlo-gateway/internal/platform/httpserver"
	"tlo-gateway/internal/platform/logger"
	"tlo-gateway/internal/platform/middleware"
	"tlo-gateway/internal/search/envelope"
	"tlo-gateway/internal/search/handler"
	"tlo-gateway/internal/search/metrics"
	"tlo-gateway/internal/search/service"
	"tlo-gateway/internal/search/upstream"
)

// main wires high-level dependencies and keeps the server lifecycle
// small. Business logic lives in the internal/search packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}

	client, err := upstream.NewClient(upstream.Config{
		URL:        cfg.Upstream.URL,
		SOAPAction: cfg.Upstream.SOAPAction,
		CertFile:   cfg.Upstream.CertFile,
		KeyFile:    cfg.Upstream.KeyFile,
		Timeout:    cfg.Upstream.Timeout,
	})
	if err != nil {
		// Unreadable certificate material is the one fatal startup fault.
		log.Error("cannot initialize upstream client", "error", err.Error())
		os.Exit(1)
	}

	m := metrics.New()

	retrier, err := upstream.NewRetrier(client, cfg.Upstream.MaxRetries, log, m)
	if err != nil {
		log.Error("cannot initialize retrier", "error", err.Error())
		os.Exit(1)
	}

	creds := envelope.Credentials{
		Username: cfg.Upstream.Username,
		Password: cfg.Upstream.Password,
	}
	svc, err := service.New(retrier, creds, log, m)
	if err != nil {
		log.Error("cannot initialize search service", "error", err.Error())
		os.Exit(1)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Handle("/metrics", promhttp.Handler())
	handler.New(svc, cfg.SharedSecret, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting tlo-gateway", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
