package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Sirbiscuits1/Marketplace/internal/app"
	"github.com/Sirbiscuits1/Marketplace/internal/httpapi"
	"github.com/Sirbiscuits1/Marketplace/internal/infra"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// .env is optional; env vars override the config file either way.
	_ = godotenv.Load()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	infra.PrintBanner(bootstrap.Config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Passive wallet probe: silent reconnect if the agent already holds an
	// authorization. Bounded; never blocks startup.
	go bootstrap.Session.StartupProbe(ctx)

	// Initial listings reconciliation in the background; intents can force
	// another via the API.
	go func() {
		if err := bootstrap.Coordinator.ReconcileListings(ctx); err != nil {
			slog.Warn("Initial listings reconciliation failed", slog.Any("error", err))
		}
	}()

	server := httpapi.NewServer(bootstrap.Coordinator, bootstrap.Queue, bootstrap.Registry)
	httpServer := &http.Server{
		Addr:    bootstrap.Config.API.ListenAddr,
		Handler: httpapi.NewRouter(server),
	}

	go func() {
		slog.Info("Intent API listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Intent API failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Intent API shutdown incomplete", slog.Any("error", err))
	}
}
