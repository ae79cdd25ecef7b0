package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/aicardgame-go/internal/api"
	"github.com/mcoot/aicardgame-go/internal/config"
	"github.com/mcoot/aicardgame-go/internal/factory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	app, err := factory.New(factory.FromServerConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := app.Start(); err != nil {
		logger.Error("failed to start background jobs", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Storage:     app.Storage,
		Catalog:     app.Catalog,
		Hubs:        app.Hubs,
		Auth:        app.Auth,
		State:       app.State,
		Enhance:     app.Enhance,
		Fusion:      app.Fusion,
		Synergy:     app.Synergy,
		Production:  app.Production,
		Matchmaking: app.Matchmaking,
		Ranking:     app.Ranking,
		Missions:    app.Missions,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)
	server.OnShutdown(app.Hubs.Close)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage),
	)

	exit := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exit = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exit = 1
		}
	}

	if err := app.Close(context.Background()); err != nil {
		logger.Error("failed to release resources", slog.String("error", err.Error()))
		exit = 1
	}
	logger.Info("server stopped")
	os.Exit(exit)
}
