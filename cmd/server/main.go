package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/buzzrelay/internal/api"
	"github.com/mcoot/buzzrelay/internal/config"
	"github.com/mcoot/buzzrelay/internal/factory"
	"github.com/mcoot/buzzrelay/internal/session"
	redisstorage "github.com/mcoot/buzzrelay/internal/storage/redis"
	"github.com/mcoot/buzzrelay/internal/transport/ws"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("could not read .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appCfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: appCfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Build factory config
	cfg := factory.Config{
		Logger:      logger,
		StorageType: appCfg.StorageType,
		SessionConfig: &session.Config{
			OrphanTTL:     appCfg.RoomOrphanTTL,
			SweepInterval: appCfg.RoomSweepInterval,
		},
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = appCfg.RedisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("error closing storage", slog.String("error", err.Error()))
		}
	}()

	// Start the coordinator; cancelling it closes every websocket
	coordCtx, stopCoordinator := context.WithCancel(context.Background())
	defer stopCoordinator()
	go app.Coordinator.Run(coordCtx)

	wsCfg := ws.DefaultConfig()
	wsCfg.SendBufferSize = appCfg.SendBufferSize
	wsCfg.AllowedOrigins = appCfg.AllowedOrigins

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Coordinator: app.Coordinator,
		WSConfig:    wsCfg,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = appCfg.Host
	serverConfig.Port = appCfg.Port
	server := api.NewServer(router, serverConfig, logger)
	server.RegisterOnShutdown(stopCoordinator)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			stopCoordinator()
			<-app.Coordinator.Done()
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	stopCoordinator()
	<-app.Coordinator.Done()
	logger.Info("server stopped")
}
