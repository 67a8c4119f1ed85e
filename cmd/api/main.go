package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"boardedit/infrastructure/config"
	"boardedit/infrastructure/di"
	"boardedit/interfaces/http/rest"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("api: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize dependency container
	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = container.Logger.Sync()
	}()

	dir := os.Getenv("CONFIG_DIR")
	if dir == "" {
		dir = "config"
	}
	watcher, err := config.NewWatcher(dir, cfg, container.Logger.Named("config"))
	if err != nil {
		container.Logger.Info("Configuration hot reloading disabled", zap.Error(err))
	} else {
		watcher.OnChange(config.LevelUpdater(container.Level, container.Logger))
		watcher.OnChange(config.RulesUpdater(container.Sessions, container.Logger))
		defer watcher.Stop()
	}

	if err := rest.Serve(ctx, container); err != nil {
		return err
	}
	container.Logger.Info("Server stopped")
	return nil
}
