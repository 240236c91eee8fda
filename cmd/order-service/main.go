package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"umkmorder/internal/app"
	"umkmorder/internal/config"
	"umkmorder/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewAdapter(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	log.Infow("application starting",
		"env", cfg.Env,
		"version", cfg.App.Version,
		"store", cfg.Store.Driver,
		"kafka_intake", cfg.Kafka.Enabled,
	)

	err = app.Run(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Errorw("application failed", "error", err)
		_ = log.Sync()
		os.Exit(1)
	}

	log.Infow("application exited normally")
	_ = log.Sync()
}
