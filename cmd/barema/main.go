package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/baremaai/companion/internal/bootstrap"
	"github.com/baremaai/companion/internal/config"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "barema: %v\n", err)
		os.Exit(1)
	}

	if cfg.MetricsPort != "" {
		go func() {
			if err := app.ServeMetrics(); err != nil {
				app.Logger.Warn("metrics_server_stopped", "error", err)
			}
		}()
	}

	if err := app.CLI.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "barema: %v\n", err)
		os.Exit(1)
	}
}
