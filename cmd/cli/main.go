package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/buildinfo"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/cli"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/config"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/logging"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/telemetry"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(cfg.LogBackend, cfg.LogLevel, os.Stderr)

	shutdownTelemetry := telemetry.Setup(ctx, "stock-advisor-cli", logger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
