package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/trussfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/logging"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/server"
)

func main() {
	configPath := flag.String("config", "", "YAML or TOML config file")
	host := flag.String("host", "", "Listen host (overrides config)")
	port := flag.String("port", "", "Listen port (overrides config)")
	dev := flag.Bool("dev", false, "Development logging")
	rateLimit := flag.Bool("rate-limit", true, "Per-client rate limiting")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	cfg.RateLimit.Enabled = cfg.RateLimit.Enabled && *rateLimit

	logger, err := logging.FromConfig(cfg.Logging)
	if err != nil {
		logger.Warn("invalid logging configuration, using defaults", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}
