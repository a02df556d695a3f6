// Command tablabaki-server runs the tablabaki HTTP/WebSocket API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourusername/tablabaki/internal/config"
	"github.com/yourusername/tablabaki/pkg/api"
	"github.com/yourusername/tablabaki/pkg/variant"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tablabaki-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags override the environment.
	flag.StringVar(&cfg.Host, "host", cfg.Host, "Host to bind to (use 0.0.0.0 for all interfaces)")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "Port to listen on")
	flag.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "HTTP read timeout")
	flag.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "HTTP write timeout")
	flag.IntVar(&cfg.MaxFastWorkers, "fast-workers", cfg.MaxFastWorkers, "Max concurrent AI moves and reviews")
	flag.IntVar(&cfg.MaxSlowWorkers, "slow-workers", cfg.MaxSlowWorkers, "Max concurrent autoplay streams")
	flag.StringVar(&cfg.VariantsDir, "variants", cfg.VariantsDir, "Directory of variant JSON files (default: built-in catalog)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: json or text")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tablabaki server v%s\n", version)
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	variants := variant.NewEmbeddedStore()
	if cfg.VariantsDir != "" {
		variants = variant.NewDirStore(cfg.VariantsDir)
	}
	names, err := variants.List(ctx)
	if err != nil {
		return fmt.Errorf("load variants: %w", err)
	}
	logger.Info("variants loaded", "count", len(names), "variants", names)

	svc := api.NewService(variants, api.WithLogger(logger))
	server := api.NewServer(svc, cfg.ServerConfig(), version, logger)
	return server.Run(ctx)
}
