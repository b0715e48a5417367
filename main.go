package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hanoi/internal/config"
	"hanoi/internal/logging"
	"hanoi/internal/server"
)

//go:embed web/static
var static embed.FS

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hanoi: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	defaults := config.Default()
	configPath := flag.String("config", "", "path to an HCL config file")
	port := flag.Int("port", defaults.Port, "server port")
	disks := flag.Int("disks", defaults.DefaultDisks, "number of disks in a new room")
	moveDelay := flag.Duration("move-delay", defaults.MoveDelay, "pause between auto-solver moves")
	publicURL := flag.String("public-url", defaults.PublicURL, "base URL for QR join links")
	logLevel := flag.String("log-level", defaults.Log.Level, "debug|info|warn|error")
	logFormat := flag.String("log-format", defaults.Log.Format, "text|json")
	logFile := flag.String("log-file", defaults.Log.File, "also write JSON logs to this file")
	flag.Parse()

	cfg := defaults
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "disks":
			cfg.DefaultDisks = *disks
		case "move-delay":
			cfg.MoveDelay = *moveDelay
		case "public-url":
			cfg.PublicURL = *publicURL
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		case "log-file":
			cfg.Log.File = *logFile
		}
	})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, static, logger)
	if err := srv.Start(ctx); err != nil {
		logger.Error("server error", "err", err)
		return err
	}
	return nil
}
