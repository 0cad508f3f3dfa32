package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/infrastructure/config"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/infrastructure/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "nowdrop: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := parseFlags(cfg, os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

// parseFlags applies command-line overrides on top of cfg and validates the
// result.
func parseFlags(cfg *config.Config, args []string) error {
	flags := pflag.NewFlagSet("nowdrop", pflag.ContinueOnError)
	flags.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "HTTP port")
	flags.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "HTTP listen host")
	flags.StringVar(&cfg.Storage.Root, "storage", cfg.Storage.Root, "storage root directory")
	flags.StringVar(&cfg.Data.Dir, "data", cfg.Data.Dir, "data directory for accounts, chat and logs")
	flags.StringVar(&cfg.Data.Backend, "store", cfg.Data.Backend, "store backend (json or badger)")
	flags.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "development mode (console logs, gin debug)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	return cfg.Validate()
}
