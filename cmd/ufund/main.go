// Package main provides the ufund binary entry point.
// Ufund is a terminal client for the U-Fund marketplace: browse the needs
// catalog, fill a funding basket, check out, and follow receipts and
// messages, all against the U-Fund REST API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theeman05/SWEN-261-StudentUFund/commands"
	"github.com/theeman05/SWEN-261-StudentUFund/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "ufund"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		serverURL  string
		identity   string
		logLevel   string
	)

	app := &commands.App{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "U-Fund marketplace client",
		Long: `Ufund is a terminal client for the U-Fund marketplace.

Supporters browse the needs catalog, fill a funding basket, and check out;
the administrator manages the catalog. Receipts and per-need messages are
available to everyone.

The server address and acting identity come from the layered YAML config
(user config, then project ufund.yaml) and can be overridden per run.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(configPath, serverURL, identity, logLevel)
			if err != nil {
				return err
			}
			app.Init(cfg, logger, os.Stdout)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&serverURL, "server", "", "U-Fund API base URL")
	cmd.PersistentFlags().StringVar(&identity, "identity", "", "Acting username (\"admin\" for the administrator)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		commands.NewNeedsCommand(app),
		commands.NewBasketCommand(app),
		commands.NewLoginCommand(app),
		commands.NewSignupCommand(app),
		commands.NewLogoutCommand(app),
		commands.NewInboxCommand(app),
		commands.NewReceiptsCommand(app),
	)

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// setup resolves configuration and logging for one invocation.
func setup(configPath, serverURL, identity, logLevel string) (*config.Config, *slog.Logger, error) {
	level := slog.LevelWarn
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
	} else {
		loader := config.NewLoader(logger)
		// First run: seed the user config with defaults so there is a
		// file to edit.
		if err := loader.EnsureUserConfig(); err != nil {
			logger.Warn("could not create user config", "error", err)
		}
		cfg, err = loader.Load()
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
	}

	if serverURL != "" {
		cfg.Server.URL = serverURL
	}
	if identity != "" {
		cfg.Identity.Username = identity
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logger, nil
}
