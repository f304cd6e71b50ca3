package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/chanchat-server/internal/app"
	"github.com/vovakirdan/chanchat-server/internal/auth"
	"github.com/vovakirdan/chanchat-server/internal/config"
	"github.com/vovakirdan/chanchat-server/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	cmd := &cobra.Command{
		Use:           "chanchat-server",
		Short:         "Channel based websocket chat server",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath, overrides)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to config file (default ./config.yaml)")
	flags.StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")

	cmd.AddCommand(newHashPasswordCmd())
	return cmd
}

func serve(ctx context.Context, configPath string, overrides config.Config) error {
	bootLog := log.New("info")

	cfg, path, err := config.Load(bootLog, configPath)
	if err != nil {
		bootLog.Error().Err(err).Msg("failed to load config")
		return err
	}
	cfg.UpdateFrom(overrides)

	logger := log.New(cfg.LogLevel)
	logger.Info().Str("config", path).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to init app")
		return err
	}

	logger.Info().Str("addr", cfg.Addr).Bool("tls", cfg.TLSEnabled()).Msg("starting chanchat server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newHashPasswordCmd prints a bcrypt hash suitable for a private channel's password_hash.
func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for a private channel password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
