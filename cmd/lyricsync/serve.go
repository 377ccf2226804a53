package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lyricsync/internal/daemon"
	"lyricsync/internal/logging"
	"lyricsync/internal/provider"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and player session",
		RunE:  func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}
}

func runServe(cmdCtx context.Context, ctx *commandContext) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	p, err := provider.New(cfg, logger)
	if err != nil {
		return err
	}

	d, err := daemon.New(cfg, p, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}
	logger.Info("lyricsync serving",
		logging.String("addr", d.Addr()),
		logging.String(logging.FieldProvider, p.Name()),
		logging.String("config", ctx.configPath),
	)

	<-signalCtx.Done()
	logger.Info("shutting down")
	d.Stop()
	return nil
}
