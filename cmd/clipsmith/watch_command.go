package main

import (
	"context"
	"errors"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/clipsmith/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Render every manifest dropped into the input folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(runCtx, ctx)
		},
	}
}

func runWatch(ctx context.Context, cc *commandContext) error {
	svc, err := cc.services(ctx)
	if err != nil {
		return err
	}
	cfg, log := svc.cfg, svc.logger
	defer log.Sync()

	log.Info(ctx, "========================================")
	log.Info(ctx, "Clipsmith")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "CPU Cores: %d", runtime.NumCPU())
	log.Info(ctx, "Max Concurrent Jobs: %d", cfg.Performance.MaxConcurrent)
	log.Info(ctx, "Configuration loaded successfully")

	w, err := watcher.New(cfg.Paths.Input, svc.composer.Process, log, cfg.Performance.MaxConcurrent)
	if err != nil {
		log.Error(ctx, "Failed to create watcher: %v", err)
		return err
	}
	defer w.Stop()

	log.Info(ctx, "========================================")
	log.Info(ctx, "Clipsmith is ready!")
	log.Info(ctx, "Monitoring: %s", cfg.Paths.Input)
	log.Info(ctx, "Output: %s", cfg.Paths.Output)
	log.Info(ctx, "  - Provider: %s", cfg.Synthesis.Provider)
	log.Info(ctx, "  - FFmpeg: %s encoder, %dx%d @ %dfps", cfg.FFmpeg.Encoder, cfg.Video.Width, cfg.Video.Height, cfg.Video.FrameRate)
	log.Info(ctx, "  - Synthesis: %d lines at once, %d renders at once", cfg.Performance.MaxSynthesis, cfg.Performance.MaxRenders)
	log.Info(ctx, "")
	log.Info(ctx, "Press Ctrl+C to stop")
	log.Info(ctx, "========================================")

	err = w.Start(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "Watcher error: %v", err)
		return err
	}

	log.Info(context.Background(), "Clipsmith stopped")
	return nil
}
