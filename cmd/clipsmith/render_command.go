package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/clipsmith/internal/composer"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "render <manifest.yaml>",
		Short: "Render one manifest and show progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := ctx.services(runCtx)
			if err != nil {
				return err
			}
			defer svc.logger.Sync()

			m, err := composer.LoadManifest(args[0])
			if err != nil {
				return err
			}

			sink := newTerminalSink(cmd.ErrOrStderr(), stderrIsTerminal())
			res, err := svc.composer.Compose(runCtx, m, sink)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Video: %s (%s)\n", res.VideoPath, formatSeconds(res.Duration))
			if res.TranscriptPath != "" {
				fmt.Fprintf(out, "Transcript: %s\n", res.TranscriptPath)
			}
			return nil
		},
	}
}
