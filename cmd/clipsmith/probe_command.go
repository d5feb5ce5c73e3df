package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/clipsmith/internal/logger"
	"github.com/nguyentantai21042004/clipsmith/internal/render"
	"github.com/nguyentantai21042004/clipsmith/pkg/executor"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "probe <file>...",
		Short:       "Show duration and dimensions of media files",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			// probe works without a config file; use it when it loads
			opts := render.Options{}
			if cfg, err := ctx.ensureConfig(); err == nil {
				opts.FFmpegBinary = cfg.FFmpeg.Binary
				opts.ProbeBinary = cfg.FFmpeg.ProbeBinary
				opts.ProbeTimeout = cfg.FFmpeg.ProbeTimeout
			}
			renderer := render.New(executor.New(), logger.NewNop(), opts)

			rows := make([][]string, 0, len(args))
			failed := 0
			for _, path := range args {
				info, err := renderer.Probe(cmd.Context(), path)
				if err != nil {
					failed++
					rows = append(rows, []string{path, "-", "-", "-", err.Error()})
					continue
				}
				rows = append(rows, probeRow(path, info))
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"File", "Duration", "Size", "Streams", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be probed", failed, len(args))
			}
			return nil
		},
	}
}

func probeRow(path string, info render.MediaInfo) []string {
	size := "-"
	if info.HasVideo {
		size = fmt.Sprintf("%dx%d", info.Width, info.Height)
	}
	streams := "none"
	switch {
	case info.HasVideo && info.HasAudio:
		streams = "video+audio"
	case info.HasVideo:
		streams = "video"
	case info.HasAudio:
		streams = "audio"
	}
	return []string{path, formatSeconds(info.DurationSeconds), size, streams, ""}
}
