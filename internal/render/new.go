package render

import (
	"time"

	"github.com/nguyentantai21042004/clipsmith/internal/logger"
	"github.com/nguyentantai21042004/clipsmith/pkg/executor"
)

type implRenderer struct {
	opts     Options
	executor executor.Executor
	logger   logger.Logger
}

// New creates a new Renderer instance
func New(exec executor.Executor, log logger.Logger, opts Options) Renderer {
	if opts.FFmpegBinary == "" {
		opts.FFmpegBinary = "ffmpeg"
	}
	if opts.ProbeBinary == "" {
		opts.ProbeBinary = "ffprobe"
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 30 * time.Second
	}
	if opts.DiagnosticLines <= 0 {
		opts.DiagnosticLines = 40
	}
	return &implRenderer{
		opts:     opts,
		executor: exec,
		logger:   log,
	}
}
