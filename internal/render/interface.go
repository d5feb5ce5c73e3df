package render

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/clipsmith/internal/filtergraph"
)

// Renderer drives the external media tool.
type Renderer interface {
	// Execute runs a finished plan, reporting progress to sink, and returns
	// the output path. Temporary inputs tracked by the plan are removed
	// whatever the outcome.
	Execute(ctx context.Context, plan *filtergraph.CommandPlan, sink Sink) (string, error)
	// Probe reads duration and dimensions, bounded by the probe timeout.
	Probe(ctx context.Context, path string) (MediaInfo, error)
	// ConcatAudio joins inputs, in order, into one audio file.
	ConcatAudio(ctx context.Context, inputs []string, output string) error
}

// Options configures a Renderer.
type Options struct {
	FFmpegBinary string
	ProbeBinary  string
	ProbeTimeout time.Duration
	// DiagnosticLines is how many trailing output lines a failure keeps.
	DiagnosticLines int
}

// MediaInfo is what Probe learns about a file. Width and Height are zero
// for audio-only media.
type MediaInfo struct {
	DurationSeconds float64
	Width           int
	Height          int
	HasVideo        bool
	HasAudio        bool
	SizeBytes       int64
}

// ProcessFailedError reports a render that did not exit cleanly. ExitCode is
// -1 when the process could not start or was killed.
type ProcessFailedError struct {
	ExitCode    int
	Diagnostics string
	Err         error
}

func (e *ProcessFailedError) Error() string {
	return fmt.Sprintf("render failed (exit %d): %v", e.ExitCode, e.Err)
}

func (e *ProcessFailedError) Unwrap() error {
	return e.Err
}
