package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nguyentantai21042004/clipsmith/internal/filtergraph"
	"github.com/nguyentantai21042004/clipsmith/pkg/executor"
)

// Execute runs the plan's renderer command and streams its progress.
func (r *implRenderer) Execute(ctx context.Context, plan *filtergraph.CommandPlan, sink Sink) (string, error) {
	if plan == nil {
		return "", errors.New("render: nil plan")
	}
	guarded := newGuardedSink(sink)
	defer r.removeTemps(ctx, plan.TempFiles)

	startTime := time.Now()
	tail := newLineTail(r.opts.DiagnosticLines)
	r.logger.Debug(ctx, "Render command: %s", plan.CommandLine())

	err := r.executor.Stream(ctx, plan.Dir, func(line string) {
		tail.add(line)
		elapsed, ok := ParseProgressTime(line)
		if !ok {
			return
		}
		if percent, ok := Percent(elapsed, plan.TargetDuration); ok {
			guarded.OnProgress(percent)
		}
	}, plan.Binary, plan.Args...)

	if err != nil {
		guarded.OnError()
		r.removeFile(ctx, plan.OutputPath)

		failure := &ProcessFailedError{ExitCode: -1, Diagnostics: tail.String(), Err: err}
		var cmdErr *executor.CommandError
		if errors.As(err, &cmdErr) {
			failure.ExitCode = cmdErr.Code
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			failure.Err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		r.logger.Error(ctx, "Render failed after %s (exit %d): %v", time.Since(startTime).Round(time.Millisecond), failure.ExitCode, err)
		return "", failure
	}

	guarded.OnComplete()
	r.logger.Info(ctx, "Render finished in %s: %s", time.Since(startTime).Round(time.Millisecond), plan.OutputPath)
	return plan.OutputPath, nil
}

// removeTemps deletes plan-owned inputs; failures are logged, never returned.
func (r *implRenderer) removeTemps(ctx context.Context, paths []string) {
	for _, p := range paths {
		r.removeFile(ctx, p)
	}
}

func (r *implRenderer) removeFile(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", path, err)
		}
		return
	}
	r.logger.Debug(ctx, "Cleaned up temp file: %s", path)
}

// lineTail keeps the last n lines of process output.
type lineTail struct {
	lines []string
	max   int
}

func newLineTail(n int) *lineTail {
	return &lineTail{max: n}
}

func (t *lineTail) add(line string) {
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *lineTail) String() string {
	return strings.Join(t.lines, "\n")
}
