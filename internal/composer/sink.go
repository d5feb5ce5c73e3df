package composer

import (
	"context"

	"github.com/nguyentantai21042004/clipsmith/internal/logger"
	"github.com/nguyentantai21042004/clipsmith/internal/render"
)

// logStep is the progress granularity written to the log, in percent.
const logStep = 10

// logSink reports render progress through the logger in coarse steps.
type logSink struct {
	ctx    context.Context
	logger logger.Logger
	next   float64
}

func newLogSink(ctx context.Context, log logger.Logger) render.Sink {
	return &logSink{ctx: ctx, logger: log}
}

func (s *logSink) OnProgress(percent float64) {
	if percent < s.next {
		return
	}
	s.logger.Info(s.ctx, "Render progress: %.0f%%", percent)
	for s.next <= percent {
		s.next += logStep
	}
}

func (s *logSink) OnComplete() {
	s.logger.Info(s.ctx, "Render completed")
}

func (s *logSink) OnError() {
	s.logger.Error(s.ctx, "Render failed")
}
