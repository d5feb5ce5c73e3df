package composer

import (
	"golang.org/x/sync/semaphore"

	"github.com/nguyentantai21042004/clipsmith/internal/config"
	"github.com/nguyentantai21042004/clipsmith/internal/logger"
	"github.com/nguyentantai21042004/clipsmith/internal/render"
	"github.com/nguyentantai21042004/clipsmith/internal/synth"
)

type implComposer struct {
	cfg      *config.Config
	registry *synth.Registry
	renderer render.Renderer
	logger   logger.Logger
	renders  *semaphore.Weighted
}

// New creates a new Composer instance
func New(cfg *config.Config, registry *synth.Registry, renderer render.Renderer, log logger.Logger) Composer {
	maxRenders := cfg.Performance.MaxRenders
	if maxRenders <= 0 {
		maxRenders = 1
	}
	return &implComposer{
		cfg:      cfg,
		registry: registry,
		renderer: renderer,
		logger:   log,
		renders:  semaphore.NewWeighted(int64(maxRenders)),
	}
}
