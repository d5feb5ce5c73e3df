package narration

import (
	"github.com/nguyentantai21042004/clipsmith/internal/logger"
)

type implCombiner struct {
	concat  Concatenator
	logger  logger.Logger
	workDir string
}

// New creates a Combiner that writes the combined audio into workDir.
func New(concat Concatenator, log logger.Logger, workDir string) Combiner {
	return &implCombiner{
		concat:  concat,
		logger:  log,
		workDir: workDir,
	}
}
