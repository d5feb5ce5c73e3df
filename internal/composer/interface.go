package composer

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/clipsmith/internal/render"
)

var (
	// ErrInvalidManifest is returned for manifests that cannot produce a video.
	ErrInvalidManifest = errors.New("composer: invalid manifest")
	// ErrInvalidBackground is returned when the background has no video stream.
	ErrInvalidBackground = errors.New("composer: background has no video stream")
)

// Composer turns job manifests into finished videos.
type Composer interface {
	// Process claims the manifest at path, composes it and archives it.
	// A manifest already claimed by another worker is skipped.
	Process(ctx context.Context, manifestPath string) error
	// Compose runs one job and reports render progress to sink.
	Compose(ctx context.Context, m *Manifest, sink render.Sink) (Result, error)
}

// Result describes the artifacts of a finished job.
type Result struct {
	JobID          string
	VideoPath      string
	TranscriptPath string
	Duration       float64
}
