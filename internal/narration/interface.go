package narration

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/clipsmith/internal/timing"
)

// ErrEmptyInput is returned when Combine is called with no segments.
var ErrEmptyInput = errors.New("narration: no segments to combine")

// ConcatenationFailedError wraps a failure of the audio concat step.
type ConcatenationFailedError struct {
	Cause error
}

func (e *ConcatenationFailedError) Error() string {
	return fmt.Sprintf("narration: concatenation failed: %v", e.Cause)
}

func (e *ConcatenationFailedError) Unwrap() error {
	return e.Cause
}

// Concatenator joins audio files into one. render.Renderer satisfies it.
type Concatenator interface {
	ConcatAudio(ctx context.Context, inputs []string, output string) error
}

// Combiner merges narration segments into a single Timeline.
type Combiner interface {
	// Combine concatenates the segments' audio in order and re-bases every
	// word timing onto the combined clock. Segment audio files are removed
	// whether or not the combination succeeds.
	Combine(ctx context.Context, segments []timing.Segment) (timing.Timeline, error)
}
