package synth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/clipsmith/internal/timing"
)

// ErrUnknownProvider is returned by Registry.Lookup for unregistered keys.
var ErrUnknownProvider = errors.New("synth: unknown provider")

// Request is one line of narration to synthesize.
type Request struct {
	Text        string
	VoiceID     string
	WantTimings bool
	// SpeakerID makes the result a dialogue segment carrying one line.
	SpeakerID string
	// Dir receives the generated audio file.
	Dir string
}

// Synthesizer turns text into a narration segment.
type Synthesizer interface {
	Generate(ctx context.Context, req Request) (timing.Segment, error)
}

// Aligner recovers word timings from an audio file.
type Aligner interface {
	Align(ctx context.Context, audioPath string) ([]timing.WordTiming, error)
}

// SynthesisError is the opaque failure every backend surfaces.
type SynthesisError struct {
	Provider string
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synth %s: %v", e.Provider, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
