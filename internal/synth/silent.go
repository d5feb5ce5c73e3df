package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/clipsmith/internal/logger"
	"github.com/nguyentantai21042004/clipsmith/internal/timing"
	"github.com/nguyentantai21042004/clipsmith/pkg/executor"
)

const (
	// ProviderSilent is the registry key of the offline placeholder backend.
	ProviderSilent = "silent"

	defaultWordsPerSecond = 2.5
)

type implSilent struct {
	ffmpeg         string
	wordsPerSecond float64
	executor       executor.Executor
	logger         logger.Logger
}

// NewSilent creates a Synthesizer that emits silence paced at a fixed
// speaking rate with evenly spread word timings. It needs no credentials and
// is used for layout previews.
func NewSilent(ffmpegBinary string, exec executor.Executor, log logger.Logger) Synthesizer {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &implSilent{
		ffmpeg:         ffmpegBinary,
		wordsPerSecond: defaultWordsPerSecond,
		executor:       exec,
		logger:         log,
	}
}

func (s *implSilent) Generate(ctx context.Context, req Request) (timing.Segment, error) {
	fields := strings.Fields(req.Text)
	if len(fields) == 0 {
		return timing.Segment{}, &SynthesisError{Provider: ProviderSilent, Err: errors.New("empty text")}
	}

	dir := req.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	out := filepath.Join(dir, "tts-"+uuid.NewString()+".wav")
	duration := float64(len(fields)) / s.wordsPerSecond

	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "lavfi",
		"-i", "anullsrc=r=44100:cl=stereo",
		"-t", strconv.FormatFloat(duration, 'f', 3, 64),
		"-c:a", "pcm_s16le",
		out,
	}
	if _, err := s.executor.Execute(ctx, s.ffmpeg, args...); err != nil {
		return timing.Segment{}, &SynthesisError{Provider: ProviderSilent, Err: fmt.Errorf("ffmpeg silence: %w", err)}
	}

	seg := timing.Segment{Kind: timing.KindPlain, AudioPath: out, Duration: duration}
	if req.WantTimings {
		seg.Words = evenTimings(fields, duration)
	}
	if req.SpeakerID != "" {
		seg.Kind = timing.KindDialogue
		seg.DialogueLines = []timing.DialogueLine{{SpeakerID: req.SpeakerID, Duration: duration}}
	}
	s.logger.Debug(ctx, "Generated %.2fs of silence for %d words", duration, len(fields))
	return seg, nil
}

// evenTimings splits duration into equal slots, one per word.
func evenTimings(fields []string, duration float64) []timing.WordTiming {
	slot := duration / float64(len(fields))
	out := make([]timing.WordTiming, len(fields))
	for i, f := range fields {
		out[i] = timing.WordTiming{Word: f, Start: float64(i) * slot, End: float64(i+1) * slot}
	}
	if len(out) > 0 {
		out[len(out)-1].End = duration
	}
	return out
}
