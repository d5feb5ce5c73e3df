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

// WhisperOptions configures the whisper.cpp word aligner.
type WhisperOptions struct {
	BinaryPath   string
	ModelPath    string
	Language     string
	Threads      int
	FFmpegBinary string
}

type implWhisper struct {
	opts     WhisperOptions
	executor executor.Executor
	logger   logger.Logger
}

// NewWhisperAligner creates an Aligner that transcribes audio with
// whisper.cpp, one word per cue.
func NewWhisperAligner(opts WhisperOptions, exec executor.Executor, log logger.Logger) (Aligner, error) {
	if opts.BinaryPath == "" || opts.ModelPath == "" {
		return nil, errors.New("whisper: binary and model paths are required")
	}
	if opts.Language == "" {
		opts.Language = "auto"
	}
	if opts.Threads <= 0 {
		opts.Threads = 4
	}
	if opts.FFmpegBinary == "" {
		opts.FFmpegBinary = "ffmpeg"
	}
	return &implWhisper{opts: opts, executor: exec, logger: log}, nil
}

func (w *implWhisper) Align(ctx context.Context, audioPath string) ([]timing.WordTiming, error) {
	monoPath, err := w.downmix(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	defer w.cleanupTempFile(ctx, monoPath)

	srtPath, err := w.transcribe(ctx, monoPath)
	if err != nil {
		return nil, err
	}
	defer w.cleanupTempFile(ctx, srtPath)

	words, err := ParseSRTFile(srtPath)
	if err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}
	w.logger.Debug(ctx, "Aligned %d words: %s", len(words), audioPath)
	return words, nil
}

// downmix converts audio to 16kHz mono WAV, the input whisper expects.
func (w *implWhisper) downmix(ctx context.Context, audioPath string) (string, error) {
	out := filepath.Join(filepath.Dir(audioPath), "align-"+uuid.NewString()+".wav")
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", audioPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		out,
	}
	if _, err := w.executor.Execute(ctx, w.opts.FFmpegBinary, args...); err != nil {
		return "", fmt.Errorf("ffmpeg downmix: %w", err)
	}
	return out, nil
}

// transcribe runs whisper with one word per segment and returns the SRT path.
//
// -ml 1 with -sow limits each segment to a single word.
func (w *implWhisper) transcribe(ctx context.Context, audioPath string) (string, error) {
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	args := []string{
		"-m", w.opts.ModelPath,
		"-f", audioPath,
		"-osrt",
		"-l", w.opts.Language,
		"-t", strconv.Itoa(w.opts.Threads),
		"-ml", "1",
		"-sow",
		"--output-file", outputPrefix,
	}
	if _, err := w.executor.Execute(ctx, w.opts.BinaryPath, args...); err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}
	return outputPrefix + ".srt", nil
}

func (w *implWhisper) cleanupTempFile(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		w.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", path, err)
	}
}
