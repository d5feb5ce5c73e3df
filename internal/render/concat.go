package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ConcatAudio joins inputs with the concat filter. Output is re-encoded to
// PCM WAV so inputs of different formats and rates can be mixed.
func (r *implRenderer) ConcatAudio(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return errors.New("concat audio: no inputs")
	}
	if strings.TrimSpace(output) == "" {
		return errors.New("concat audio: empty output path")
	}

	args := []string{"-hide_banner", "-nostats", "-loglevel", "error", "-y"}
	var labels strings.Builder
	for i, in := range inputs {
		args = append(args, "-i", in)
		fmt.Fprintf(&labels, "[%d:a]", i)
	}
	graph := fmt.Sprintf("%sconcat=n=%d:v=0:a=1[a]", labels.String(), len(inputs))
	args = append(args,
		"-filter_complex", graph,
		"-map", "[a]",
		"-c:a", "pcm_s16le",
		"-ar", "44100",
		"-ac", "2",
		output,
	)

	r.logger.Debug(ctx, "Concatenating %d audio segments into %s", len(inputs), output)
	if _, err := r.executor.Execute(ctx, r.opts.FFmpegBinary, args...); err != nil {
		return fmt.Errorf("ffmpeg concat audio: %w", err)
	}
	return nil
}
