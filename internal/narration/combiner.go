package narration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/clipsmith/internal/timing"
)

func (c *implCombiner) Combine(ctx context.Context, segments []timing.Segment) (timing.Timeline, error) {
	if len(segments) == 0 {
		return timing.Timeline{}, ErrEmptyInput
	}
	defer c.removeSegments(ctx, segments)

	tl := Layout(segments)

	inputs := make([]string, len(segments))
	for i, s := range segments {
		inputs[i] = s.AudioPath
	}

	output := filepath.Join(c.workDir, fmt.Sprintf("narration-%s.wav", uuid.NewString()))
	c.logger.Info(ctx, "Combining %d narration segments (%.2fs)", len(segments), tl.TotalDuration)

	if err := c.concat.ConcatAudio(ctx, inputs, output); err != nil {
		c.cleanupTempFile(ctx, output)
		return timing.Timeline{}, &ConcatenationFailedError{Cause: err}
	}
	if _, err := os.Stat(output); err != nil {
		return timing.Timeline{}, &ConcatenationFailedError{Cause: fmt.Errorf("combined audio missing: %w", err)}
	}

	tl.AudioPath = output
	return tl, nil
}

// Layout computes the combined timing of segments without touching audio.
// Segment i is offset by the summed durations of segments 0..i-1 and the
// total is the sum of declared durations.
func Layout(segments []timing.Segment) timing.Timeline {
	tl := timing.Timeline{Words: []timing.WordTiming{}}
	if len(segments) > 0 && segments[0].Kind == timing.KindTitled {
		tl.TitleDuration = segments[0].TitleDuration
	}

	offset := 0.0
	for _, s := range segments {
		tl.Words = append(tl.Words, timing.Shift(s.Words, offset)...)
		if s.Kind == timing.KindDialogue {
			tl.DialogueLines = append(tl.DialogueLines, dialogueLines(s, offset)...)
		}
		offset += s.Duration
	}
	tl.TotalDuration = offset
	return tl
}

// dialogueLines returns the segment's speaker lines on the combined clock.
// A dialogue segment without explicit lines counts as one line spanning it.
func dialogueLines(s timing.Segment, offset float64) []timing.DialogueLine {
	if len(s.DialogueLines) == 0 {
		return []timing.DialogueLine{{Start: offset, Duration: s.Duration}}
	}
	return timing.ShiftLines(s.DialogueLines, offset)
}

func (c *implCombiner) removeSegments(ctx context.Context, segments []timing.Segment) {
	for _, s := range segments {
		if s.AudioPath != "" {
			c.cleanupTempFile(ctx, s.AudioPath)
		}
	}
}

// cleanupTempFile removes a temporary file, logs warning if fails
func (c *implCombiner) cleanupTempFile(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", path, err)
		}
		return
	}
	c.logger.Debug(ctx, "Cleaned up temp file: %s", path)
}
