package composer

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/clipsmith/internal/filtergraph"
	"github.com/nguyentantai21042004/clipsmith/internal/render"
	"github.com/nguyentantai21042004/clipsmith/internal/timing"
)

const softwareEncoder = "libx264"

// render builds the graph and runs it under the render semaphore. A
// hardware encoder that fails is retried once with the software encoder.
func (c *implComposer) render(ctx context.Context, m *Manifest, tl timing.Timeline, cuePath, outputDir string, width, height int, sink render.Sink) (string, error) {
	if err := c.renders.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("wait for render slot: %w", err)
	}
	defer c.renders.Release(1)

	encoders := []string{c.cfg.FFmpeg.Encoder}
	if !filtergraph.IsSoftwareCodec(c.cfg.FFmpeg.Encoder) {
		encoders = append(encoders, softwareEncoder)
	}

	var lastErr error
	for i, encoder := range encoders {
		last := i == len(encoders)-1
		// Inputs are only handed to the renderer for removal on the final
		// attempt; earlier attempts need them again.
		plan, err := c.buildPlan(m, tl, cuePath, outputDir, width, height, encoder, last)
		if err != nil {
			return "", fmt.Errorf("build filter graph: %w", err)
		}

		c.logger.Info(ctx, "Rendering %.2fs with %s: %s", tl.TotalDuration, encoder, plan.OutputPath)
		out, err := c.renderer.Execute(ctx, plan, sink)
		if err == nil {
			return out, nil
		}
		lastErr = err

		var failed *render.ProcessFailedError
		if last || ctx.Err() != nil || !errors.As(err, &failed) {
			break
		}
		c.logger.Warn(ctx, "Encoder %s failed (exit %d), trying software encoder...", encoder, failed.ExitCode)
	}
	return "", fmt.Errorf("render: %w", lastErr)
}

func (c *implComposer) buildPlan(m *Manifest, tl timing.Timeline, cuePath, outputDir string, width, height int, encoder string, track bool) (*filtergraph.CommandPlan, error) {
	ff := c.cfg.FFmpeg
	b := filtergraph.New(filtergraph.Options{
		Binary:       ff.Binary,
		Width:        width,
		Height:       height,
		FrameRate:    c.cfg.Video.FrameRate,
		VideoCodec:   encoder,
		VideoBitrate: ff.VideoBitrate,
		Preset:       ff.Preset,
		CRF:          ff.CRF,
		AudioCodec:   ff.AudioCodec,
	})

	if m.Background != "" {
		b.WithBackground(m.Background, width, height)
	}
	if m.TitleImage != "" {
		b.WithOverlay(m.TitleImage, overlayWindow(tl.TitleDuration, tl.TotalDuration), true)
	}
	for _, o := range m.Overlays {
		b.WithOverlay(o.Image, overlayWindow(o.Duration, tl.TotalDuration), o.ScaleToFit)
	}
	b.WithNarration(tl.AudioPath)
	if cuePath != "" {
		b.WithSubtitles(cuePath)
	}
	b.WithOutputDuration(tl.TotalDuration)
	if track {
		b.Track(tl.AudioPath, cuePath)
	}
	return b.Build(outputDir)
}

// overlayWindow maps an unset manifest duration to the whole output.
func overlayWindow(d, total float64) float64 {
	if d > 0 {
		return d
	}
	return total
}
