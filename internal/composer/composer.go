package composer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nguyentantai21042004/clipsmith/internal/cues"
	"github.com/nguyentantai21042004/clipsmith/internal/logger"
	"github.com/nguyentantai21042004/clipsmith/internal/narration"
	"github.com/nguyentantai21042004/clipsmith/internal/render"
	"github.com/nguyentantai21042004/clipsmith/internal/synth"
	"github.com/nguyentantai21042004/clipsmith/internal/timing"
	"github.com/nguyentantai21042004/clipsmith/internal/transcript"
)

// Process orchestrates one manifest from the input folder
func (c *implComposer) Process(ctx context.Context, manifestPath string) error {
	release, ok, err := c.claim(ctx, manifestPath)
	if err != nil {
		return fmt.Errorf("claim manifest: %w", err)
	}
	if !ok {
		c.logger.Info(ctx, "Manifest already claimed, skipping: %s", manifestPath)
		return nil
	}
	defer release()

	m, err := LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	res, err := c.Compose(ctx, m, newLogSink(ctx, c.logger))
	if err != nil {
		return err
	}

	if err := c.moveToArchived(ctx, manifestPath); err != nil {
		c.logger.Warn(ctx, "Failed to move manifest to archived folder: %v", err)
	}

	c.logger.Info(ctx, "Output video: %s", res.VideoPath)
	return nil
}

// Compose synthesizes, combines, captions and renders one job.
func (c *implComposer) Compose(ctx context.Context, m *Manifest, sink render.Sink) (Result, error) {
	startTime := time.Now()
	jobID := uuid.NewString()
	ctx = logger.WithJob(ctx, jobID)

	provider := m.Provider
	if provider == "" {
		provider = c.cfg.Synthesis.Provider
	}
	synthesizer, err := c.registry.Lookup(provider)
	if err != nil {
		return Result{}, err
	}

	c.logger.Info(ctx, "========================================")
	c.logger.Info(ctx, "Starting job %s (provider %s, %d lines)", jobID, provider, len(m.Lines))
	c.logger.Info(ctx, "========================================")

	if err := os.MkdirAll(c.cfg.Paths.Temp, 0755); err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	workDir, err := os.MkdirTemp(c.cfg.Paths.Temp, "job-*")
	if err != nil {
		return Result{}, fmt.Errorf("create job dir: %w", err)
	}
	defer c.removeWorkDir(ctx, workDir)

	// Step 1: Check the background before spending synthesis calls
	width, height := c.dimensions(m)
	if m.Background != "" {
		info, err := c.renderer.Probe(ctx, m.Background)
		if err != nil {
			return Result{}, fmt.Errorf("probe background: %w", err)
		}
		if !info.HasVideo {
			return Result{}, fmt.Errorf("%w: %s", ErrInvalidBackground, m.Background)
		}
		c.logger.Info(ctx, "Background %s: %dx%d, %.2fs", filepath.Base(m.Background), info.Width, info.Height, info.DurationSeconds)
	}

	// Step 2: Synthesize narration
	segments, err := c.synthesize(ctx, synthesizer, m, workDir)
	if err != nil {
		return Result{}, fmt.Errorf("synthesize: %w", err)
	}

	// Step 3: Combine into one timeline
	tl, err := narration.New(c.renderer, c.logger, workDir).Combine(ctx, segments)
	if err != nil {
		return Result{}, fmt.Errorf("combine narration: %w", err)
	}

	// Step 4: Write caption cues
	cuePath, err := c.writeCues(ctx, m, tl, workDir, width, height)
	if err != nil {
		return Result{}, fmt.Errorf("write cues: %w", err)
	}

	// Step 5: Render
	outputDir := m.OutputDir
	if outputDir == "" {
		outputDir = c.cfg.Paths.Output
	}
	videoPath, err := c.render(ctx, m, tl, cuePath, outputDir, width, height, sink)
	if err != nil {
		return Result{}, err
	}

	res := Result{JobID: jobID, VideoPath: videoPath, Duration: tl.TotalDuration}

	// Step 6: Transcript
	if c.cfg.Transcript.Enabled {
		docPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".docx"
		if err := transcript.Export(tl, transcriptTitle(m), docPath); err != nil {
			c.logger.Warn(ctx, "Failed to export transcript: %v", err)
		} else {
			res.TranscriptPath = docPath
		}
	}

	c.logger.Info(ctx, "========================================")
	c.logger.Info(ctx, "Job completed successfully!")
	c.logger.Info(ctx, "Video: %s (%.2fs)", res.VideoPath, res.Duration)
	c.logger.Info(ctx, "Processing time: %s", time.Since(startTime))
	c.logger.Info(ctx, "========================================")
	return res, nil
}

// synthesize generates every segment concurrently and returns them in
// manifest order. The title, when present, is spoken first.
func (c *implComposer) synthesize(ctx context.Context, s synth.Synthesizer, m *Manifest, workDir string) ([]timing.Segment, error) {
	reqs := make([]synth.Request, 0, len(m.Lines)+1)
	if title := strings.TrimSpace(m.Title); title != "" {
		reqs = append(reqs, synth.Request{Text: title, VoiceID: m.Voice, WantTimings: true, Dir: workDir})
	}
	for _, l := range m.Lines {
		voice := l.Voice
		if voice == "" {
			voice = m.Voice
		}
		reqs = append(reqs, synth.Request{
			Text:        l.Text,
			VoiceID:     voice,
			WantTimings: true,
			SpeakerID:   l.Speaker,
			Dir:         workDir,
		})
	}

	segments := make([]timing.Segment, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	limit := c.cfg.Performance.MaxSynthesis
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, req := range reqs {
		g.Go(func() error {
			seg, err := s.Generate(gctx, req)
			if err != nil {
				return fmt.Errorf("segment %d: %w", i+1, err)
			}
			segments[i] = seg
			c.logger.Debug(ctx, "Segment %d/%d ready (%.2fs)", i+1, len(reqs), seg.Duration)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(m.Title) != "" {
		segments[0].Kind = timing.KindTitled
		segments[0].TitleDuration = segments[0].Duration
	}
	return segments, nil
}

// writeCues writes the caption script into workDir. It returns "" when
// captions are disabled or there are no words to show.
func (c *implComposer) writeCues(ctx context.Context, m *Manifest, tl timing.Timeline, workDir string, width, height int) (string, error) {
	style := c.subtitleStyle(m, width, height)
	if (m.Subtitles != nil && m.Subtitles.Disabled) || len(tl.Words) == 0 {
		c.logger.Info(ctx, "Skipping captions")
		return "", nil
	}

	doc, err := cues.Generate(tl.Words, style)
	if err != nil {
		return "", err
	}

	path := filepath.Join(workDir, "cues-"+uuid.NewString()+".ass")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create cue file: %w", err)
	}
	if _, err := doc.WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write cue file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close cue file: %w", err)
	}

	c.logger.Debug(ctx, "Wrote %d cues: %s", len(doc.Cues), path)
	return path, nil
}

func (c *implComposer) subtitleStyle(m *Manifest, width, height int) cues.Style {
	sc := c.cfg.Subtitles
	style := cues.Style{
		Font:     sc.Font,
		Color:    sc.Color,
		Position: cues.Position(sc.Position),
		FontSize: sc.FontSize,
		PlayResX: width,
		PlayResY: height,
	}
	if o := m.Subtitles; o != nil {
		if o.Font != "" {
			style.Font = o.Font
		}
		if o.Color != "" {
			style.Color = o.Color
		}
		if o.Position != "" {
			style.Position = cues.Position(o.Position)
		}
		if o.FontSize > 0 {
			style.FontSize = o.FontSize
		}
	}
	return style
}

func (c *implComposer) dimensions(m *Manifest) (int, int) {
	width, height := c.cfg.Video.Width, c.cfg.Video.Height
	if m.Width > 0 {
		width = m.Width
	}
	if m.Height > 0 {
		height = m.Height
	}
	return width, height
}

func transcriptTitle(m *Manifest) string {
	if t := strings.TrimSpace(m.Title); t != "" {
		return t
	}
	return "Transcript"
}
