package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/clipsmith/internal/composer"
	"github.com/nguyentantai21042004/clipsmith/internal/config"
	"github.com/nguyentantai21042004/clipsmith/internal/logger"
	"github.com/nguyentantai21042004/clipsmith/internal/render"
	"github.com/nguyentantai21042004/clipsmith/internal/synth"
	"github.com/nguyentantai21042004/clipsmith/pkg/executor"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("failed to load config: %w", err)
			return
		}
		if err := ensureDirectories(cfg); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// services is the wired object graph shared by the commands.
type services struct {
	cfg      *config.Config
	logger   logger.Logger
	renderer render.Renderer
	composer composer.Composer
}

func (c *commandContext) services(ctx context.Context) (*services, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	exec := executor.New()
	renderer := render.New(exec, log, render.Options{
		FFmpegBinary: cfg.FFmpeg.Binary,
		ProbeBinary:  cfg.FFmpeg.ProbeBinary,
		ProbeTimeout: cfg.FFmpeg.ProbeTimeout,
	})

	registry, err := newRegistry(ctx, cfg, exec, log)
	if err != nil {
		return nil, err
	}

	return &services{
		cfg:      cfg,
		logger:   log,
		renderer: renderer,
		composer: composer.New(cfg, registry, renderer, log),
	}, nil
}

// newRegistry registers every synthesizer the config can support. The
// silent provider needs no credentials and is always available.
func newRegistry(ctx context.Context, cfg *config.Config, exec executor.Executor, log logger.Logger) (*synth.Registry, error) {
	registry := synth.NewRegistry()
	registry.Register(synth.ProviderSilent, synth.NewSilent(cfg.FFmpeg.Binary, exec, log))

	var aligner synth.Aligner
	if cfg.Whisper.ModelPath != "" {
		a, err := synth.NewWhisperAligner(synth.WhisperOptions{
			BinaryPath:   cfg.Whisper.BinaryPath,
			ModelPath:    cfg.Whisper.ModelPath,
			Language:     cfg.Whisper.Language,
			Threads:      cfg.Whisper.Threads,
			FFmpegBinary: cfg.FFmpeg.Binary,
		}, exec, log)
		if err != nil {
			return nil, fmt.Errorf("create aligner: %w", err)
		}
		aligner = a
	} else {
		log.Warn(ctx, "whisper.model_path not set; narration will have no word timings")
	}

	if len(cfg.Gemini.APIKeys) > 0 {
		g, err := synth.NewGemini(synth.GeminiOptions{
			APIKeys:      cfg.Gemini.APIKeys,
			Model:        cfg.Gemini.Model,
			Voice:        cfg.Gemini.Voice,
			FFmpegBinary: cfg.FFmpeg.Binary,
		}, exec, aligner, log)
		if err != nil {
			return nil, fmt.Errorf("create gemini synthesizer: %w", err)
		}
		registry.Register(synth.ProviderGemini, g)
	}

	return registry, nil
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.Archived,
		cfg.Paths.Temp,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
