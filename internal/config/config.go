package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvGeminiAPIKeys overrides gemini.api_keys with a comma-separated list.
const EnvGeminiAPIKeys = "GEMINI_API_KEYS"

type Config struct {
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Synthesis   SynthesisConfig   `yaml:"synthesis"`
	Paths       PathsConfig       `yaml:"paths"`
	Video       VideoConfig       `yaml:"video"`
	Subtitles   SubtitlesConfig   `yaml:"subtitles"`
	Performance PerformanceConfig `yaml:"performance"`
	Transcript  TranscriptConfig  `yaml:"transcript"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type FFmpegConfig struct {
	Binary       string        `yaml:"binary"`
	ProbeBinary  string        `yaml:"probe_binary"`
	Encoder      string        `yaml:"encoder"`
	VideoBitrate string        `yaml:"video_bitrate"`
	AudioCodec   string        `yaml:"audio_codec"`
	Preset       string        `yaml:"preset"`
	CRF          int           `yaml:"crf"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// WhisperConfig enables word alignment of synthesized speech. Alignment is
// skipped when ModelPath is empty.
type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Language   string `yaml:"language"`
	Threads    int    `yaml:"threads"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	Voice   string   `yaml:"voice"`
	APIKeys []string `yaml:"api_keys"`
}

type SynthesisConfig struct {
	// Provider is used when a manifest does not name one.
	Provider string `yaml:"provider"`
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Archived string `yaml:"archived"`
	Temp     string `yaml:"temp"`
}

type VideoConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	FrameRate int `yaml:"frame_rate"`
}

type SubtitlesConfig struct {
	Font     string `yaml:"font"`
	Color    string `yaml:"color"`
	Position string `yaml:"position"`
	FontSize int    `yaml:"font_size"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
	MaxSynthesis  int `yaml:"max_synthesis"`
	MaxRenders    int `yaml:"max_renders"`
}

type TranscriptConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a YAML config file, applies environment overrides and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	raw := strings.TrimSpace(os.Getenv(EnvGeminiAPIKeys))
	if raw == "" {
		return
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) > 0 {
		c.Gemini.APIKeys = keys
	}
}

func (c *Config) Validate() error {
	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	if c.Whisper.ModelPath != "" && c.Whisper.BinaryPath == "" {
		return fmt.Errorf("whisper.binary_path is required when whisper.model_path is set")
	}
	if c.Video.Width < 0 || c.Video.Height < 0 || c.Video.FrameRate < 0 {
		return fmt.Errorf("video dimensions and frame_rate must not be negative")
	}
	if c.Subtitles.Color != "" && !isHexColor(c.Subtitles.Color) {
		return fmt.Errorf("subtitles.color must be #RRGGBB, got %q", c.Subtitles.Color)
	}

	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = "ffmpeg"
	}
	if c.FFmpeg.ProbeBinary == "" {
		c.FFmpeg.ProbeBinary = "ffprobe"
	}
	if c.FFmpeg.Encoder == "" {
		c.FFmpeg.Encoder = "libx264"
	}
	if c.FFmpeg.AudioCodec == "" {
		c.FFmpeg.AudioCodec = "aac"
	}
	if c.FFmpeg.Preset == "" {
		c.FFmpeg.Preset = "medium"
	}
	if c.FFmpeg.CRF == 0 {
		c.FFmpeg.CRF = 23
	}
	if c.FFmpeg.ProbeTimeout == 0 {
		c.FFmpeg.ProbeTimeout = 30 * time.Second
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "auto"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash-preview-tts"
	}
	if c.Gemini.Voice == "" {
		c.Gemini.Voice = "Kore"
	}
	if c.Synthesis.Provider == "" {
		c.Synthesis.Provider = "gemini"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Video.Width == 0 {
		c.Video.Width = 1080
	}
	if c.Video.Height == 0 {
		c.Video.Height = 1920
	}
	if c.Video.FrameRate == 0 {
		c.Video.FrameRate = 30
	}
	if c.Subtitles.Font == "" {
		c.Subtitles.Font = "Arial"
	}
	if c.Subtitles.Color == "" {
		c.Subtitles.Color = "#FFFFFF"
	}
	if c.Subtitles.Position == "" {
		c.Subtitles.Position = "bottom"
	}
	if c.Subtitles.FontSize == 0 {
		c.Subtitles.FontSize = 72
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Performance.MaxSynthesis == 0 {
		c.Performance.MaxSynthesis = 4
	}
	if c.Performance.MaxRenders == 0 {
		c.Performance.MaxRenders = 1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
