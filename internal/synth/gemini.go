package synth

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/nguyentantai21042004/clipsmith/internal/logger"
	"github.com/nguyentantai21042004/clipsmith/internal/timing"
	"github.com/nguyentantai21042004/clipsmith/pkg/executor"
)

const (
	// ProviderGemini is the registry key of the Gemini TTS backend.
	ProviderGemini = "gemini"

	defaultGeminiModel = "gemini-2.5-flash-preview-tts"
	defaultGeminiVoice = "Kore"
	defaultSampleRate  = 24000
)

// GeminiOptions configures the Gemini TTS backend.
type GeminiOptions struct {
	APIKeys      []string
	Model        string
	Voice        string
	FFmpegBinary string
}

// audioFunc performs one TTS request and returns raw 16-bit mono PCM.
type audioFunc func(ctx context.Context, apiKey, model, text, voice string) (pcm []byte, mimeType string, err error)

type implGemini struct {
	opts     GeminiOptions
	executor executor.Executor
	aligner  Aligner
	logger   logger.Logger
	generate audioFunc

	mu         sync.Mutex
	currentKey int
}

// NewGemini creates a Synthesizer backed by Gemini TTS. aligner may be nil,
// in which case segments carry no word timings.
func NewGemini(opts GeminiOptions, exec executor.Executor, aligner Aligner, log logger.Logger) (Synthesizer, error) {
	if len(opts.APIKeys) == 0 {
		return nil, errors.New("gemini: at least one API key is required")
	}
	if opts.Model == "" {
		opts.Model = defaultGeminiModel
	}
	if opts.Voice == "" {
		opts.Voice = defaultGeminiVoice
	}
	if opts.FFmpegBinary == "" {
		opts.FFmpegBinary = "ffmpeg"
	}
	return &implGemini{
		opts:     opts,
		executor: exec,
		aligner:  aligner,
		logger:   log,
		generate: genaiAudio,
	}, nil
}

func (g *implGemini) Generate(ctx context.Context, req Request) (timing.Segment, error) {
	seg, err := g.synthesize(ctx, req)
	if err != nil {
		return timing.Segment{}, &SynthesisError{Provider: ProviderGemini, Err: err}
	}
	return seg, nil
}

func (g *implGemini) synthesize(ctx context.Context, req Request) (timing.Segment, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return timing.Segment{}, errors.New("empty text")
	}
	voice := req.VoiceID
	if voice == "" {
		voice = g.opts.Voice
	}

	pcm, mimeType, err := g.callGemini(ctx, text, voice)
	if err != nil {
		return timing.Segment{}, err
	}
	rate := sampleRate(mimeType)

	wavPath, err := g.writeWAV(ctx, req.Dir, pcm, rate)
	if err != nil {
		return timing.Segment{}, err
	}

	seg := timing.Segment{
		Kind:      timing.KindPlain,
		AudioPath: wavPath,
		Duration:  float64(len(pcm)) / float64(rate*2),
	}

	if req.WantTimings && g.aligner != nil {
		words, err := g.aligner.Align(ctx, wavPath)
		if err != nil {
			g.cleanupTempFile(ctx, wavPath)
			return timing.Segment{}, fmt.Errorf("align words: %w", err)
		}
		seg.Words = timing.ClampToDuration(words, seg.Duration)
	}

	if req.SpeakerID != "" {
		seg.Kind = timing.KindDialogue
		seg.DialogueLines = []timing.DialogueLine{{SpeakerID: req.SpeakerID, Duration: seg.Duration}}
	}

	g.logger.Debug(ctx, "Synthesized %.2fs with voice %s: %s", seg.Duration, voice, wavPath)
	return seg, nil
}

// callGemini requests speech audio, rotating API keys on 429 / quota errors.
func (g *implGemini) callGemini(ctx context.Context, text, voice string) ([]byte, string, error) {
	attempts := len(g.opts.APIKeys)
	var lastErr error

	for range attempts {
		idx, key := g.key()
		pcm, mimeType, err := g.generate(ctx, key, g.opts.Model, text, voice)
		if err != nil {
			if isQuotaError(err) {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				g.rotateKey(idx)
				lastErr = err
				continue
			}
			return nil, "", fmt.Errorf("generate speech: %w", err)
		}
		if len(pcm) == 0 {
			return nil, "", errors.New("empty audio response from Gemini")
		}
		return pcm, mimeType, nil
	}

	return nil, "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *implGemini) key() (int, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentKey, g.opts.APIKeys[g.currentKey]
}

// rotateKey advances past idx unless another caller already did.
func (g *implGemini) rotateKey(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == idx {
		g.currentKey = (g.currentKey + 1) % len(g.opts.APIKeys)
	}
}

// writeWAV stores raw PCM next to the job and converts it to a WAV file.
func (g *implGemini) writeWAV(ctx context.Context, dir string, pcm []byte, rate int) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	base := filepath.Join(dir, "tts-"+uuid.NewString())
	pcmPath := base + ".pcm"
	wavPath := base + ".wav"

	if err := os.WriteFile(pcmPath, pcm, 0644); err != nil {
		return "", fmt.Errorf("write pcm: %w", err)
	}
	defer g.cleanupTempFile(ctx, pcmPath)

	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "s16le",
		"-ar", strconv.Itoa(rate),
		"-ac", "1",
		"-i", pcmPath,
		"-c:a", "pcm_s16le",
		wavPath,
	}
	if _, err := g.executor.Execute(ctx, g.opts.FFmpegBinary, args...); err != nil {
		g.cleanupTempFile(ctx, wavPath)
		return "", fmt.Errorf("ffmpeg pcm to wav: %w", err)
	}
	return wavPath, nil
}

func (g *implGemini) cleanupTempFile(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		g.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", path, err)
	}
}

func genaiAudio(ctx context.Context, apiKey, model, text, voice string) ([]byte, string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, "", fmt.Errorf("create client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(text), cfg)
	if err != nil {
		return nil, "", err
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, "", errors.New("empty response from Gemini")
	}

	var pcm []byte
	var mimeType string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			pcm = append(pcm, part.InlineData.Data...)
			mimeType = part.InlineData.MIMEType
		}
	}
	return pcm, mimeType, nil
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// sampleRate reads the rate parameter of an "audio/L16;rate=24000" type.
func sampleRate(mimeType string) int {
	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return defaultSampleRate
	}
	rate, err := strconv.Atoi(params["rate"])
	if err != nil || rate <= 0 {
		return defaultSampleRate
	}
	return rate
}
