package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

type probeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

// Probe inspects path with ffprobe under the configured timeout.
func (r *implRenderer) Probe(ctx context.Context, path string) (MediaInfo, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return MediaInfo{}, errors.New("probe: empty path")
	}

	probeCtx, cancel := context.WithTimeout(ctx, r.opts.ProbeTimeout)
	defer cancel()

	out, err := r.executor.Execute(probeCtx, r.opts.ProbeBinary,
		"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		if errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
			return MediaInfo{}, fmt.Errorf("probe %s: timed out after %s: %w", path, r.opts.ProbeTimeout, context.DeadlineExceeded)
		}
		return MediaInfo{}, fmt.Errorf("probe %s: %w", path, err)
	}

	info, err := parseProbe([]byte(out))
	if err != nil {
		return MediaInfo{}, fmt.Errorf("probe %s: %w", path, err)
	}
	return info, nil
}

func parseProbe(data []byte) (MediaInfo, error) {
	var res probeResult
	if err := json.Unmarshal(data, &res); err != nil {
		return MediaInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := MediaInfo{
		DurationSeconds: parseSeconds(res.Format.Duration),
		SizeBytes:       int64(parseSeconds(res.Format.Size)),
	}
	for _, s := range res.Streams {
		switch strings.ToLower(s.CodecType) {
		case "video":
			if !info.HasVideo {
				info.Width, info.Height = s.Width, s.Height
			}
			info.HasVideo = true
		case "audio":
			info.HasAudio = true
		}
		if info.DurationSeconds == 0 {
			info.DurationSeconds = parseSeconds(s.Duration)
		}
	}
	return info, nil
}

// parseSeconds reads ffprobe's numeric strings; "N/A" and garbage become 0.
func parseSeconds(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || f < 0 {
		return 0
	}
	return f
}
