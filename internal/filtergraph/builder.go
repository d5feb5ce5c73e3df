package filtergraph

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	tagBackground = "bg"
	tagSubtitled  = "sub"
)

// Options are the encode settings and default canvas of a Builder.
type Options struct {
	Binary       string
	Width        int
	Height       int
	FrameRate    int
	VideoCodec   string
	VideoBitrate string
	Preset       string
	CRF          int
	AudioCodec   string
}

// Builder assembles a linear filter chain: one base layer, any number of
// overlays, then an optional subtitle burn. Errors are sticky; the first one
// is returned by Err and Build.
type Builder struct {
	opts       Options
	width      int
	height     int
	inputs     []input
	frags      []fragment
	tag        string
	audioIndex int
	duration   float64
	subDir     string
	subtitled  bool
	overlays   int
	temps      []string
	err        error
}

// New creates a Builder. Width and height from opts are the canvas used
// until WithBackground replaces them.
func New(opts Options) *Builder {
	if opts.Binary == "" {
		opts.Binary = "ffmpeg"
	}
	if opts.Width <= 0 {
		opts.Width = 1080
	}
	if opts.Height <= 0 {
		opts.Height = 1920
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = 30
	}
	if opts.VideoCodec == "" {
		opts.VideoCodec = "libx264"
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = "aac"
	}
	if opts.CRF <= 0 {
		opts.CRF = 23
	}
	return &Builder{
		opts:       opts,
		width:      even(opts.Width),
		height:     even(opts.Height),
		audioIndex: -1,
	}
}

// Err returns the first error recorded by a builder method.
func (b *Builder) Err() error {
	return b.err
}

// Tag returns the label of the most recent video stream, or "" if none.
func (b *Builder) Tag() string {
	return b.tag
}

// Fragments returns the filter chains in call order.
func (b *Builder) Fragments() []string {
	out := make([]string, len(b.frags))
	for i, f := range b.frags {
		out[i] = f.String()
	}
	return out
}

// WithBackground scales and crops the source to exactly width x height.
// It must be the first visual operation.
func (b *Builder) WithBackground(path string, width, height int) *Builder {
	if b.err != nil {
		return b
	}
	if b.tag != "" {
		return b.fail("background after video stream %q", b.tag)
	}
	if width > 0 && height > 0 {
		b.width, b.height = even(width), even(height)
	}
	b.addBase(path)
	return b
}

// WithNarration records the audio input. It does not touch the video chain.
func (b *Builder) WithNarration(path string) *Builder {
	if b.err != nil {
		return b
	}
	if b.audioIndex >= 0 {
		return b.fail("narration already set")
	}
	b.audioIndex = b.addInput(path, nil)
	return b
}

// WithOverlay composites an image over the current stream, visible for
// t in [0, visibleDuration]. Negative durations count as 0. Without a
// background the image becomes the base layer.
func (b *Builder) WithOverlay(imagePath string, visibleDuration float64, scaleToFit bool) *Builder {
	if b.err != nil {
		return b
	}
	if b.subtitled {
		return b.fail("overlay after subtitles")
	}
	if b.tag == "" {
		b.addBase(imagePath)
		return b
	}

	b.overlays++
	idx := b.addInput(imagePath, loopOpts(imagePath))
	src := fmt.Sprintf("[%d:v]", idx)
	if scaleToFit {
		scaled := fmt.Sprintf("ov%d", b.overlays)
		b.frags = append(b.frags, fragment{
			body: fmt.Sprintf("%sscale=%d:-2", src, b.width),
			out:  scaled,
		})
		src = "[" + scaled + "]"
	}

	body := fmt.Sprintf("[%s]%soverlay=(W-w)/2:(H-h)/2:enable='between(t,0,%s)'",
		b.tag, src, seconds(max(visibleDuration, 0)))
	out := fmt.Sprintf("v%d", b.overlays)
	b.frags = append(b.frags, fragment{body: body, out: out})
	b.tag = out
	return b
}

// WithSubtitles burns the cue file into the current stream by extending the
// last chain, so no unused label is left in the graph. It must be the last
// visual operation. The cue file is not tracked; pass it to Track when the
// renderer should remove it.
func (b *Builder) WithSubtitles(cuePath string) *Builder {
	if b.err != nil {
		return b
	}
	if b.tag == "" || len(b.frags) == 0 {
		return b.fail("subtitles before any video stream")
	}
	if b.subtitled {
		return b.fail("subtitles already applied")
	}

	abs, err := filepath.Abs(cuePath)
	if err != nil {
		return b.fail("resolve cue path: %v", err)
	}
	b.subDir = filepath.Dir(abs)

	last := &b.frags[len(b.frags)-1]
	last.body += ",subtitles=" + quoteFilterValue(filepath.Base(abs))
	last.out = tagSubtitled
	b.tag = tagSubtitled
	b.subtitled = true
	return b
}

// WithOutputDuration sets the trim length. Calling it again replaces the value.
func (b *Builder) WithOutputDuration(seconds float64) *Builder {
	b.duration = seconds
	return b
}

// Track hands files to the plan so the renderer removes them when it ends.
func (b *Builder) Track(paths ...string) *Builder {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		b.temps = append(b.temps, p)
	}
	return b
}

// Build validates the graph and returns the renderer command. The output
// file gets a unique name inside outputDir.
func (b *Builder) Build(outputDir string) (*CommandPlan, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.tag == "" {
		return nil, fmt.Errorf("%w: no video stream", ErrIllegalOrder)
	}
	if b.audioIndex < 0 && b.duration <= 0 {
		return nil, ErrNoDuration
	}

	dir, err := prepareOutputDir(outputDir)
	if err != nil {
		return nil, err
	}
	output := filepath.Join(dir, "short-"+uuid.NewString()+".mp4")

	inputs := append([]input(nil), b.inputs...)
	audioIndex := b.audioIndex
	if audioIndex < 0 {
		// every output carries an audio stream
		inputs = append(inputs, input{
			opts: []string{"-f", "lavfi"},
			path: "anullsrc=channel_layout=stereo:sample_rate=44100",
		})
		audioIndex = len(inputs) - 1
	}

	args := []string{"-hide_banner", "-y"}
	for _, in := range inputs {
		args = append(args, in.opts...)
		path := in.path
		if in.file {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
		}
		args = append(args, "-i", path)
	}

	graph := b.graph()
	args = append(args,
		"-filter_complex", graph,
		"-map", "["+b.tag+"]",
		"-map", fmt.Sprintf("%d:a:0", audioIndex),
	)
	args = append(args, b.encodeArgs()...)
	if b.duration > 0 {
		args = append(args, "-t", seconds(b.duration))
	}
	args = append(args, "-shortest", output)

	return &CommandPlan{
		Binary:         b.opts.Binary,
		Args:           args,
		Dir:            b.subDir,
		OutputPath:     output,
		FilterGraph:    graph,
		TargetDuration: b.duration,
		TempFiles:      append([]string(nil), b.temps...),
	}, nil
}

func (b *Builder) graph() string {
	parts := make([]string, len(b.frags))
	for i, f := range b.frags {
		parts[i] = f.String()
	}
	return strings.Join(parts, ";")
}

func (b *Builder) encodeArgs() []string {
	o := b.opts
	args := []string{"-c:v", o.VideoCodec}
	if o.VideoBitrate != "" {
		args = append(args, "-b:v", o.VideoBitrate)
	} else if IsSoftwareCodec(o.VideoCodec) {
		args = append(args, "-crf", strconv.Itoa(o.CRF))
	}
	if o.Preset != "" && IsSoftwareCodec(o.VideoCodec) {
		args = append(args, "-preset", o.Preset)
	}
	args = append(args,
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(o.FrameRate),
		"-c:a", o.AudioCodec,
	)
	if o.AudioCodec != "copy" {
		args = append(args, "-b:a", "192k", "-ar", "44100")
	}
	return append(args, "-movflags", "+faststart")
}

func (b *Builder) addBase(path string) {
	idx := b.addInput(path, loopOpts(path))
	b.frags = append(b.frags, fragment{
		body: fmt.Sprintf("[%d:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1,fps=%d",
			idx, b.width, b.height, b.width, b.height, b.opts.FrameRate),
		out: tagBackground,
	})
	b.tag = tagBackground
}

func (b *Builder) addInput(path string, opts []string) int {
	b.inputs = append(b.inputs, input{opts: opts, path: path, file: true})
	return len(b.inputs) - 1
}

func (b *Builder) fail(format string, args ...any) *Builder {
	b.err = fmt.Errorf("%w: %s", ErrIllegalOrder, fmt.Sprintf(format, args...))
	return b
}

func prepareOutputDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidOutputDir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidOutputDir, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidOutputDir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidOutputDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidOutputDir, abs)
	}
	return abs, nil
}

// loopOpts makes still images behave as endless video inputs; videos loop
// too so a short clip can back a longer narration.
func loopOpts(path string) []string {
	if IsImage(path) {
		return []string{"-loop", "1"}
	}
	return []string{"-stream_loop", "-1"}
}

// IsImage reports whether the path looks like a still image.
func IsImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".bmp":
		return true
	}
	return false
}

// IsSoftwareCodec reports whether codec is a CPU encoder that takes -crf and -preset.
func IsSoftwareCodec(codec string) bool {
	switch codec {
	case "libx264", "libx265":
		return true
	}
	return false
}

func quoteFilterValue(v string) string {
	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func even(v int) int {
	return v - v%2
}
