package cues

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/clipsmith/internal/timing"
)

const (
	defaultColor    = "&H00FFFFFF"
	defaultFontSize = 72
	defaultPlayResX = 1080
	defaultPlayResY = 1920
)

// ASS numpad alignment codes, horizontally centered.
var alignments = map[Position]int{
	PositionBottom: 2,
	PositionCenter: 5,
	PositionTop:    8,
}

func generate(words []timing.WordTiming, style Style) (Document, error) {
	font := strings.TrimSpace(style.Font)
	if font == "" {
		return Document{}, ErrEmptyStyle
	}

	doc := Document{
		Font:      font,
		Color:     ConvertColor(style.Color),
		Alignment: AlignmentCode(style.Position),
		FontSize:  positiveOr(style.FontSize, defaultFontSize),
		PlayResX:  positiveOr(style.PlayResX, defaultPlayResX),
		PlayResY:  positiveOr(style.PlayResY, defaultPlayResY),
		Cues:      make([]Cue, 0, len(words)),
	}
	for _, w := range words {
		doc.Cues = append(doc.Cues, Cue{Start: w.Start, End: w.End, Text: w.Word})
	}
	return doc, nil
}

// AlignmentCode maps a position to its ASS alignment; unknown values fall back
// to bottom.
func AlignmentCode(p Position) int {
	if code, ok := alignments[Position(strings.ToLower(strings.TrimSpace(string(p))))]; ok {
		return code
	}
	return alignments[PositionBottom]
}

// ConvertColor turns #RRGGBB into ASS &H00BBGGRR. Malformed input yields white.
func ConvertColor(hex string) string {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return defaultColor
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return defaultColor
	}
	hex = strings.ToUpper(hex)
	return "&H00" + hex[4:6] + hex[2:4] + hex[0:2]
}

// FormatTimestamp renders seconds as H:MM:SS.cc, truncating to centiseconds.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	// the epsilon absorbs binary representation error (0.29*100 = 28.999...)
	cs := int64(math.Floor(seconds*100 + 1e-6))
	h := cs / 360000
	m := (cs / 6000) % 60
	s := (cs / 100) % 60
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs%100)
}

// WriteTo writes the document as an Advanced SubStation Alpha script.
func (d Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}

	fmt.Fprintf(cw, "[Script Info]\nScriptType: v4.00+\nPlayResX: %d\nPlayResY: %d\nWrapStyle: 2\nScaledBorderAndShadow: yes\n\n", d.PlayResX, d.PlayResY)

	fmt.Fprint(cw, "[V4+ Styles]\n")
	fmt.Fprint(cw, "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(cw, "Style: Default,%s,%d,%s,%s,&H00000000,&H80000000,-1,0,0,0,100,100,0,0,1,4,2,%d,40,40,%d,1\n\n",
		d.Font, d.FontSize, d.Color, d.Color, d.Alignment, d.PlayResY/10)

	fmt.Fprint(cw, "[Events]\n")
	fmt.Fprint(cw, "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, c := range d.Cues {
		fmt.Fprintf(cw, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n", FormatTimestamp(c.Start), FormatTimestamp(c.End), escapeText(c.Text))
	}

	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

// escapeText keeps caption text from being read as override tags.
func escapeText(s string) string {
	r := strings.NewReplacer("{", "(", "}", ")", "\r\n", `\N`, "\n", `\N`)
	return r.Replace(strings.TrimSpace(s))
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
