package cues

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/clipsmith/internal/timing"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00:00.00"},
		{3661.256, "1:01:01.25"},
		{0.29, "0:00:00.29"},
		{59.999, "0:00:59.99"},
		{61.5, "0:01:01.50"},
		{-3, "0:00:00.00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatTimestamp(tt.seconds); got != tt.want {
				t.Errorf("FormatTimestamp(%v) = %v, want %v", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestConvertColor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"reversed channels", "#112233", "&H00332211"},
		{"lower case", "#a1b2c3", "&H00C3B2A1"},
		{"no hash", "FF0000", "&H000000FF"},
		{"empty falls back to white", "", defaultColor},
		{"short falls back to white", "#FFF", defaultColor},
		{"not hex falls back to white", "#GGHHII", defaultColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConvertColor(tt.in); got != tt.want {
				t.Errorf("ConvertColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAlignmentCode(t *testing.T) {
	tests := []struct {
		in   Position
		want int
	}{
		{PositionTop, 8},
		{PositionCenter, 5},
		{PositionBottom, 2},
		{"TOP", 8},
		{"sideways", 2},
		{"", 2},
	}

	for _, tt := range tests {
		if got := AlignmentCode(tt.in); got != tt.want {
			t.Errorf("AlignmentCode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGenerate(t *testing.T) {
	words := []timing.WordTiming{
		{Word: "hello", Start: 0, End: 0.5},
		{Word: "there", Start: 0.5, End: 1.1},
	}

	doc, err := Generate(words, Style{Font: "Montserrat", Color: "#112233", Position: PositionTop})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(doc.Cues) != 2 {
		t.Fatalf("len(Cues) = %d, want 2", len(doc.Cues))
	}
	if doc.Cues[1].Text != "there" || doc.Cues[1].Start != 0.5 {
		t.Errorf("Cues[1] = %+v", doc.Cues[1])
	}
	if doc.Color != "&H00332211" {
		t.Errorf("Color = %v, want &H00332211", doc.Color)
	}
	if doc.Alignment != 8 {
		t.Errorf("Alignment = %v, want 8", doc.Alignment)
	}
	if doc.FontSize != defaultFontSize || doc.PlayResX != defaultPlayResX || doc.PlayResY != defaultPlayResY {
		t.Errorf("defaults not applied: %+v", doc)
	}
}

func TestGenerateEmptyFont(t *testing.T) {
	_, err := Generate(nil, Style{Font: "  ", Color: "#FFFFFF"})
	if !errors.Is(err, ErrEmptyStyle) {
		t.Errorf("Generate() error = %v, want ErrEmptyStyle", err)
	}
}

func TestGenerateEmptyWords(t *testing.T) {
	doc, err := Generate(nil, Style{Font: "Arial"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(doc.Cues) != 0 {
		t.Errorf("len(Cues) = %d, want 0", len(doc.Cues))
	}
}

func TestWriteTo(t *testing.T) {
	doc, err := Generate([]timing.WordTiming{
		{Word: "{bold}", Start: 1, End: 2.345},
		{Word: "next", Start: 3661.256, End: 3662},
	}, Style{Font: "Arial", Color: "#00FF00", FontSize: 60, PlayResX: 720, PlayResY: 1280})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var buf bytes.Buffer
	n, err := doc.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo() n = %d, want %d", n, buf.Len())
	}

	out := buf.String()
	for _, want := range []string{
		"PlayResX: 720",
		"PlayResY: 1280",
		"Style: Default,Arial,60,&H0000FF00,",
		"Dialogue: 0,0:00:01.00,0:00:02.34,Default,,0,0,0,,(bold)",
		"Dialogue: 0,1:01:01.25,1:01:02.00,Default,,0,0,0,,next",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}

	first := strings.Index(out, "(bold)")
	second := strings.Index(out, ",next")
	if first > second {
		t.Error("cues not written in input order")
	}
}
