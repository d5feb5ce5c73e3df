package cues

import (
	"errors"

	"github.com/nguyentantai21042004/clipsmith/internal/timing"
)

// ErrEmptyStyle is returned when a style has no font name.
var ErrEmptyStyle = errors.New("cues: style font is required")

// Position is where captions sit on screen.
type Position string

const (
	PositionTop    Position = "top"
	PositionCenter Position = "center"
	PositionBottom Position = "bottom"
)

// Style describes how captions are drawn. Only Font is required.
type Style struct {
	Font     string
	Color    string // #RRGGBB
	Position Position
	FontSize int
	// PlayResX/PlayResY are the script canvas; they should match the output.
	PlayResX int
	PlayResY int
}

// Cue is one timed caption.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

// Document is a styled cue list ready to be written as an ASS script.
type Document struct {
	Font      string
	Color     string // ASS &HAABBGGRR
	Alignment int
	FontSize  int
	PlayResX  int
	PlayResY  int
	Cues      []Cue
}

// Generate converts word timings into one cue per word, in input order.
func Generate(words []timing.WordTiming, style Style) (Document, error) {
	return generate(words, style)
}
