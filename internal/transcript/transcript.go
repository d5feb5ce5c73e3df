// Package transcript exports a narration Timeline as a readable document.
package transcript

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/nguyentantai21042004/clipsmith/internal/timing"
)

const (
	fontName  = "Times New Roman"
	fontSize  = 13
	titleSize = 16
	stampGrey = "666666"
)

// Paragraph is one block of the transcript.
type Paragraph struct {
	Start   float64
	Speaker string
	Text    string
}

// Export writes the timeline as a .docx file at path: a bold title followed
// by one paragraph per dialogue line or sentence, each with its start time.
func Export(tl timing.Timeline, title, path string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), title, true, titleSize)
	doc.AddParagraph("")

	for _, para := range Paragraphs(tl) {
		p := doc.AddParagraph("")
		p.AddText("[" + FormatClock(para.Start) + "] ").Font(fontName).Size(fontSize).Color(stampGrey)
		if para.Speaker != "" {
			addStyledRun(p, para.Speaker+": ", true, fontSize)
		}
		addStyledRun(p, para.Text, false, fontSize)
	}

	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

// Paragraphs groups the timeline's words. Dialogue timelines get one
// paragraph per line; others are split after sentence-ending punctuation.
func Paragraphs(tl timing.Timeline) []Paragraph {
	if len(tl.DialogueLines) > 0 {
		return dialogueParagraphs(tl)
	}

	var out []Paragraph
	var cur []string
	start := 0.0
	for _, w := range tl.Words {
		if len(cur) == 0 {
			start = w.Start
		}
		cur = append(cur, w.Word)
		if endsSentence(w.Word) {
			out = append(out, Paragraph{Start: start, Text: strings.Join(cur, " ")})
			cur = nil
		}
	}
	if len(cur) > 0 {
		out = append(out, Paragraph{Start: start, Text: strings.Join(cur, " ")})
	}
	return out
}

// dialogueParagraphs assigns each word to the line whose window holds its
// start. Words spoken before the first line, such as a title, get a
// paragraph without a speaker.
func dialogueParagraphs(tl timing.Timeline) []Paragraph {
	out := make([]Paragraph, 0, len(tl.DialogueLines)+1)
	i := 0

	var lead []string
	for i < len(tl.Words) && tl.Words[i].Start < tl.DialogueLines[0].Start {
		lead = append(lead, tl.Words[i].Word)
		i++
	}
	if len(lead) > 0 {
		out = append(out, Paragraph{Start: tl.Words[0].Start, Text: strings.Join(lead, " ")})
	}

	for li, line := range tl.DialogueLines {
		end := line.Start + line.Duration
		last := li == len(tl.DialogueLines)-1

		var words []string
		for i < len(tl.Words) && (last || tl.Words[i].Start < end) {
			words = append(words, tl.Words[i].Word)
			i++
		}
		if len(words) == 0 {
			continue
		}
		out = append(out, Paragraph{Start: line.Start, Speaker: line.SpeakerID, Text: strings.Join(words, " ")})
	}
	return out
}

func endsSentence(word string) bool {
	word = strings.TrimRight(word, `"')]`)
	return strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?")
}

// FormatClock renders seconds as H:MM:SS, truncating fractions.
func FormatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	s := int64(seconds)
	return fmt.Sprintf("%d:%02d:%02d", s/3600, (s/60)%60, s%60)
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
