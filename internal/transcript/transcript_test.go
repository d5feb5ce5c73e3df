package transcript

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nguyentantai21042004/clipsmith/internal/timing"
)

func words(pairs ...any) []timing.WordTiming {
	var out []timing.WordTiming
	for i := 0; i+1 < len(pairs); i += 2 {
		start := pairs[i+1].(float64)
		out = append(out, timing.WordTiming{Word: pairs[i].(string), Start: start, End: start + 0.25})
	}
	return out
}

func TestParagraphsSentences(t *testing.T) {
	tl := timing.Timeline{Words: words("Hello", 0.0, "there.", 0.5, "How", 1.0, "are", 1.5, "you?", 2.0, "Fine", 3.0)}
	want := []Paragraph{
		{Start: 0, Text: "Hello there."},
		{Start: 1.0, Text: "How are you?"},
		{Start: 3.0, Text: "Fine"},
	}
	if got := Paragraphs(tl); !reflect.DeepEqual(got, want) {
		t.Errorf("Paragraphs() = %v, want %v", got, want)
	}
}

func TestParagraphsDialogue(t *testing.T) {
	tl := timing.Timeline{
		Words: words("Hi", 0.0, "Bob", 0.5, "Hey", 2.0, "Ann", 2.5, "bye", 9.5),
		DialogueLines: []timing.DialogueLine{
			{SpeakerID: "ann", Start: 0, Duration: 2},
			{SpeakerID: "bob", Start: 2, Duration: 1.5},
			{SpeakerID: "ann", Start: 3.5, Duration: 1},
		},
	}
	want := []Paragraph{
		{Start: 0, Speaker: "ann", Text: "Hi Bob"},
		{Start: 2, Speaker: "bob", Text: "Hey Ann"},
		{Start: 3.5, Speaker: "ann", Text: "bye"},
	}
	if got := Paragraphs(tl); !reflect.DeepEqual(got, want) {
		t.Errorf("Paragraphs() = %v, want %v", got, want)
	}
}

func TestParagraphsDialogueAfterTitle(t *testing.T) {
	tl := timing.Timeline{
		Words:         words("Big", 0.0, "news", 0.5, "Hello", 1.0),
		DialogueLines: []timing.DialogueLine{{SpeakerID: "ann", Start: 1.0, Duration: 1}},
	}
	want := []Paragraph{
		{Start: 0, Text: "Big news"},
		{Start: 1.0, Speaker: "ann", Text: "Hello"},
	}
	if got := Paragraphs(tl); !reflect.DeepEqual(got, want) {
		t.Errorf("Paragraphs() = %v, want %v", got, want)
	}
}

func TestFormatClock(t *testing.T) {
	tests := map[float64]string{
		0:       "0:00:00",
		59.99:   "0:00:59",
		3661.75: "1:01:01",
		-3:      "0:00:00",
	}
	for in, want := range tests {
		if got := FormatClock(in); got != want {
			t.Errorf("FormatClock(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.docx")
	tl := timing.Timeline{Words: words("Hello", 0.0, "world.", 0.5)}

	if err := Export(tl, "My short", path); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("Export() did not write a zip container")
	}
}
