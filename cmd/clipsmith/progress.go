package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nguyentantai21042004/clipsmith/internal/render"
)

const barWidth = 30

// terminalSink draws render progress. On a terminal the bar is redrawn in
// place; otherwise one line is written per whole ten percent.
type terminalSink struct {
	out         io.Writer
	interactive bool
	lastStep    int
}

func newTerminalSink(out io.Writer, interactive bool) render.Sink {
	return &terminalSink{out: out, interactive: interactive, lastStep: -1}
}

func (s *terminalSink) OnProgress(percent float64) {
	if s.interactive {
		fmt.Fprintf(s.out, "\r%s", progressBar(percent))
		return
	}
	step := int(percent) / 10
	if step > s.lastStep {
		s.lastStep = step
		fmt.Fprintf(s.out, "render %3.0f%%\n", percent)
	}
}

func (s *terminalSink) OnComplete() {
	s.finish("done")
}

func (s *terminalSink) OnError() {
	s.finish("failed")
}

func (s *terminalSink) finish(status string) {
	if s.interactive {
		fmt.Fprint(s.out, "\n")
	}
	fmt.Fprintf(s.out, "render %s\n", status)
}

func progressBar(percent float64) string {
	filled := int(percent / 100 * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	return fmt.Sprintf("[%s%s] %5.1f%%", strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled), percent)
}

func formatSeconds(seconds float64) string {
	return (time.Duration(seconds * float64(time.Second))).Round(10 * time.Millisecond).String()
}

// stderrIsTerminal reports whether progress can be redrawn in place.
func stderrIsTerminal() bool {
	return isTerminal(os.Stderr)
}
