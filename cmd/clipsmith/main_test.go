package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/clipsmith/internal/render"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	want := map[string]bool{"watch": false, "render": false, "probe": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q missing", name)
		}
	}
}

func TestRenderRequiresConfig(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"render", "-c", filepath.Join(t.TempDir(), "missing.yaml"), "job.yaml"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "failed to load config") {
		t.Errorf("Execute() error = %v, want config error", err)
	}
}

func TestRenderTable(t *testing.T) {
	got := renderTable(
		[]string{"File", "Duration"},
		[][]string{{"a.mp4", "1.5s"}, {"b.png"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	for _, want := range []string{"FILE", "DURATION", "A.MP4", "1.5S", "B.PNG"} {
		if !strings.Contains(strings.ToUpper(got), want) {
			t.Errorf("renderTable() missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "<nil>") {
		t.Errorf("renderTable() did not pad short row:\n%s", got)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Error("renderTable() with no headers should be empty")
	}
}

func TestProbeRow(t *testing.T) {
	tests := []struct {
		info render.MediaInfo
		want []string
	}{
		{render.MediaInfo{DurationSeconds: 12.5, Width: 1920, Height: 1080, HasVideo: true, HasAudio: true}, []string{"f", "12.5s", "1920x1080", "video+audio", ""}},
		{render.MediaInfo{DurationSeconds: 3, HasAudio: true}, []string{"f", "3s", "-", "audio", ""}},
		{render.MediaInfo{Width: 800, Height: 600, HasVideo: true}, []string{"f", "0s", "800x600", "video", ""}},
	}
	for _, tt := range tests {
		got := probeRow("f", tt.info)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("probeRow() = %v, want %v", got, tt.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	tests := map[float64]string{
		0:   "[..............................]   0.0%",
		50:  "[###############...............]  50.0%",
		100: "[##############################] 100.0%",
	}
	for in, want := range tests {
		if got := progressBar(in); got != want {
			t.Errorf("progressBar(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestTerminalSinkPlain(t *testing.T) {
	var buf bytes.Buffer
	s := newTerminalSink(&buf, false)
	for _, p := range []float64{1, 5, 10, 15, 99, 100} {
		s.OnProgress(p)
	}
	s.OnComplete()

	want := "render   1%\nrender  10%\nrender  99%\nrender 100%\nrender done\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestTerminalSinkInteractive(t *testing.T) {
	var buf bytes.Buffer
	s := newTerminalSink(&buf, true)
	s.OnProgress(50)
	s.OnError()

	if !strings.HasPrefix(buf.String(), "\r[") || !strings.HasSuffix(buf.String(), "\nrender failed\n") {
		t.Errorf("output = %q", buf.String())
	}
}
