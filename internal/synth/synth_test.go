package synth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/clipsmith/internal/logger"
	"github.com/nguyentantai21042004/clipsmith/internal/timing"
	"github.com/nguyentantai21042004/clipsmith/pkg/executor"
)

// fakeExecutor records calls and writes a placeholder file at the last
// argument, standing in for ffmpeg. Whisper calls also get an SRT file.
type fakeExecutor struct {
	calls [][]string
	srt   string
	err   error
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return f.ExecuteInDir(ctx, "", name, args...)
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return "", f.err
	}
	for i, a := range args {
		if a == "--output-file" && i+1 < len(args) {
			return "", os.WriteFile(args[i+1]+".srt", []byte(f.srt), 0644)
		}
	}
	if len(args) > 0 {
		return "", os.WriteFile(args[len(args)-1], []byte("RIFF"), 0644)
	}
	return "", nil
}

func (f *fakeExecutor) Stream(ctx context.Context, dir string, onLine executor.LineHandler, name string, args ...string) error {
	_, err := f.ExecuteInDir(ctx, dir, name, args...)
	return err
}

type fakeAligner struct {
	words []timing.WordTiming
	err   error
}

func (f *fakeAligner) Align(ctx context.Context, audioPath string) ([]timing.WordTiming, error) {
	return f.words, f.err
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	silent := NewSilent("", &fakeExecutor{}, logger.NewNop())
	r.Register("Silent", silent)

	got, err := r.Lookup(" SILENT ")
	if err != nil || got != silent {
		t.Errorf("Lookup() = %v, %v", got, err)
	}
	if _, err := r.Lookup("elevenlabs"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Lookup() error = %v, want ErrUnknownProvider", err)
	}
	if keys := r.Keys(); !reflect.DeepEqual(keys, []string{"silent"}) {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestParseSRT(t *testing.T) {
	content := "1\r\n00:00:00,000 --> 00:00:00,500\r\n Hello\r\n\r\n" +
		"2\n00:00:00.500 --> 00:00:01,250\nworld\n\n" +
		"3\n00:00:01,250 --> 00:00:01,500\n   \n\n" +
		"x\n00:00:02,000 --> 00:00:03,000\nbad index\n\n" +
		"4\nnot a timing line\ntext\n\n" +
		"5\n01:00:01,250 --> 01:00:01,000\nagain\n"

	want := []timing.WordTiming{
		{Word: "Hello", Start: 0, End: 0.5},
		{Word: "world", Start: 0.5, End: 1.25},
		{Word: "again", Start: 3601.25, End: 3601.25},
	}
	if got := ParseSRT(content); !reflect.DeepEqual(got, want) {
		t.Errorf("ParseSRT() = %v, want %v", got, want)
	}
	if got := ParseSRT("  "); got == nil || len(got) != 0 {
		t.Errorf("ParseSRT(empty) = %v, want empty slice", got)
	}
}

func TestParseSRTTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"00:00:01,500", 1.5, false},
		{" 01:02:03.500 ", 3723.5, false},
		{"00:01,500", 0, true},
		{"aa:00:01,500", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseSRTTimestamp(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseSRTTimestamp(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func newTestGemini(t *testing.T, exec *fakeExecutor, aligner Aligner, keys []string, gen audioFunc) *implGemini {
	t.Helper()
	s, err := NewGemini(GeminiOptions{APIKeys: keys}, exec, aligner, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	g := s.(*implGemini)
	g.generate = gen
	return g
}

func TestGeminiGenerate(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{}
	aligner := &fakeAligner{words: []timing.WordTiming{
		{Word: "hi", Start: 0, End: 0.4},
		{Word: "there", Start: 0.4, End: 1.3},
		{Word: "ghost", Start: 1.6, End: 1.9},
	}}
	var gotVoice string
	gen := func(ctx context.Context, key, model, text, voice string) ([]byte, string, error) {
		gotVoice = voice
		return make([]byte, 48000), "audio/L16;codec=pcm;rate=24000", nil
	}
	g := newTestGemini(t, exec, aligner, []string{"k1"}, gen)

	seg, err := g.Generate(context.Background(), Request{Text: "hi there", WantTimings: true, SpeakerID: "ann", Dir: dir})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if seg.Duration != 1.0 {
		t.Errorf("Duration = %v, want 1", seg.Duration)
	}
	if gotVoice != defaultGeminiVoice {
		t.Errorf("voice = %q, want default", gotVoice)
	}
	wantWords := []timing.WordTiming{{Word: "hi", Start: 0, End: 0.4}, {Word: "there", Start: 0.4, End: 1.0}}
	if !reflect.DeepEqual(seg.Words, wantWords) {
		t.Errorf("Words = %v, want %v", seg.Words, wantWords)
	}
	if seg.Kind != timing.KindDialogue || len(seg.DialogueLines) != 1 || seg.DialogueLines[0].SpeakerID != "ann" {
		t.Errorf("segment = %+v", seg)
	}
	if filepath.Dir(seg.AudioPath) != dir || filepath.Ext(seg.AudioPath) != ".wav" {
		t.Errorf("AudioPath = %v", seg.AudioPath)
	}
	if _, err := os.Stat(strings.TrimSuffix(seg.AudioPath, ".wav") + ".pcm"); !os.IsNotExist(err) {
		t.Error("raw pcm file was not removed")
	}
	joined := strings.Join(exec.calls[0], " ")
	if !strings.Contains(joined, "-f s16le -ar 24000 -ac 1") {
		t.Errorf("ffmpeg args = %s", joined)
	}
}

func TestGeminiRotatesKeys(t *testing.T) {
	var used []string
	gen := func(ctx context.Context, key, model, text, voice string) ([]byte, string, error) {
		used = append(used, key)
		if key != "k3" {
			return nil, "", errors.New("Error 429, RESOURCE_EXHAUSTED")
		}
		return make([]byte, 4800), "", nil
	}
	g := newTestGemini(t, &fakeExecutor{}, nil, []string{"k1", "k2", "k3"}, gen)

	seg, err := g.Generate(context.Background(), Request{Text: "hello", Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !reflect.DeepEqual(used, []string{"k1", "k2", "k3"}) {
		t.Errorf("keys used = %v", used)
	}
	if seg.Duration != 0.1 || seg.Words != nil {
		t.Errorf("segment = %+v", seg)
	}
}

func TestGeminiErrors(t *testing.T) {
	quota := func(ctx context.Context, key, model, text, voice string) ([]byte, string, error) {
		return nil, "", errors.New("quota exceeded")
	}
	fatal := errors.New("permission denied")
	denied := func(ctx context.Context, key, model, text, voice string) ([]byte, string, error) {
		return nil, "", fatal
	}
	ok := func(ctx context.Context, key, model, text, voice string) ([]byte, string, error) {
		return make([]byte, 480), "", nil
	}

	tests := []struct {
		name    string
		gen     audioFunc
		exec    *fakeExecutor
		aligner Aligner
		text    string
	}{
		{"empty text", ok, &fakeExecutor{}, nil, "  "},
		{"keys exhausted", quota, &fakeExecutor{}, nil, "hi"},
		{"provider error", denied, &fakeExecutor{}, nil, "hi"},
		{"ffmpeg fails", ok, &fakeExecutor{err: errors.New("boom")}, nil, "hi"},
		{"aligner fails", ok, &fakeExecutor{}, &fakeAligner{err: errors.New("no model")}, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGemini(t, tt.exec, tt.aligner, []string{"a", "b"}, tt.gen)
			_, err := g.Generate(context.Background(), Request{Text: tt.text, WantTimings: true, Dir: t.TempDir()})
			var synthErr *SynthesisError
			if !errors.As(err, &synthErr) || synthErr.Provider != ProviderGemini {
				t.Errorf("Generate() error = %v, want *SynthesisError", err)
			}
		})
	}
}

func TestNewGeminiRequiresKeys(t *testing.T) {
	if _, err := NewGemini(GeminiOptions{}, &fakeExecutor{}, nil, logger.NewNop()); err == nil {
		t.Error("NewGemini() error = nil without keys")
	}
}

func TestSampleRate(t *testing.T) {
	tests := map[string]int{
		"audio/L16;codec=pcm;rate=16000": 16000,
		"audio/L16":                      defaultSampleRate,
		"":                               defaultSampleRate,
		"audio/L16;rate=abc":             defaultSampleRate,
	}
	for in, want := range tests {
		if got := sampleRate(in); got != want {
			t.Errorf("sampleRate(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestWhisperAlign(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "tts.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}
	exec := &fakeExecutor{srt: "1\n00:00:00,000 --> 00:00:00,500\nhello\n\n2\n00:00:00,500 --> 00:00:01,000\nworld\n"}
	a, err := NewWhisperAligner(WhisperOptions{BinaryPath: "whisper-cli", ModelPath: "model.bin"}, exec, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	words, err := a.Align(context.Background(), audio)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if len(words) != 2 || words[1].Word != "world" || words[1].End != 1.0 {
		t.Errorf("Align() = %v", words)
	}
	if len(exec.calls) != 2 || exec.calls[1][0] != "whisper-cli" {
		t.Fatalf("calls = %v", exec.calls)
	}
	if !strings.Contains(strings.Join(exec.calls[1], " "), "-ml 1 -sow") {
		t.Errorf("whisper args = %v", exec.calls[1])
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestNewWhisperAlignerRequiresModel(t *testing.T) {
	if _, err := NewWhisperAligner(WhisperOptions{BinaryPath: "whisper-cli"}, &fakeExecutor{}, logger.NewNop()); err == nil {
		t.Error("NewWhisperAligner() error = nil without model")
	}
}

func TestSilentGenerate(t *testing.T) {
	exec := &fakeExecutor{}
	s := NewSilent("", exec, logger.NewNop())

	seg, err := s.Generate(context.Background(), Request{Text: "one two three four five", WantTimings: true, Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if seg.Duration != 2 {
		t.Errorf("Duration = %v, want 2", seg.Duration)
	}
	if len(seg.Words) != 5 || seg.Words[0].Start != 0 || seg.Words[4].End != 2 {
		t.Errorf("Words = %v", seg.Words)
	}
	for i := 1; i < len(seg.Words); i++ {
		if seg.Words[i].Start < seg.Words[i-1].End-1e-9 {
			t.Errorf("word %d overlaps previous: %v", i, seg.Words)
		}
	}
	if !strings.Contains(strings.Join(exec.calls[0], " "), "-t 2.000") {
		t.Errorf("ffmpeg args = %v", exec.calls[0])
	}

	if _, err := s.Generate(context.Background(), Request{Text: ""}); err == nil {
		t.Error("Generate() error = nil for empty text")
	}
}
