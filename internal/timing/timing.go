package timing

// WordTiming is one spoken word and the interval it occupies, in seconds.
type WordTiming struct {
	Word  string  `json:"word" yaml:"word"`
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// SegmentKind tags which variant a Segment is.
type SegmentKind int

const (
	KindPlain SegmentKind = iota
	KindTitled
	KindDialogue
)

func (k SegmentKind) String() string {
	switch k {
	case KindTitled:
		return "titled"
	case KindDialogue:
		return "dialogue"
	default:
		return "plain"
	}
}

// DialogueLine marks when one speaker talks. Start is relative to the
// segment that carries it until the segment is combined into a Timeline.
type DialogueLine struct {
	SpeakerID string  `json:"speakerId" yaml:"speaker_id"`
	Start     float64 `json:"start" yaml:"start"`
	Duration  float64 `json:"duration" yaml:"duration"`
}

// Segment is one synthesized narration clip.
//
// Duration is authoritative: word timings are advisory and may stop short of
// it when the audio ends in silence.
type Segment struct {
	Kind          SegmentKind
	AudioPath     string
	Duration      float64
	Words         []WordTiming
	TitleDuration float64        // KindTitled only
	DialogueLines []DialogueLine // KindDialogue only
}

// Timeline is the combined narration of a job. It is built once and never
// mutated afterwards.
type Timeline struct {
	AudioPath     string
	TotalDuration float64
	Words         []WordTiming
	TitleDuration float64
	DialogueLines []DialogueLine
}

// HasTitle reports whether a title card duration was carried over.
func (t Timeline) HasTitle() bool {
	return t.TitleDuration > 0
}

// Shift returns a copy of timings with every Start and End moved by offset.
func Shift(timings []WordTiming, offset float64) []WordTiming {
	out := make([]WordTiming, len(timings))
	for i, w := range timings {
		out[i] = WordTiming{Word: w.Word, Start: w.Start + offset, End: w.End + offset}
	}
	return out
}

// ShiftLines is Shift for dialogue lines. Durations are untouched.
func ShiftLines(lines []DialogueLine, offset float64) []DialogueLine {
	out := make([]DialogueLine, len(lines))
	for i, l := range lines {
		out[i] = DialogueLine{SpeakerID: l.SpeakerID, Start: l.Start + offset, Duration: l.Duration}
	}
	return out
}

// ClampToDuration drops words that start after duration and trims the end of
// the rest so that no word runs past it.
func ClampToDuration(timings []WordTiming, duration float64) []WordTiming {
	out := make([]WordTiming, 0, len(timings))
	for _, w := range timings {
		if w.Start > duration {
			break
		}
		if w.End > duration {
			w.End = duration
		}
		out = append(out, w)
	}
	return out
}
