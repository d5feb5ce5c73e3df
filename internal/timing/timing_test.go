package timing

import (
	"reflect"
	"testing"
)

func TestShift(t *testing.T) {
	tests := []struct {
		name   string
		input  []WordTiming
		offset float64
		want   []WordTiming
	}{
		{
			name:   "empty input",
			input:  nil,
			offset: 2,
			want:   []WordTiming{},
		},
		{
			name:   "positive offset",
			input:  []WordTiming{{Word: "hello", Start: 0, End: 0.5}, {Word: "world", Start: 0.5, End: 1.25}},
			offset: 2,
			want:   []WordTiming{{Word: "hello", Start: 2, End: 2.5}, {Word: "world", Start: 2.5, End: 3.25}},
		},
		{
			name:   "zero offset",
			input:  []WordTiming{{Word: "a", Start: 1, End: 2}},
			offset: 0,
			want:   []WordTiming{{Word: "a", Start: 1, End: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Shift(tt.input, tt.offset)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Shift() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShiftDoesNotMutateInput(t *testing.T) {
	input := []WordTiming{{Word: "a", Start: 1, End: 2}}
	Shift(input, 5)
	if input[0].Start != 1 || input[0].End != 2 {
		t.Errorf("input mutated: %v", input)
	}
}

func TestShiftComposes(t *testing.T) {
	input := []WordTiming{
		{Word: "one", Start: 0, End: 0.25},
		{Word: "two", Start: 0.5, End: 1.75},
		{Word: "three", Start: 3, End: 4.5},
	}
	offsets := [][2]float64{{1, 2}, {0.5, 0.25}, {8, 0}, {2.5, 1.5}}

	for _, o := range offsets {
		twice := Shift(Shift(input, o[0]), o[1])
		once := Shift(input, o[0]+o[1])
		if !reflect.DeepEqual(twice, once) {
			t.Errorf("Shift(Shift(t, %v), %v) = %v, want %v", o[0], o[1], twice, once)
		}
	}
}

func TestShiftLines(t *testing.T) {
	lines := []DialogueLine{{SpeakerID: "a", Start: 0, Duration: 2}}
	got := ShiftLines(lines, 3)
	want := []DialogueLine{{SpeakerID: "a", Start: 3, Duration: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ShiftLines() = %v, want %v", got, want)
	}
}

func TestClampToDuration(t *testing.T) {
	input := []WordTiming{
		{Word: "a", Start: 0, End: 1},
		{Word: "b", Start: 1, End: 2.5},
		{Word: "c", Start: 2.75, End: 3},
	}
	got := ClampToDuration(input, 2)
	want := []WordTiming{
		{Word: "a", Start: 0, End: 1},
		{Word: "b", Start: 1, End: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ClampToDuration() = %v, want %v", got, want)
	}
}

func TestSegmentKindString(t *testing.T) {
	tests := []struct {
		kind SegmentKind
		want string
	}{
		{KindPlain, "plain"},
		{KindTitled, "titled"},
		{KindDialogue, "dialogue"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %v, want %v", got, tt.want)
		}
	}
}
