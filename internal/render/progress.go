package render

import (
	"regexp"
	"strconv"
	"sync"
)

// Sink receives render progress. OnComplete and OnError are terminal and
// delivered at most once; OnProgress may be called any number of times before.
type Sink interface {
	OnProgress(percent float64)
	OnComplete()
	OnError()
}

// EventKind classifies a progress Event.
type EventKind int

const (
	EventProgress EventKind = iota
	EventCompleted
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	default:
		return "progress"
	}
}

// Event is one progress notification. Percent is only set for EventProgress.
type Event struct {
	Kind    EventKind
	Percent float64
}

// SinkFunc adapts a single callback to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) OnProgress(percent float64) { f(Event{Kind: EventProgress, Percent: percent}) }
func (f SinkFunc) OnComplete()                { f(Event{Kind: EventCompleted}) }
func (f SinkFunc) OnError()                   { f(Event{Kind: EventFailed}) }

type nopSink struct{}

func (nopSink) OnProgress(float64) {}
func (nopSink) OnComplete()        {}
func (nopSink) OnError()           {}

// NopSink discards every event.
var NopSink Sink = nopSink{}

var progressPattern = regexp.MustCompile(`time=\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// ParseProgressTime extracts the elapsed output time, in seconds, from an
// ffmpeg stats line such as "frame=42 ... time=00:01:02.50 bitrate=...".
func ParseProgressTime(line string) (float64, bool) {
	m := progressPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	sec, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, false
	}
	return float64(h*3600+mins*60) + sec, true
}

// Percent converts elapsed seconds into a share of target, clamped to
// [0, 100]. It reports false when target is not positive.
func Percent(elapsed, target float64) (float64, bool) {
	if target <= 0 {
		return 0, false
	}
	p := 100 * elapsed / target
	switch {
	case p < 0:
		p = 0
	case p > 100:
		p = 100
	}
	return p, true
}

// guardedSink forwards to a caller sink, dropping progress that would go
// backwards and any event after the first terminal one.
type guardedSink struct {
	mu   sync.Mutex
	sink Sink
	last float64
	done bool
}

func newGuardedSink(s Sink) *guardedSink {
	if s == nil {
		s = NopSink
	}
	return &guardedSink{sink: s, last: -1}
}

func (g *guardedSink) OnProgress(percent float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done || percent < g.last {
		return
	}
	g.last = percent
	g.sink.OnProgress(percent)
}

func (g *guardedSink) OnComplete() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return
	}
	g.done = true
	g.sink.OnComplete()
}

func (g *guardedSink) OnError() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return
	}
	g.done = true
	g.sink.OnError()
}
