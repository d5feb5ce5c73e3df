package filtergraph

import (
	"errors"
	"strings"
)

var (
	// ErrIllegalOrder is returned when a builder method is called while the
	// graph is in a state that cannot accept it.
	ErrIllegalOrder = errors.New("filtergraph: illegal operation order")
	// ErrInvalidOutputDir is returned when Build cannot use the output directory.
	ErrInvalidOutputDir = errors.New("filtergraph: invalid output directory")
	// ErrNoDuration is returned when nothing bounds the output length: no
	// narration and no output duration.
	ErrNoDuration = errors.New("filtergraph: output length is unbounded")
)

// CommandPlan is a finished renderer invocation. It is not modified after
// Build returns it.
type CommandPlan struct {
	Binary string
	Args   []string
	// Dir is the working directory; cue files are referenced relative to it.
	Dir            string
	OutputPath     string
	FilterGraph    string
	TargetDuration float64
	// TempFiles are inputs the renderer run owns and removes when it ends.
	TempFiles []string
}

// CommandLine renders the plan as a single string for logs.
func (p *CommandPlan) CommandLine() string {
	parts := make([]string, 0, len(p.Args)+1)
	parts = append(parts, p.Binary)
	for _, a := range p.Args {
		if strings.ContainsAny(a, " ;[]'") {
			a = `"` + a + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

type input struct {
	opts []string
	path string
	file bool
}

// fragment is one filter chain; its output label is kept apart from the body
// so the chain can be extended in place.
type fragment struct {
	body string
	out  string
}

func (f fragment) String() string {
	return f.body + "[" + f.out + "]"
}
