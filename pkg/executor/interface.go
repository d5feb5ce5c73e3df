package executor

import "context"

// LineHandler receives one line of child process output.
type LineHandler func(line string)

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
	// Stream runs the command and hands every stdout/stderr line to onLine
	// while the process is running. Both pipes are drained until exit.
	Stream(ctx context.Context, dir string, onLine LineHandler, name string, args ...string) error
}
