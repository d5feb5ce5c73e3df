package executor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// killGrace bounds how long Wait keeps draining pipes after the context kills
// the child.
const killGrace = 5 * time.Second

type implExecutor struct{}

// New creates a new Executor instance
func New() Executor {
	return &implExecutor{}
}

// CommandError describes a command that could not start or exited non-zero.
// Code is -1 when no exit status is available.
type CommandError struct {
	Name   string
	Code   int
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("command '%s' failed: %v\nstderr: %s", e.Name, e.Err, e.Stderr)
	}
	return fmt.Sprintf("command '%s' failed: %v", e.Name, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Execute runs an external command with the given arguments
func (e *implExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return e.ExecuteInDir(ctx, "", name, args...)
}

// ExecuteInDir runs an external command in a specific working directory
func (e *implExecutor) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = killGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", newCommandError(name, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// Stream runs an external command and forwards its output line by line.
// ffmpeg rewrites its stats line with carriage returns, so '\r' also ends a line.
func (e *implExecutor) Stream(ctx context.Context, dir string, onLine LineHandler, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = killGrace

	// exec copies both streams into pw; Wait returns only after the copy
	// finishes or killGrace elapses, so orphaned children cannot pin us.
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	var scanErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		scanner.Split(scanLinesOrCR)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" && onLine != nil {
				onLine(line)
			}
		}
		if err := scanner.Err(); err != nil {
			scanErr = err
			// keep the pipe empty so the child never blocks on a full buffer
			_, _ = io.Copy(io.Discard, pr)
		}
	}()

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		<-done
		return newCommandError(name, err, "")
	}

	waitErr := cmd.Wait()
	_ = pw.Close()
	<-done

	if waitErr != nil {
		return newCommandError(name, waitErr, "")
	}
	if scanErr != nil {
		return fmt.Errorf("scan output: %w", scanErr)
	}
	return nil
}

func newCommandError(name string, err error, stderr string) *CommandError {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &CommandError{Name: name, Code: code, Stderr: stderr, Err: err}
}

func scanLinesOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
