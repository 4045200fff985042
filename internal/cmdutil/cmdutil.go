// Package cmdutil runs host commands on behalf of the prober and installer.
package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Command describes a single child process invocation.
type Command struct {
	Name string
	Args []string
	// Env entries are appended to the launcher's own environment.
	Env []string
}

// String renders the command for diagnostics.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner executes commands. Exec is the real implementation; tests swap in fakes.
type Runner interface {
	// Output runs the command and returns its trimmed combined output.
	Output(ctx context.Context, cmd Command) (string, error)
	// Run runs the command, discarding stdout. Failures carry captured stderr.
	Run(ctx context.Context, cmd Command) error
	// LookPath resolves a bare command name through the search path.
	LookPath(file string) (string, error)
}

// Error reports a command that could not start or exited unsuccessfully.
type Error struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	if e.ExitCode > 0 {
		if e.Stderr == "" {
			return fmt.Sprintf("%s (exit %d)", e.Command, e.ExitCode)
		}
		return fmt.Sprintf("%s (exit %d): %s", e.Command, e.ExitCode, e.Stderr)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v\n%s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Exec runs commands as real child processes.
type Exec struct{}

var _ Runner = Exec{}

func (Exec) Output(ctx context.Context, c Command) (string, error) {
	cmd := build(ctx, c)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", wrap(c, err, out.String())
	}
	return strings.TrimSpace(out.String()), nil
}

func (Exec) Run(ctx context.Context, c Command) error {
	cmd := build(ctx, c)
	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return wrap(c, err, stderr.String())
	}
	return nil
}

func (Exec) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func build(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

func wrap(c Command, err error, stderr string) error {
	e := &Error{
		Command: c.String(),
		Stderr:  strings.TrimSpace(stderr),
		Err:     err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		e.ExitCode = exitErr.ExitCode()
	}
	return e
}
