// Package cmdutiltest provides a scripted cmdutil.Runner for tests.
package cmdutiltest

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/otter-ml/otter-launcher/internal/cmdutil"
)

// Response is the scripted outcome of one command.
type Response struct {
	Output string
	// ExitCode > 0 makes the command fail with a *cmdutil.Error.
	ExitCode int
	Stderr   string
	// Effect runs before the response is returned, e.g. to create files.
	Effect func(cmdutil.Command)
}

// Runner answers commands from a table keyed by the command line
// ("name arg1 arg2"). Unknown commands fail as if the binary were missing.
type Runner struct {
	mu        sync.Mutex
	responses map[string]Response
	paths     map[string]string
	calls     []cmdutil.Command
}

var _ cmdutil.Runner = (*Runner)(nil)

func New() *Runner {
	return &Runner{
		responses: make(map[string]Response),
		paths:     make(map[string]string),
	}
}

// On scripts the response for a command line.
func (r *Runner) On(line string, resp Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[line] = resp
	return r
}

// Path makes LookPath resolve name to path.
func (r *Runner) Path(name, path string) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[name] = path
	return r
}

// Calls returns every command run so far.
func (r *Runner) Calls() []cmdutil.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]cmdutil.Command(nil), r.calls...)
}

// Lines renders Calls as command lines.
func (r *Runner) Lines() []string {
	var lines []string
	for _, c := range r.Calls() {
		lines = append(lines, Line(c))
	}
	return lines
}

// Ran reports whether any call starts with prefix.
func (r *Runner) Ran(prefix string) bool {
	for _, line := range r.Lines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// Line renders a command the way On keys it.
func Line(c cmdutil.Command) string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

func (r *Runner) Output(_ context.Context, c cmdutil.Command) (string, error) {
	resp, err := r.dispatch(c)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Output), nil
}

func (r *Runner) Run(_ context.Context, c cmdutil.Command) error {
	_, err := r.dispatch(c)
	return err
}

func (r *Runner) LookPath(file string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if path, ok := r.paths[file]; ok {
		return path, nil
	}
	return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
}

func (r *Runner) dispatch(c cmdutil.Command) (Response, error) {
	line := Line(c)
	r.mu.Lock()
	r.calls = append(r.calls, c)
	resp, ok := r.responses[line]
	r.mu.Unlock()

	if !ok {
		return Response{}, &cmdutil.Error{
			Command:  c.String(),
			ExitCode: -1,
			Err:      fmt.Errorf("exec: %q: %w", c.Name, exec.ErrNotFound),
		}
	}
	if resp.Effect != nil {
		resp.Effect(c)
	}
	if resp.ExitCode > 0 {
		return resp, &cmdutil.Error{
			Command:  c.String(),
			ExitCode: resp.ExitCode,
			Stderr:   resp.Stderr,
			Err:      fmt.Errorf("exit status %d", resp.ExitCode),
		}
	}
	return resp, nil
}
