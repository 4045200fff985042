// Package launcher runs the resolved tool in place of the launcher.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
)

// Stdio is the set of streams handed to the child.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Inherit returns the launcher's own standard streams.
func Inherit() Stdio {
	return Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run executes path with args, unmodified and without a shell, and returns
// the child's exit code. Termination and hangup signals received while the
// child runs are relayed to it. An error means the child could not be
// started or waited on.
func Run(ctx context.Context, path string, args []string, stdio Stdio) (int, error) {
	cmd := exec.Command(path, args...)
	cmd.Stdin = stdio.Stdin
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, caughtSignals...)
	defer signal.Stop(sigs)

	if err := cmd.Start(); err != nil {
		return 1, fmt.Errorf("failed to start %s: %w", path, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	for {
		select {
		case sig := <-sigs:
			if relayed(sig) {
				_ = cmd.Process.Signal(sig)
			}
		case <-ctx.Done():
			_ = cmd.Process.Kill()
			<-done
			return 1, ctx.Err()
		case err := <-done:
			return exitCode(cmd, err)
		}
	}
}

func exitCode(cmd *exec.Cmd, err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 1, err
	}
	if code, ok := signalExitCode(cmd.ProcessState); ok {
		return code, nil
	}
	return exitErr.ExitCode(), nil
}
