package launcher

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unavailable")
	}
	path := filepath.Join(t.TempDir(), "otter")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunForwardsArgumentsVerbatim(t *testing.T) {
	script := writeScript(t, `for a in "$@"; do printf '[%s]\n' "$a"; done
exit 7
`)
	args := []string{"run", "two words", "", "--flag=a b", "*", "$HOME"}
	var stdout, stderr bytes.Buffer
	code, err := Run(context.Background(), script, args, Stdio{Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if code != 7 {
		t.Fatalf("exit code = %d, want 7", code)
	}
	want := "[run]\n[two words]\n[]\n[--flag=a b]\n[*]\n[$HOME]\n"
	if got := stdout.String(); got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
}

func TestRunPassesStdin(t *testing.T) {
	script := writeScript(t, "cat; echo oops >&2\n")
	var stdout, stderr bytes.Buffer
	code, err := Run(context.Background(), script, nil, Stdio{
		Stdin:  strings.NewReader("hello\n"),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil || code != 0 {
		t.Fatalf("run = %d, %v", code, err)
	}
	if stdout.String() != "hello\n" || stderr.String() != "oops\n" {
		t.Fatalf("stdout=%q stderr=%q", stdout.String(), stderr.String())
	}
}

func TestRunSignalExitCode(t *testing.T) {
	script := writeScript(t, "kill -TERM $$\n")
	code, err := Run(context.Background(), script, nil, Stdio{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if code != 128+15 {
		t.Fatalf("exit code = %d, want 143", code)
	}
}

func TestRunStartFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	code, err := Run(context.Background(), missing, nil, Stdio{})
	if err == nil {
		t.Fatal("expected start error")
	}
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(err.Error(), "failed to start") {
		t.Fatalf("err = %v", err)
	}
}
