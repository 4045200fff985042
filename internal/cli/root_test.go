package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/otter-ml/otter-launcher/internal/cmdutil"
	"github.com/otter-ml/otter-launcher/internal/cmdutil/cmdutiltest"
	"github.com/otter-ml/otter-launcher/internal/config"
	"github.com/otter-ml/otter-launcher/internal/launcher"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unavailable")
	}
}

func writeExecutable(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
}

func testHost(home string, runner cmdutil.Runner, stdout, stderr *bytes.Buffer) host {
	return host{
		home:   func() (string, error) { return home, nil },
		self:   func() (string, error) { return "", errors.New("unknown") },
		getenv: func(string) string { return "" },
		goos:   runtime.GOOS,
		runner: runner,
		stdio:  launcher.Stdio{Stdin: strings.NewReader(""), Stdout: stdout, Stderr: stderr},
	}
}

func TestRunForwardsToInstalledTool(t *testing.T) {
	skipWithoutShell(t)
	home := t.TempDir()
	bin := config.Default(home, runtime.GOOS).ToolBinary()
	writeExecutable(t, bin, `for a in "$@"; do printf '<%s>' "$a"; done
exit 42
`)
	runner := cmdutiltest.New().On(bin+" --version", cmdutiltest.Response{Output: "otter 0.4.0"})

	var stdout, stderr bytes.Buffer
	args := []string{"--help", "with space", "", "__complete"}
	code := run(context.Background(), args, testHost(home, runner, &stdout, &stderr))
	if code != 42 {
		t.Fatalf("exit code = %d, want 42 (stderr=%q)", code, stderr.String())
	}
	if got, want := stdout.String(), "<--help><with space><><__complete>"; got != want {
		t.Fatalf("forwarded %q, want %q", got, want)
	}
	if stderr.Len() != 0 {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}
}

func TestRunBootstrapFailureExitsNonZero(t *testing.T) {
	skipWithoutShell(t)
	home := t.TempDir()
	cfg := config.Default(home, runtime.GOOS)
	venv := "uv venv --python /usr/bin/python3 " + cfg.EnvDir()
	pip := "uv pip install --python " + cfg.EnvDir() + " " + cfg.Tool.Source
	runner := cmdutiltest.New().
		On("python3 --version", cmdutiltest.Response{Output: "Python 3.10.4"}).
		Path("python3", "/usr/bin/python3").
		On("uv --version", cmdutiltest.Response{Output: "uv 0.5.2"}).
		On(venv, cmdutiltest.Response{}).
		On(pip, cmdutiltest.Response{ExitCode: 1, Stderr: "network unreachable"})

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"train"}, testHost(home, runner, &stdout, &stderr))
	if code == 0 {
		t.Fatal("expected non-zero exit")
	}
	out := stderr.String()
	if strings.Contains(out, "Ready") {
		t.Fatalf("claimed ready:\n%s", out)
	}
	if !strings.Contains(out, "Failed to install otter-ml: exit 1: network unreachable") {
		t.Fatalf("missing diagnostic:\n%s", out)
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout should stay clean: %q", stdout.String())
	}
}

func TestRunReportsConfigErrors(t *testing.T) {
	home := t.TempDir()
	root := filepath.Join(home, ".otter")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "config.toml"), []byte("[installer]\nenv_strategies = [\"nope\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), nil, testHost(home, cmdutiltest.New(), &stdout, &stderr))
	if code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stderr.String(), "env_strategies") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

// TestRunEndToEnd bootstraps against fake python3 and uv executables on
// PATH and then runs the installed tool.
func TestRunEndToEnd(t *testing.T) {
	skipWithoutShell(t)
	home := t.TempDir()
	binDir := t.TempDir()
	writeExecutable(t, filepath.Join(binDir, "python3"), "echo 'Python 3.11.4'\n")
	writeExecutable(t, filepath.Join(binDir, "uv"), `case "$1" in
--version) echo "uv 0.5.2" ;;
venv) mkdir -p "$4" ;;
pip)
  mkdir -p "$4/bin"
  printf '#!/bin/sh\nif [ "$1" = --version ]; then echo "otter 0.4.0"; exit 0; fi\necho "otter ran: $*"\nexit 5\n' > "$4/bin/otter"
  chmod +x "$4/bin/otter"
  ;;
*) exit 2 ;;
esac
`)
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+"/usr/bin"+string(os.PathListSeparator)+"/bin")

	var stdout, stderr bytes.Buffer
	h := testHost(home, cmdutil.Exec{}, &stdout, &stderr)
	code := run(context.Background(), []string{"fit", "data.csv"}, h)
	if code != 5 {
		t.Fatalf("exit code = %d, want 5\nstderr:\n%s", code, stderr.String())
	}
	if got := strings.TrimSpace(stdout.String()); got != "otter ran: fit data.csv" {
		t.Fatalf("stdout = %q", got)
	}
	if !strings.Contains(stderr.String(), "Ready! Starting Otter...") {
		t.Fatalf("stderr missing ready line:\n%s", stderr.String())
	}

	// Second invocation goes straight to the tool.
	stdout.Reset()
	stderr.Reset()
	code = run(context.Background(), []string{"--version"}, h)
	if code != 0 {
		t.Fatalf("second exit code = %d\nstderr:\n%s", code, stderr.String())
	}
	if stderr.Len() != 0 {
		t.Fatalf("second run printed progress:\n%s", stderr.String())
	}
}
