// Package bootstrap brings a host from "tool absent" to "tool present and
// runnable".
//
// The sequence is linear: check for an installed tool, check the runtime,
// take the bootstrap lock, find or install the package installer, create the
// isolated environment, install the application, verify the binary. Any
// failure is fatal and leaves
// whatever the last successful step produced; the next invocation fails the
// installed check and starts over, so no cleanup is attempted.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/otter-ml/otter-launcher/internal/cmdutil"
	"github.com/otter-ml/otter-launcher/internal/config"
	"github.com/otter-ml/otter-launcher/internal/probe"
	"github.com/rs/zerolog"
)

// Installer runs the bootstrap sequence for one configuration.
type Installer struct {
	cfg    config.Config
	probe  *probe.Prober
	runner cmdutil.Runner
	report *Reporter
	log    zerolog.Logger
}

func New(cfg config.Config, runner cmdutil.Runner, report *Reporter, log zerolog.Logger) *Installer {
	return &Installer{
		cfg:    cfg,
		probe:  probe.New(cfg, runner, log),
		runner: runner,
		report: report,
		log:    log,
	}
}

// Ensure returns the path of a runnable tool binary, installing it first if
// needed. A tool that is already installed costs one version probe and
// prints nothing.
func (i *Installer) Ensure(ctx context.Context) (string, error) {
	if path, ok := i.installed(ctx); ok {
		return path, nil
	}

	i.report.Banner(i.cfg.Tool.DisplayName)

	// Nothing is written under Root until the host is known to have a
	// usable runtime.
	rt, err := i.checkRuntime(ctx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(i.cfg.Root, 0o755); err != nil {
		return "", &Error{Kind: KindInstall, Message: "Failed to create " + i.cfg.Root, Err: err}
	}
	unlock, err := acquireLock(ctx, i.cfg.LockPath(), func() {
		i.report.Line("Another bootstrap is in progress; waiting...")
	})
	if err != nil {
		return "", &Error{Kind: KindInstall, Message: "Failed to lock " + i.cfg.LockPath(), Err: err}
	}
	defer unlock()

	// A concurrent bootstrap may have finished while we waited.
	if path, ok := i.installed(ctx); ok {
		return path, nil
	}

	return i.install(ctx, rt)
}

func (i *Installer) installed(ctx context.Context) (string, bool) {
	if path, ok := i.probe.InstalledTool(ctx); ok {
		i.log.Debug().Str("path", path).Msg("using installed tool")
		return path, true
	}
	if path, ok := i.probe.PathTool(ctx); ok {
		i.log.Debug().Str("path", path).Msg("using tool from PATH")
		return path, true
	}
	return "", false
}

func (i *Installer) install(ctx context.Context, rt probe.Runtime) (string, error) {
	tool := i.cfg.Tool
	installer, err := i.checkInstaller(ctx)
	if err != nil {
		return "", err
	}

	i.report.Step("Installing " + tool.Package)
	if err := i.createEnv(ctx, installer, rt); err != nil {
		i.report.Fail()
		return "", err
	}
	if err := i.installApp(ctx, installer); err != nil {
		i.report.Fail()
		return "", err
	}
	i.report.OK("")

	bin := i.cfg.ToolBinary()
	if !exists(bin) {
		return "", &Error{
			Kind:    KindPostcondition,
			Message: tool.Name + " binary not found after install. Please report this issue.",
			Hints:   []string{"Expected: " + bin},
		}
	}

	i.report.Ready(tool.DisplayName)
	return bin, nil
}

func (i *Installer) checkRuntime(ctx context.Context) (probe.Runtime, error) {
	gate := i.cfg.Runtime
	i.report.Step("Checking " + gate.Name)
	rt, ok := i.probe.Runtime(ctx)
	if !ok {
		i.report.Fail()
		return probe.Runtime{}, &Error{
			Kind:    KindEnvironment,
			Message: fmt.Sprintf("%s %d.%d+ is required but not found.", gate.Name, gate.Major, gate.MinMinor),
			Hints:   []string{fmt.Sprintf("Install from %s or via your package manager.", gate.InstallURL)},
		}
	}
	i.report.OK(fmt.Sprintf("%s %s found", gate.Name, rt.Version))
	i.log.Debug().Str("command", rt.Command).Str("path", rt.Path).Stringer("version", rt.Version).Msg("runtime selected")
	return rt, nil
}

func (i *Installer) checkInstaller(ctx context.Context) (string, error) {
	name := i.cfg.Installer.Name
	i.report.Step("Checking " + name)
	if path, ok := i.probe.PackageInstaller(ctx); ok {
		i.report.OK("")
		return path, nil
	}
	i.report.Note("not found")

	i.report.Step(fmt.Sprintf("Installing %s (%s)", name, i.cfg.Installer.Description))
	path, err := i.selfInstall(ctx)
	if err != nil {
		i.report.Fail()
		return "", &Error{
			Kind:    KindInstall,
			Message: "Failed to install " + name,
			Hints:   []string{"Install manually: " + i.manualInstallHint()},
			Err:     err,
		}
	}
	i.report.OK("")
	return path, nil
}

// selfInstall runs the installer's bootstrap script, then probes again.
func (i *Installer) selfInstall(ctx context.Context) (string, error) {
	cmd, err := i.scriptCommand()
	if err != nil {
		return "", err
	}
	i.log.Debug().Stringer("command", cmd).Msg("installing package installer")
	if err := i.runner.Run(ctx, cmd); err != nil {
		return "", err
	}
	path, ok := i.probe.PackageInstaller(ctx)
	if !ok {
		return "", fmt.Errorf("%s not found after install", i.cfg.Installer.Name)
	}
	return path, nil
}

func (i *Installer) scriptCommand() (cmdutil.Command, error) {
	url := i.cfg.InstallerScriptURL()
	env := []string{i.cfg.Installer.InstallDirEnv + "=" + i.cfg.InstallerDir()}
	if i.cfg.Windows() {
		return cmdutil.Command{
			Name: "powershell",
			Args: []string{"-ExecutionPolicy", "ByPass", "-c", fmt.Sprintf("irm %s | iex", url)},
			Env:  env,
		}, nil
	}
	fetch, err := posixCommandLine([]string{"curl", "-LsSf", url})
	if err != nil {
		return cmdutil.Command{}, err
	}
	return cmdutil.Command{
		Name: "sh",
		Args: []string{"-c", fetch + " | sh"},
		Env:  env,
	}, nil
}

func (i *Installer) manualInstallHint() string {
	url := i.cfg.InstallerScriptURL()
	if i.cfg.Windows() {
		return fmt.Sprintf(`powershell -ExecutionPolicy ByPass -c "irm %s | iex"`, url)
	}
	return fmt.Sprintf("curl -LsSf %s | sh", url)
}

// createEnv creates the isolated environment unless it already exists.
func (i *Installer) createEnv(ctx context.Context, installer string, rt probe.Runtime) error {
	dir := i.cfg.EnvDir()
	if exists(dir) {
		i.log.Debug().Str("dir", dir).Msg("isolated environment exists")
		return nil
	}
	if err := os.MkdirAll(i.cfg.Root, 0o755); err != nil {
		return &Error{Kind: KindInstall, Message: "Failed to create virtual environment", Err: err}
	}
	argv := []string{installer, "venv", "--python", rt.Path, dir}
	if err := runFirst(ctx, i.runner, strategiesFor(i.cfg), argv); err != nil {
		return &Error{Kind: KindInstall, Message: "Failed to create virtual environment", Err: err}
	}
	return nil
}

func (i *Installer) installApp(ctx context.Context, installer string) error {
	cmd := cmdutil.Command{
		Name: installer,
		Args: []string{"pip", "install", "--python", i.cfg.EnvDir(), i.cfg.Tool.Source},
	}
	i.log.Debug().Stringer("command", cmd).Msg("installing application")
	if err := i.runner.Run(ctx, cmd); err != nil {
		return &Error{Kind: KindInstall, Message: "Failed to install " + i.cfg.Tool.Package, Err: err}
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
