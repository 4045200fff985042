package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/otter-ml/otter-launcher/internal/bootstrap"
	"github.com/otter-ml/otter-launcher/internal/cmdutil"
	"github.com/otter-ml/otter-launcher/internal/config"
	"github.com/otter-ml/otter-launcher/internal/launcher"
	"github.com/otter-ml/otter-launcher/internal/logging"
	"github.com/otter-ml/otter-launcher/internal/version"
	"github.com/spf13/cobra"
)

// host is everything the launcher reads from its surroundings.
type host struct {
	home   func() (string, error)
	self   func() (string, error)
	getenv func(string) string
	goos   string
	runner cmdutil.Runner
	stdio  launcher.Stdio
}

func defaultHost() host {
	return host{
		home:   os.UserHomeDir,
		self:   executable,
		getenv: os.Getenv,
		goos:   runtime.GOOS,
		runner: cmdutil.Exec{},
		stdio:  launcher.Inherit(),
	}
}

// Execute bootstraps the tool, runs it with the process arguments and
// returns the exit code to terminate with.
func Execute() int {
	// A launcher started from Explorer must still forward to the tool.
	cobra.MousetrapHelpText = ""
	return run(context.Background(), os.Args[1:], defaultHost())
}

func run(ctx context.Context, args []string, h host) int {
	var code int
	cmd := newRootCommand(h, args, &code)
	cmd.SetArgs([]string{})
	cmd.SetIn(h.stdio.Stdin)
	cmd.SetOut(h.stdio.Stdout)
	cmd.SetErr(h.stdio.Stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		var bootErr *bootstrap.Error
		if errors.As(err, &bootErr) {
			bootstrap.NewReporter(h.stdio.Stderr).Diagnose(bootErr)
		} else {
			fmt.Fprintf(h.stdio.Stderr, "%s: %v\n", cmd.Name(), err)
		}
		return 1
	}
	return code
}

// newRootCommand builds the single launcher command. The forwarded
// arguments are captured here rather than parsed by cobra so that no
// argument, including --help or a completion request, is interpreted.
func newRootCommand(h host, forward []string, code *int) *cobra.Command {
	return &cobra.Command{
		Use:                "otter [args...]",
		Short:              "Install otter on first use and run it with the given arguments",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := launch(cmd.Context(), h, forward)
			*code = c
			return err
		},
	}
}

func launch(ctx context.Context, h host, args []string) (int, error) {
	log := logging.Setup(h.stdio.Stderr, h.getenv(logging.EnvLogLevel))

	home, err := h.home()
	if err != nil {
		return 1, fmt.Errorf("locate home directory: %w", err)
	}
	cfg, err := config.Load(home, h.goos, h.getenv)
	if err != nil {
		return 1, err
	}
	if self, err := h.self(); err == nil {
		cfg.Self = self
	}
	log.Debug().
		Str("launcher_version", version.String()).
		Str("root", cfg.Root).
		Str("goos", cfg.GOOS).
		Msg("starting")

	inst := bootstrap.New(cfg, h.runner, bootstrap.NewReporter(h.stdio.Stderr), log)
	path, err := inst.Ensure(ctx)
	if err != nil {
		return 1, err
	}

	log.Debug().Str("path", path).Strs("args", args).Msg("launching")
	return launcher.Run(ctx, path, args, h.stdio)
}

func executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(exe)
}
