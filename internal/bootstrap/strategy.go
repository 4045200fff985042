package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/otter-ml/otter-launcher/internal/cmdutil"
	"github.com/otter-ml/otter-launcher/internal/config"
	"mvdan.cc/sh/v3/syntax"
)

// strategy is one way of invoking a command line.
type strategy struct {
	name  string
	build func(argv []string) (cmdutil.Command, error)
}

// strategiesFor maps configured strategy names to invocation builders.
func strategiesFor(cfg config.Config) []strategy {
	var list []strategy
	for _, name := range cfg.Installer.EnvStrategies {
		switch name {
		case config.StrategyExec:
			list = append(list, strategy{name: name, build: execArgv})
		case config.StrategyShell:
			if cfg.Windows() {
				list = append(list, strategy{name: name, build: windowsShell})
			} else {
				list = append(list, strategy{name: name, build: posixShell})
			}
		}
	}
	return list
}

// runFirst tries each strategy in order and stops at the first success.
func runFirst(ctx context.Context, runner cmdutil.Runner, strategies []strategy, argv []string) error {
	if len(strategies) == 0 {
		return errors.New("no invocation strategies configured")
	}
	var errs []error
	for _, s := range strategies {
		cmd, err := s.build(argv)
		if err == nil {
			err = runner.Run(ctx, cmd)
		}
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
	}
	return errors.Join(errs...)
}

func execArgv(argv []string) (cmdutil.Command, error) {
	return cmdutil.Command{Name: argv[0], Args: argv[1:]}, nil
}

func posixShell(argv []string) (cmdutil.Command, error) {
	line, err := posixCommandLine(argv)
	if err != nil {
		return cmdutil.Command{}, err
	}
	return cmdutil.Command{Name: "sh", Args: []string{"-c", line}}, nil
}

func windowsShell(argv []string) (cmdutil.Command, error) {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
	}
	return cmdutil.Command{Name: "cmd", Args: []string{"/C", strings.Join(quoted, " ")}}, nil
}

func posixCommandLine(argv []string) (string, error) {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		q, err := syntax.Quote(arg, syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("quote %q: %w", arg, err)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " "), nil
}
