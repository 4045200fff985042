// Package probe detects what the host already provides: an installed tool,
// a compatible interpreter, and the package installer.
//
// Every probe is best-effort. Missing binaries, failing commands and
// unparsable output all collapse to a negative result; absence is an expected
// state that drives the next bootstrap step, never an error.
package probe

import (
	"context"
	"os"
	"path/filepath"

	"github.com/otter-ml/otter-launcher/internal/cmdutil"
	"github.com/otter-ml/otter-launcher/internal/config"
	"github.com/rs/zerolog"
)

const versionFlag = "--version"

// Runtime is an interpreter that passed the version gate.
type Runtime struct {
	Command string
	Path    string
	Version Version
}

// Prober runs probes for one configuration.
type Prober struct {
	cfg    config.Config
	runner cmdutil.Runner
	log    zerolog.Logger
}

func New(cfg config.Config, runner cmdutil.Runner, log zerolog.Logger) *Prober {
	return &Prober{cfg: cfg, runner: runner, log: log}
}

// InstalledTool reports the tool binary inside the isolated environment if it
// exists and answers a version query.
func (p *Prober) InstalledTool(ctx context.Context) (string, bool) {
	bin := p.cfg.ToolBinary()
	if !isFile(bin) {
		p.log.Debug().Str("path", bin).Msg("installed tool missing")
		return "", false
	}
	if !p.answers(ctx, bin) {
		return "", false
	}
	return bin, true
}

// PathTool reports an equivalently named tool found on the search path.
// The launcher itself is never accepted.
func (p *Prober) PathTool(ctx context.Context) (string, bool) {
	path, err := p.runner.LookPath(p.cfg.Tool.Name)
	if err != nil {
		p.log.Debug().Err(err).Str("name", p.cfg.Tool.Name).Msg("tool not on PATH")
		return "", false
	}
	if p.isSelf(path) {
		p.log.Debug().Str("path", path).Msg("skipping launcher found on PATH")
		return "", false
	}
	if !p.answers(ctx, path) {
		return "", false
	}
	return path, true
}

// Runtime returns the first candidate interpreter whose version satisfies the
// configured gate. Candidate order is preference order.
func (p *Prober) Runtime(ctx context.Context) (Runtime, bool) {
	gate := p.cfg.Runtime
	for _, candidate := range gate.Candidates {
		out, err := p.runner.Output(ctx, cmdutil.Command{Name: candidate, Args: []string{versionFlag}})
		if err != nil {
			p.log.Debug().Err(err).Str("candidate", candidate).Msg("runtime probe failed")
			continue
		}
		v, ok := ParseVersion(gate.Name, out)
		if !ok {
			p.log.Debug().Str("candidate", candidate).Str("output", out).Msg("unparsable runtime version")
			continue
		}
		if !v.Satisfies(gate.Major, gate.MinMinor) {
			p.log.Debug().Str("candidate", candidate).Stringer("version", v).Msg("runtime too old or incompatible")
			continue
		}
		path, err := p.runner.LookPath(candidate)
		if err != nil {
			path = candidate
		}
		return Runtime{Command: candidate, Path: path, Version: v}, true
	}
	return Runtime{}, false
}

// PackageInstaller returns the first installer candidate that answers a
// version query.
func (p *Prober) PackageInstaller(ctx context.Context) (string, bool) {
	for _, candidate := range p.cfg.InstallerCandidates() {
		if p.answers(ctx, candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (p *Prober) answers(ctx context.Context, path string) bool {
	out, err := p.runner.Output(ctx, cmdutil.Command{Name: path, Args: []string{versionFlag}})
	if err != nil {
		p.log.Debug().Err(err).Str("path", path).Msg("version probe failed")
		return false
	}
	p.log.Debug().Str("path", path).Str("output", out).Msg("version probe ok")
	return true
}

func (p *Prober) isSelf(path string) bool {
	if p.cfg.Self == "" {
		return false
	}
	return sameFile(path, p.cfg.Self)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func sameFile(a, b string) bool {
	if resolved, err := filepath.EvalSymlinks(a); err == nil {
		a = resolved
	}
	if resolved, err := filepath.EvalSymlinks(b); err == nil {
		b = resolved
	}
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, errA := os.Stat(a)
	bi, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
