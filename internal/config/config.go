package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	// EnvHome relocates the launcher root directory.
	EnvHome = "OTTER_HOME"

	fileName   = "config.toml"
	envDirName = "venv"
	lockName   = ".bootstrap.lock"
)

// Environment creation strategies.
const (
	StrategyExec  = "exec"
	StrategyShell = "shell"
)

// Config captures launcher settings. Values other than the file-backed
// blocks are derived from the host and fixed once Load returns.
type Config struct {
	Tool      ToolBlock      `toml:"tool"`
	Runtime   RuntimeBlock   `toml:"runtime"`
	Installer InstallerBlock `toml:"installer"`

	// Home is the user's home directory.
	Home string `toml:"-"`
	// Root holds the isolated environment and launcher state.
	Root string `toml:"-"`
	// GOOS selects platform conventions.
	GOOS string `toml:"-"`
	// Self is the running launcher executable, if known.
	Self string `toml:"-"`
}

// ToolBlock describes the application being launched.
type ToolBlock struct {
	Name        string `toml:"name"`
	DisplayName string `toml:"display_name"`
	Package     string `toml:"package"`
	Source      string `toml:"source"`
}

// RuntimeBlock is the version gate for the host interpreter.
type RuntimeBlock struct {
	Name       string   `toml:"name"`
	Candidates []string `toml:"candidates"`
	Major      int      `toml:"major"`
	MinMinor   int      `toml:"min_minor"`
	InstallURL string   `toml:"install_url"`
}

// InstallerBlock describes the companion package installer.
type InstallerBlock struct {
	Name             string   `toml:"name"`
	Description      string   `toml:"description"`
	Candidates       []string `toml:"candidates"`
	WindowsExtras    []string `toml:"windows_candidates"`
	ScriptURL        string   `toml:"script_url"`
	WindowsScriptURL string   `toml:"windows_script_url"`
	InstallDir       string   `toml:"install_dir"`
	InstallDirEnv    string   `toml:"install_dir_env"`
	EnvStrategies    []string `toml:"env_strategies"`
}

var (
	// ErrMissingToolName indicates the config omitted tool.name.
	ErrMissingToolName = errors.New("config.tool.name must be set")
	// ErrMissingSource indicates the config omitted tool.source.
	ErrMissingSource = errors.New("config.tool.source must be set")
	// ErrNoRuntimeCandidates indicates runtime.candidates is empty.
	ErrNoRuntimeCandidates = errors.New("config.runtime.candidates must list at least one command")
	// ErrNoInstallerCandidates indicates installer.candidates is empty.
	ErrNoInstallerCandidates = errors.New("config.installer.candidates must list at least one path")
	// ErrInvalidStrategy indicates an unknown environment creation strategy.
	ErrInvalidStrategy = errors.New("config.installer.env_strategies entries must be exec or shell")
)

// Default returns the baseline configuration for a host.
func Default(home, goos string) Config {
	cfg := Config{
		Home: home,
		Root: filepath.Join(home, ".otter"),
		GOOS: goos,
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	c.Tool.applyDefaults()
	c.Runtime.applyDefaults()
	c.Installer.applyDefaults()
}

func (t *ToolBlock) applyDefaults() {
	if t.Name == "" {
		t.Name = "otter"
	}
	if t.DisplayName == "" {
		t.DisplayName = "Otter"
	}
	if t.Package == "" {
		t.Package = "otter-ml"
	}
	if t.Source == "" {
		t.Source = "git+https://github.com/otter-ml/otter.git"
	}
}

func (r *RuntimeBlock) applyDefaults() {
	if r.Name == "" {
		r.Name = "Python"
	}
	if len(r.Candidates) == 0 {
		r.Candidates = []string{"python3", "python"}
	}
	if r.Major <= 0 {
		r.Major = 3
	}
	if r.MinMinor <= 0 {
		r.MinMinor = 10
	}
	if r.InstallURL == "" {
		r.InstallURL = "https://python.org"
	}
}

func (i *InstallerBlock) applyDefaults() {
	if i.Name == "" {
		i.Name = "uv"
	}
	if i.Description == "" {
		i.Description = "fast Python installer"
	}
	if len(i.Candidates) == 0 {
		i.Candidates = []string{"uv", "~/.local/bin/uv", "~/.cargo/bin/uv"}
	}
	if len(i.WindowsExtras) == 0 {
		i.WindowsExtras = []string{"~/.local/bin/uv.exe", "~/AppData/Local/uv/uv.exe"}
	}
	if i.ScriptURL == "" {
		i.ScriptURL = "https://astral.sh/uv/install.sh"
	}
	if i.WindowsScriptURL == "" {
		i.WindowsScriptURL = "https://astral.sh/uv/install.ps1"
	}
	if i.InstallDir == "" {
		i.InstallDir = "~/.local/bin"
	}
	if i.InstallDirEnv == "" {
		i.InstallDirEnv = "UV_INSTALL_DIR"
	}
	if len(i.EnvStrategies) == 0 {
		i.EnvStrategies = []string{StrategyExec}
	}
	for n, s := range i.EnvStrategies {
		i.EnvStrategies[n] = strings.ToLower(strings.TrimSpace(s))
	}
}

// Validate ensures the configuration can drive a bootstrap.
func (c Config) Validate() error {
	if c.Tool.Name == "" {
		return ErrMissingToolName
	}
	if c.Tool.Source == "" {
		return ErrMissingSource
	}
	if len(c.Runtime.Candidates) == 0 {
		return ErrNoRuntimeCandidates
	}
	if len(c.Installer.Candidates) == 0 {
		return ErrNoInstallerCandidates
	}
	for _, s := range c.Installer.EnvStrategies {
		switch s {
		case StrategyExec, StrategyShell:
		default:
			return fmt.Errorf("%w (got %q)", ErrInvalidStrategy, s)
		}
	}
	return nil
}

// Load builds the configuration for the current host. The root defaults to
// ~/.otter unless EnvHome is set; a config.toml inside the root, if present,
// overrides the defaults.
func Load(home, goos string, getenv func(string) string) (Config, error) {
	cfg := Config{Home: home, GOOS: goos}
	cfg.Root = filepath.Join(home, ".otter")
	if getenv != nil {
		if root := strings.TrimSpace(getenv(EnvHome)); root != "" {
			cfg.Root = cfg.expand(root)
		}
	}

	path := cfg.Path()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Path is the location of the optional config file.
func (c Config) Path() string {
	return filepath.Join(c.Root, fileName)
}

// Windows reports whether Windows path conventions apply.
func (c Config) Windows() bool {
	return c.GOOS == "windows"
}

// EnvDir is the isolated environment directory.
func (c Config) EnvDir() string {
	return filepath.Join(c.Root, envDirName)
}

// LockPath is the advisory lock serialising bootstraps.
func (c Config) LockPath() string {
	return filepath.Join(c.Root, lockName)
}

// ToolBinary is the tool's entry point inside the isolated environment.
func (c Config) ToolBinary() string {
	if c.Windows() {
		return filepath.Join(c.EnvDir(), "Scripts", c.Tool.Name+".exe")
	}
	return filepath.Join(c.EnvDir(), "bin", c.Tool.Name)
}

// InstallerCandidates lists package installer locations in probe order.
// Bare command names are left for search-path resolution.
func (c Config) InstallerCandidates() []string {
	list := append([]string(nil), c.Installer.Candidates...)
	if c.Windows() {
		list = append(list, c.Installer.WindowsExtras...)
	}
	for n, p := range list {
		list[n] = c.expand(p)
	}
	return list
}

// InstallerDir is the target directory handed to the installer's own script.
func (c Config) InstallerDir() string {
	return c.expand(c.Installer.InstallDir)
}

// InstallerScriptURL picks the bootstrap script for the host OS family.
func (c Config) InstallerScriptURL() string {
	if c.Windows() {
		return c.Installer.WindowsScriptURL
	}
	return c.Installer.ScriptURL
}

func (c Config) expand(p string) string {
	if p == "~" {
		return c.Home
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		return filepath.Join(c.Home, filepath.FromSlash(rest))
	}
	return p
}
