package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"abigen/internal/layout"
	"abigen/internal/report"
)

const manifestName = "abigen.toml"

const noManifestMessage = "no " + manifestName + " found\nplease name the program description explicitly, e.g.:\n  abigen plan path/to/types.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Project  projectSection  `toml:"project"`
	Generate generateSection `toml:"generate"`
	Cache    cacheSection    `toml:"cache"`
}

type projectSection struct {
	Name    string `toml:"name"`
	Program string `toml:"program"`
}

type generateSection struct {
	Targets []string `toml:"targets"`
	Roots   []string `toml:"roots"`
	Format  string   `toml:"format"`
	ABI     string   `toml:"abi"`
}

type cacheSection struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	path, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := readManifest(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

func readManifest(path string) (*projectManifest, error) {
	cfg, err := loadProjectConfig(path)
	if err != nil {
		return nil, err
	}
	return &projectManifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return projectConfig{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if !meta.IsDefined("project") {
		return projectConfig{}, fmt.Errorf("%s: missing [project]", path)
	}
	if !meta.IsDefined("project", "name") || strings.TrimSpace(cfg.Project.Name) == "" {
		return projectConfig{}, fmt.Errorf("%s: missing [project].name", path)
	}
	if !meta.IsDefined("project", "program") || strings.TrimSpace(cfg.Project.Program) == "" {
		return projectConfig{}, fmt.Errorf("%s: missing [project].program", path)
	}
	if meta.IsDefined("generate", "targets") {
		if err := checkTargets(cfg.Generate.Targets); err != nil {
			return projectConfig{}, fmt.Errorf("%s: [generate].targets: %w", path, err)
		}
	}
	if meta.IsDefined("generate", "format") {
		if _, err := report.ParseFormat(cfg.Generate.Format); err != nil {
			return projectConfig{}, fmt.Errorf("%s: [generate].format: %w", path, err)
		}
	}
	if meta.IsDefined("generate", "abi") {
		if _, err := layout.LookupTarget(cfg.Generate.ABI); err != nil {
			return projectConfig{}, fmt.Errorf("%s: [generate].abi: %w", path, err)
		}
	}
	if meta.IsDefined("cache", "dir") && strings.TrimSpace(cfg.Cache.Dir) == "" {
		return projectConfig{}, fmt.Errorf("%s: [cache].dir is empty", path)
	}
	return cfg, nil
}

// checkTargets rejects blank and repeated target names.
func checkTargets(targets []string) error {
	seen := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if strings.TrimSpace(t) == "" {
			return errors.New("empty target name")
		}
		if _, dup := seen[t]; dup {
			return fmt.Errorf("target %q listed twice", t)
		}
		seen[t] = struct{}{}
	}
	return nil
}

// programPath resolves [project].program against the manifest directory.
func (m *projectManifest) programPath() string {
	p := filepath.FromSlash(strings.TrimSpace(m.Config.Project.Program))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, p)
}

// cacheDir resolves [cache].dir against the manifest directory. Empty means
// the user cache directory.
func (m *projectManifest) cacheDir() string {
	d := strings.TrimSpace(m.Config.Cache.Dir)
	if d == "" || filepath.IsAbs(d) {
		return d
	}
	return filepath.Join(m.Root, filepath.FromSlash(d))
}

// invocation is what a command operates on: a program description and the
// manifest it came from, if any.
type invocation struct {
	program  string
	manifest *projectManifest
}

// resolveInvocation maps the optional positional argument to a program.
// No argument or a directory means manifest discovery; a file named
// abigen.toml is read as a manifest; any other file is the program itself.
func resolveInvocation(args []string) (invocation, error) {
	start := "."
	if len(args) > 0 && args[0] != "" {
		st, err := os.Stat(args[0])
		if err != nil {
			return invocation{}, fmt.Errorf("failed to stat %q: %w", args[0], err)
		}
		if !st.IsDir() {
			if filepath.Base(args[0]) == manifestName {
				m, err := readManifest(args[0])
				if err != nil {
					return invocation{}, err
				}
				return invocation{program: m.programPath(), manifest: m}, nil
			}
			return invocation{program: args[0]}, nil
		}
		start = args[0]
	}
	m, ok, err := loadProjectManifest(start)
	if err != nil {
		return invocation{}, err
	}
	if !ok {
		return invocation{}, errors.New(noManifestMessage)
	}
	return invocation{program: m.programPath(), manifest: m}, nil
}
