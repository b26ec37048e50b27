package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/standardbeagle/vbsym/internal/debug"
	vberrors "github.com/standardbeagle/vbsym/internal/errors"
)

const (
	KDLFileName  = ".vbsym.kdl"
	TOMLFileName = ".vbsym.toml"

	DefaultMaxScopeLines  = 10000
	DefaultMaxFileSize    = 4 * 1024 * 1024
	DefaultTreeSuffix     = ".tree.json"
	DefaultDebounceMs     = 200
	DefaultFuzzyThreshold = 0.7
	DefaultMaxItems       = 200
)

// DefaultInclude lists the VB6 source kinds that carry code.
var DefaultInclude = []string{"**/*.bas", "**/*.cls", "**/*.frm", "**/*.ctl", "**/*.dsr"}

var DefaultExclude = []string{"**/.git/**"}

type Config struct {
	Root       string
	Index      Index
	Workspace  Workspace
	Completion Completion
}

type Index struct {
	MaxScopeLines int   // lines a single scope may contribute to the line index
	MaxFileSize   int64 // bytes; larger sources are skipped
}

type Workspace struct {
	Include          []string
	Exclude          []string
	TreeSuffix       string // sibling file holding a source's tree dump
	Workers          int    // 0 = NumCPU
	DebounceMs       int
	RespectGitignore bool
}

type Completion struct {
	Fuzzy          bool
	FuzzyThreshold float64
	MaxItems       int
	Keywords       bool
}

// Debounce returns the rebuild coalescing window.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Workspace.DebounceMs) * time.Millisecond
}

// TreePath returns the tree dump path for a source file.
func (c *Config) TreePath(source string) string {
	return source + c.Workspace.TreeSuffix
}

// newDefaultConfig returns the scalar defaults. Include and Exclude stay
// empty so a merge can tell whether a file set them.
func newDefaultConfig(root string) *Config {
	return &Config{
		Root: root,
		Index: Index{
			MaxScopeLines: DefaultMaxScopeLines,
			MaxFileSize:   DefaultMaxFileSize,
		},
		Workspace: Workspace{
			TreeSuffix:       DefaultTreeSuffix,
			DebounceMs:       DefaultDebounceMs,
			RespectGitignore: true,
		},
		Completion: Completion{
			Fuzzy:          true,
			FuzzyThreshold: DefaultFuzzyThreshold,
			MaxItems:       DefaultMaxItems,
			Keywords:       true,
		},
	}
}

// Default returns a validated configuration for root with every default
// applied.
func Default(root string) *Config {
	cfg := newDefaultConfig(root)
	NewValidator().setSmartDefaults(cfg)
	return cfg
}

// Load reads the configuration for the current directory.
func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot resolves the configuration for rootDir. An explicit path is
// read as-is. Otherwise the global ~/.vbsym.kdl is merged under the project's
// .vbsym.kdl, or .vbsym.toml when no KDL file exists.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}
	absRoot, err := filepath.Abs(searchDir)
	if err != nil {
		absRoot = searchDir
	}

	var cfg *Config
	if path != "" {
		cfg, err = loadFile(path, absRoot)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = loadLayered(absRoot)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Workspace.RespectGitignore {
		if patterns, err := GitignoreExclusions(cfg.Root); err != nil {
			debug.LogConfig("ignoring unreadable .gitignore in %s: %v\n", cfg.Root, err)
		} else {
			cfg.Workspace.Exclude = DeduplicatePatterns(append(cfg.Workspace.Exclude, patterns...))
		}
	}

	if err := NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	debug.LogConfig("config root=%s include=%v exclude=%v\n", cfg.Root, cfg.Workspace.Include, cfg.Workspace.Exclude)
	return cfg, nil
}

func loadFile(path, root string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, vberrors.NewFileError("read", path, err)
	}
	var cfg *Config
	if filepath.Ext(path) == ".toml" {
		cfg, err = parseTOML(content, root)
	} else {
		cfg, err = parseKDL(string(content), root)
	}
	if err != nil {
		return nil, err
	}
	cfg.Root = resolveRoot(cfg.Root, filepath.Dir(path), root)
	return cfg, nil
}

func loadLayered(root string) (*Config, error) {
	var base *Config
	if home, err := os.UserHomeDir(); err == nil && home != root {
		globalCfg, err := LoadKDL(home)
		if err != nil {
			debug.LogConfig("ignoring global config: %v\n", err)
		} else {
			base = globalCfg
		}
	}

	project, err := LoadKDL(root)
	if err != nil {
		return nil, err
	}
	if project == nil {
		if project, err = LoadTOML(root); err != nil {
			return nil, err
		}
	}

	switch {
	case base != nil && project != nil:
		return mergeConfigs(base, project), nil
	case project != nil:
		return project, nil
	case base != nil:
		base.Root = root
		return base, nil
	}
	return newDefaultConfig(root), nil
}

// resolveRoot makes a configured root absolute relative to the directory of
// the file that set it.
func resolveRoot(configured, configDir, fallback string) string {
	if configured == "" {
		return fallback
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(configDir, configured))
}

// mergeConfigs lays a project config over a base config. Project settings
// win, excludes are unioned, includes come from the base only when the
// project sets none.
func mergeConfigs(base, project *Config) *Config {
	merged := *project
	merged.Workspace.Exclude = DeduplicatePatterns(append(append([]string(nil), base.Workspace.Exclude...), project.Workspace.Exclude...))
	if len(project.Workspace.Include) == 0 && len(base.Workspace.Include) > 0 {
		merged.Workspace.Include = base.Workspace.Include
	}
	return &merged
}

// DeduplicatePatterns drops repeated patterns, keeping first occurrences.
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func defaultWorkers() int {
	return max(1, runtime.NumCPU())
}
