package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	vberrors "github.com/standardbeagle/vbsym/internal/errors"
)

// tomlFile mirrors .vbsym.toml. Pointer fields distinguish unset keys from
// zero values so defaults survive.
type tomlFile struct {
	Root  string `toml:"root"`
	Index struct {
		MaxScopeLines *int `toml:"max_scope_lines"`
		MaxFileSize   any  `toml:"max_file_size"`
	} `toml:"index"`
	Workspace struct {
		Include          []string `toml:"include"`
		Exclude          []string `toml:"exclude"`
		TreeSuffix       *string  `toml:"tree_suffix"`
		Workers          *int     `toml:"workers"`
		DebounceMs       *int     `toml:"debounce_ms"`
		RespectGitignore *bool    `toml:"respect_gitignore"`
	} `toml:"workspace"`
	Completion struct {
		Fuzzy          *bool    `toml:"fuzzy"`
		FuzzyThreshold *float64 `toml:"fuzzy_threshold"`
		MaxItems       *int     `toml:"max_items"`
		Keywords       *bool    `toml:"keywords"`
	} `toml:"completion"`
}

// LoadTOML loads .vbsym.toml from dir. It returns nil without error when the
// file does not exist.
func LoadTOML(dir string) (*Config, error) {
	tomlPath := filepath.Join(dir, TOMLFileName)
	content, err := os.ReadFile(tomlPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, vberrors.NewFileError("read", tomlPath, err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}
	cfg, err := parseTOML(content, absDir)
	if err != nil {
		return nil, err
	}
	cfg.Root = resolveRoot(cfg.Root, absDir, absDir)
	return cfg, nil
}

func parseTOML(content []byte, root string) (*Config, error) {
	var f tomlFile
	if err := toml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	cfg := newDefaultConfig(root)
	if f.Root != "" {
		cfg.Root = f.Root
	}

	setInt(&cfg.Index.MaxScopeLines, f.Index.MaxScopeLines)
	switch v := f.Index.MaxFileSize.(type) {
	case nil:
	case int64:
		cfg.Index.MaxFileSize = v
	case string:
		size, err := parseSize(v)
		if err != nil {
			return nil, vberrors.NewConfigError("index.max_file_size", v, err)
		}
		cfg.Index.MaxFileSize = size
	default:
		return nil, vberrors.NewConfigError("index.max_file_size", fmt.Sprint(v),
			fmt.Errorf("expected a byte count or size string"))
	}

	cfg.Workspace.Include = f.Workspace.Include
	cfg.Workspace.Exclude = f.Workspace.Exclude
	if f.Workspace.TreeSuffix != nil {
		cfg.Workspace.TreeSuffix = *f.Workspace.TreeSuffix
	}
	setInt(&cfg.Workspace.Workers, f.Workspace.Workers)
	setInt(&cfg.Workspace.DebounceMs, f.Workspace.DebounceMs)
	setBool(&cfg.Workspace.RespectGitignore, f.Workspace.RespectGitignore)

	setBool(&cfg.Completion.Fuzzy, f.Completion.Fuzzy)
	if f.Completion.FuzzyThreshold != nil {
		cfg.Completion.FuzzyThreshold = *f.Completion.FuzzyThreshold
	}
	setInt(&cfg.Completion.MaxItems, f.Completion.MaxItems)
	setBool(&cfg.Completion.Keywords, f.Completion.Keywords)
	return cfg, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
