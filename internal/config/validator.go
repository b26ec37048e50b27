package config

import (
	"errors"
	"fmt"
	"strconv"

	vberrors "github.com/standardbeagle/vbsym/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.Root == "" {
		return vberrors.NewConfigError("root", "", errors.New("project root cannot be empty"))
	}
	if err := v.validateIndexConfig(&cfg.Index); err != nil {
		return err
	}
	if err := v.validateWorkspaceConfig(&cfg.Workspace); err != nil {
		return err
	}
	if err := v.validateCompletionConfig(&cfg.Completion); err != nil {
		return err
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateIndexConfig(index *Index) error {
	if index.MaxScopeLines <= 0 {
		return vberrors.NewConfigError("index.max_scope_lines", strconv.Itoa(index.MaxScopeLines),
			errors.New("must be positive"))
	}
	if index.MaxFileSize <= 0 {
		return vberrors.NewConfigError("index.max_file_size", strconv.FormatInt(index.MaxFileSize, 10),
			errors.New("must be positive"))
	}
	return nil
}

func (v *Validator) validateWorkspaceConfig(ws *Workspace) error {
	if ws.TreeSuffix == "" {
		return vberrors.NewConfigError("workspace.tree_suffix", "", errors.New("cannot be empty"))
	}
	// Workers: 0 means auto-detect (will be set by smart defaults)
	if ws.Workers < 0 {
		return vberrors.NewConfigError("workspace.workers", strconv.Itoa(ws.Workers),
			errors.New("cannot be negative"))
	}
	if ws.DebounceMs < 0 {
		return vberrors.NewConfigError("workspace.debounce_ms", strconv.Itoa(ws.DebounceMs),
			errors.New("cannot be negative"))
	}
	return nil
}

func (v *Validator) validateCompletionConfig(c *Completion) error {
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 1 {
		return vberrors.NewConfigError("completion.fuzzy_threshold", fmt.Sprint(c.FuzzyThreshold),
			errors.New("must be between 0 and 1"))
	}
	if c.MaxItems <= 0 {
		return vberrors.NewConfigError("completion.max_items", strconv.Itoa(c.MaxItems),
			errors.New("must be positive"))
	}
	return nil
}

// setSmartDefaults applies smart defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Workspace.Workers == 0 {
		cfg.Workspace.Workers = defaultWorkers()
	}
	if len(cfg.Workspace.Include) == 0 {
		cfg.Workspace.Include = append([]string(nil), DefaultInclude...)
	}
	cfg.Workspace.Exclude = DeduplicatePatterns(append(append([]string(nil), DefaultExclude...), cfg.Workspace.Exclude...))
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
