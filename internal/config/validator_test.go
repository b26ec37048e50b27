package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vberrors "github.com/standardbeagle/vbsym/internal/errors"
)

func TestValidateAndSetDefaults(t *testing.T) {
	cfg := newDefaultConfig("/test/root")
	cfg.Workspace.Exclude = []string{"**/old/**"}

	err := NewValidator().ValidateAndSetDefaults(cfg)
	if err != nil {
		t.Fatalf("ValidateAndSetDefaults failed: %v", err)
	}

	if cfg.Workspace.Workers < 1 {
		t.Errorf("Workers should have been set to the CPU count, got %d", cfg.Workspace.Workers)
	}
	if len(cfg.Workspace.Include) != len(DefaultInclude) {
		t.Errorf("Include should default to the VB source kinds, got %v", cfg.Workspace.Include)
	}
	if want := []string{"**/.git/**", "**/old/**"}; !equalStrings(cfg.Workspace.Exclude, want) {
		t.Errorf("Exclude = %v, want %v", cfg.Workspace.Exclude, want)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty root", func(c *Config) { c.Root = "" }, "root"},
		{"scope lines", func(c *Config) { c.Index.MaxScopeLines = 0 }, "index.max_scope_lines"},
		{"file size", func(c *Config) { c.Index.MaxFileSize = -1 }, "index.max_file_size"},
		{"tree suffix", func(c *Config) { c.Workspace.TreeSuffix = "" }, "workspace.tree_suffix"},
		{"workers", func(c *Config) { c.Workspace.Workers = -2 }, "workspace.workers"},
		{"debounce", func(c *Config) { c.Workspace.DebounceMs = -1 }, "workspace.debounce_ms"},
		{"threshold low", func(c *Config) { c.Completion.FuzzyThreshold = -0.1 }, "completion.fuzzy_threshold"},
		{"threshold high", func(c *Config) { c.Completion.FuzzyThreshold = 1.01 }, "completion.fuzzy_threshold"},
		{"max items", func(c *Config) { c.Completion.MaxItems = 0 }, "completion.max_items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefaultConfig("/p")
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			var cfgErr *vberrors.ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestValidateAcceptsBoundaryThresholds(t *testing.T) {
	for _, th := range []float64{0, 1} {
		cfg := newDefaultConfig("/p")
		cfg.Completion.FuzzyThreshold = th
		assert.NoError(t, ValidateConfig(cfg))
	}
}

func TestDefault(t *testing.T) {
	cfg := Default("/p")
	assert.Equal(t, DefaultInclude, cfg.Workspace.Include)
	assert.Equal(t, DefaultExclude, cfg.Workspace.Exclude)
	assert.Positive(t, cfg.Workspace.Workers)
}
