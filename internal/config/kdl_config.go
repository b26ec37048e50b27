package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/vbsym/internal/debug"
	vberrors "github.com/standardbeagle/vbsym/internal/errors"
)

// LoadKDL loads .vbsym.kdl from dir. It returns nil without error when the
// file does not exist.
func LoadKDL(dir string) (*Config, error) {
	kdlPath := filepath.Join(dir, KDLFileName)
	content, err := os.ReadFile(kdlPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, vberrors.NewFileError("read", kdlPath, err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}
	cfg, err := parseKDL(string(content), absDir)
	if err != nil {
		return nil, err
	}
	cfg.Root = resolveRoot(cfg.Root, absDir, absDir)
	return cfg, nil
}

// parseKDL walks the document model:
//
//	root "."
//	index { max_scope_lines 10000; max_file_size "4MB" }
//	workspace { include "**/*.bas"; exclude "**/old/**"; tree_suffix ".tree.json" }
//	completion { fuzzy true; fuzzy_threshold 0.7 }
func parseKDL(content string, root string) (*Config, error) {
	cfg := newDefaultConfig(root)

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "root":
			if s, ok := firstStringArg(n); ok {
				cfg.Root = s
			}
		case "index":
			for _, cn := range n.Children {
				if err := parseIndexNode(cfg, cn); err != nil {
					return nil, err
				}
			}
		case "workspace":
			for _, cn := range n.Children {
				parseWorkspaceNode(cfg, cn)
			}
		case "completion":
			for _, cn := range n.Children {
				parseCompletionNode(cfg, cn)
			}
		default:
			debug.LogConfig("unknown config section %q\n", nodeName(n))
		}
	}
	return cfg, nil
}

func parseIndexNode(cfg *Config, n *document.Node) error {
	switch nodeName(n) {
	case "max_scope_lines":
		if v, ok := firstIntArg(n); ok {
			cfg.Index.MaxScopeLines = v
		}
	case "max_file_size":
		if v, ok := firstIntArg(n); ok {
			cfg.Index.MaxFileSize = int64(v)
		}
		if s, ok := firstStringArg(n); ok {
			size, err := parseSize(s)
			if err != nil {
				return vberrors.NewConfigError("index.max_file_size", s, err)
			}
			cfg.Index.MaxFileSize = size
		}
	}
	return nil
}

func parseWorkspaceNode(cfg *Config, n *document.Node) {
	switch nodeName(n) {
	case "include":
		cfg.Workspace.Include = append(cfg.Workspace.Include, collectStringArgs(n)...)
	case "exclude":
		cfg.Workspace.Exclude = append(cfg.Workspace.Exclude, collectStringArgs(n)...)
	case "tree_suffix":
		assignSimpleString(n, "tree_suffix", func(v string) { cfg.Workspace.TreeSuffix = v })
	case "workers":
		if v, ok := firstIntArg(n); ok {
			cfg.Workspace.Workers = v
		}
	case "debounce_ms":
		if v, ok := firstIntArg(n); ok {
			cfg.Workspace.DebounceMs = v
		}
	case "respect_gitignore":
		if v, ok := firstBoolArg(n); ok {
			cfg.Workspace.RespectGitignore = v
		}
	}
}

func parseCompletionNode(cfg *Config, n *document.Node) {
	switch nodeName(n) {
	case "fuzzy":
		if v, ok := firstBoolArg(n); ok {
			cfg.Completion.Fuzzy = v
		}
	case "fuzzy_threshold":
		if v, ok := firstFloatArg(n); ok {
			cfg.Completion.FuzzyThreshold = v
		}
	case "max_items":
		if v, ok := firstIntArg(n); ok {
			cfg.Completion.MaxItems = v
		}
	case "keywords":
		if v, ok := firstBoolArg(n); ok {
			cfg.Completion.Keywords = v
		}
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		debug.LogConfig("invalid float value for %q, got %T\n", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}

// collectStringArgs accepts both the inline form (include "a" "b") and the
// block form (include { "a"; "b" }), where each child's name is the value.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "4MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}
