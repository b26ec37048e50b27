package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// GitignorePattern is one non-comment line of a .gitignore file.
type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool
}

// ParseGitignoreLine parses a line, returning false for blanks and comments.
func ParseGitignoreLine(line string) (GitignorePattern, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return GitignorePattern{}, false
	}

	var p GitignorePattern
	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Absolute = true
		line = line[1:]
	}
	// a slash in the middle anchors the pattern like a leading one
	if strings.Contains(line, "/") && !strings.HasPrefix(line, "**/") {
		p.Absolute = true
	}
	p.Pattern = line
	return p, line != ""
}

// Globs converts the pattern to doublestar exclusions. A pattern without a
// trailing slash matches files and directories, so it yields both forms.
func (p GitignorePattern) Globs() []string {
	base := p.Pattern
	if !p.Absolute && !strings.HasPrefix(base, "**/") {
		base = "**/" + base
	}
	if p.Directory {
		return []string{base + "/**"}
	}
	return []string{base, base + "/**"}
}

// GitignoreExclusions reads root/.gitignore and returns its patterns as
// exclude globs. Negations are skipped. A missing file yields no patterns.
func GitignoreExclusions(root string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		p, ok := ParseGitignoreLine(scanner.Text())
		if !ok || p.Negate {
			continue
		}
		out = append(out, p.Globs()...)
	}
	return out, scanner.Err()
}
