// Package pathutil converts the absolute paths and file URIs used internally
// into the paths shown to users. Output stays relative to the project root
// when the file lies inside it and absolute otherwise.
package pathutil

import (
	"path/filepath"
	"strings"

	"go.lsp.dev/uri"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/forms/Form1.frm", "/home/user/project") → "forms/Form1.frm"
//   - ToRelative("/other/location/Module1.bas", "/home/user/project") → "/other/location/Module1.bas" (outside root)
//   - ToRelative("Module1.bas", "/home/user/project") → "Module1.bas" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// different volumes on Windows
		return absPath
	}

	// outside the root the absolute path is clearer
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}
	return relPath
}

// URIToRelative renders a file URI like ToRelative. Non-file URIs are
// returned as their string form.
func URIToRelative(u uri.URI, rootDir string) string {
	if !strings.HasPrefix(string(u), uri.FileScheme+"://") {
		return string(u)
	}
	return ToRelative(u.Filename(), rootDir)
}
