package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.lsp.dev/uri"

	vberrors "github.com/standardbeagle/vbsym/internal/errors"
	"github.com/standardbeagle/vbsym/internal/syntax"
)

// Matches reports whether rel, a slash-separated path relative to the
// workspace root, is included and not excluded.
func Matches(rel string, include, exclude []string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	for _, pattern := range include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// excludedDir reports whether every file below rel is excluded, so the
// directory need not be walked or watched.
func excludedDir(rel string, exclude []string) bool {
	if rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range exclude {
		dir := strings.TrimSuffix(pattern, "/**")
		if ok, _ := doublestar.Match(dir, rel); ok {
			return true
		}
	}
	return false
}

// CollectFiles walks root and returns the matching files, sorted.
func CollectFiles(root string, include, exclude []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if d.IsDir() {
			if excludedDir(rel, exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if Matches(rel, include, exclude) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, vberrors.NewFileError("walk", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Document is a source file with its syntax tree.
type Document struct {
	Path   string
	URI    uri.URI
	Source []byte
	Tree   syntax.Tree
}

// LoadDocument reads the source at path and the tree dump at treePath.
// Sources larger than maxSize bytes are rejected; zero disables the limit.
func LoadDocument(path, treePath string, maxSize int64) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, vberrors.NewFileError("stat", path, err)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, vberrors.NewFileTooLargeError(path, info.Size(), maxSize)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, vberrors.NewFileError("read", path, err)
	}

	f, err := os.Open(treePath)
	if err != nil {
		return nil, vberrors.NewFileError("open", treePath, err)
	}
	defer f.Close()

	tree, err := syntax.DecodeTree(f, len(source))
	if err != nil {
		var treeErr *vberrors.TreeError
		if errors.As(err, &treeErr) {
			return nil, treeErr.WithSource(treePath)
		}
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &Document{Path: path, URI: uri.File(abs), Source: source, Tree: tree}, nil
}
