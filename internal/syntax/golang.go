package syntax

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

// ParseGo parses Go source with the bundled tree-sitter grammar. It backs the
// dump-go developer command and the adapter tests; VB6 trees always come
// from the host. The caller must Close the returned tree.
func ParseGo(source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(sitter.NewLanguage(tree_sitter_go.Language())); err != nil {
		return nil, fmt.Errorf("failed to set Go language: %w", err)
	}
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned no tree")
	}
	return tree, nil
}
