package main

import (
	"os"

	"github.com/urfave/cli/v2"

	vberrors "github.com/standardbeagle/vbsym/internal/errors"
	"github.com/standardbeagle/vbsym/internal/syntax"
)

// dumpGoCommand writes the tree dump of a Go file, the same format the
// other commands read next to VB sources.
func dumpGoCommand(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	path := c.Args().First()
	source, err := os.ReadFile(path)
	if err != nil {
		return vberrors.NewFileError("read", path, err)
	}

	tree, err := syntax.ParseGo(source)
	if err != nil {
		return err
	}
	defer tree.Close()

	return syntax.EncodeTree(c.App.Writer, syntax.FromTreeSitter(tree).RootNode())
}
