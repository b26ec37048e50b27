package syntax

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	vberrors "github.com/standardbeagle/vbsym/internal/errors"
)

// DecodeTree reads a JSON tree dump and validates it. sourceLen is the length
// of the document the tree was parsed from; pass -1 to skip byte-bound checks.
func DecodeTree(r io.Reader, sourceLen int) (*MemTree, error) {
	var root MemNode
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, vberrors.NewTreeError("", err)
	}
	if err := validate(&root, "$", sourceLen); err != nil {
		return nil, err
	}
	return NewMemTree(&root), nil
}

func validate(n *MemNode, path string, sourceLen int) error {
	if n.NodeType == "" {
		return vberrors.NewTreeError(path, fmt.Errorf("missing node type"))
	}
	if n.End.Less(n.Start) {
		return vberrors.NewTreeError(path, fmt.Errorf("end %d:%d before start %d:%d",
			n.End.Row, n.End.Column, n.Start.Row, n.Start.Column))
	}
	if n.EndOff < n.StartOff {
		return vberrors.NewTreeError(path, fmt.Errorf("endByte %d before startByte %d", n.EndOff, n.StartOff))
	}
	if sourceLen >= 0 && n.EndOff > uint(sourceLen) {
		return vberrors.NewTreeError(path, fmt.Errorf("endByte %d beyond source length %d", n.EndOff, sourceLen))
	}
	for i, c := range n.Children {
		childPath := fmt.Sprintf("%s.children[%d]", path, i)
		if c == nil {
			return vberrors.NewTreeError(childPath, fmt.Errorf("null child"))
		}
		if c.StartOff < n.StartOff || c.EndOff > n.EndOff {
			return vberrors.NewTreeError(childPath, fmt.Errorf("bytes %d-%d outside parent %d-%d",
				c.StartOff, c.EndOff, n.StartOff, n.EndOff))
		}
		if c.Start.Less(n.Start) || n.End.Less(c.End) {
			return vberrors.NewTreeError(childPath, fmt.Errorf("points %d:%d-%d:%d outside parent %d:%d-%d:%d",
				c.Start.Row, c.Start.Column, c.End.Row, c.End.Column,
				n.Start.Row, n.Start.Column, n.End.Row, n.End.Column))
		}
		if err := validate(c, childPath, sourceLen); err != nil {
			return err
		}
	}
	return nil
}

// EncodeTree writes the subtree rooted at n as a compact JSON tree dump, one
// line terminated by a newline. go-json pads indented output of recursive
// types without bound, so the dump is never indented.
func EncodeTree(w io.Writer, n Node) error {
	var root *MemNode
	if m, ok := n.(*MemNode); ok {
		root = m
	} else {
		root = Snapshot(n).Root
	}
	return json.NewEncoder(w).Encode(root)
}
