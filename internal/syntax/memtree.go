package syntax

// MemNode is an in-memory syntax node. Trees of MemNodes are produced by
// DecodeTree and Snapshot; call NewMemTree on a hand-built root to link it.
type MemNode struct {
	NodeType  string     `json:"type"`
	Field     string     `json:"field,omitempty"`
	Named     bool       `json:"named,omitempty"`
	Error     bool       `json:"error,omitempty"`
	Missing   bool       `json:"missing,omitempty"`
	Start     Point      `json:"start"`
	End       Point      `json:"end"`
	StartOff  uint       `json:"startByte"`
	EndOff    uint       `json:"endByte"`
	Children  []*MemNode `json:"children,omitempty"`

	id     uintptr
	kind   Kind
	parent *MemNode
}

// FieldNamer is implemented by nodes that can report the field name under
// which a child is attached.
type FieldNamer interface {
	FieldNameForChild(i uint) string
}

func (n *MemNode) ID() uintptr       { return n.id }
func (n *MemNode) Type() string      { return n.NodeType }
func (n *MemNode) Kind() Kind        { return n.kind }
func (n *MemNode) StartPoint() Point { return n.Start }
func (n *MemNode) EndPoint() Point   { return n.End }
func (n *MemNode) StartByte() uint   { return n.StartOff }
func (n *MemNode) EndByte() uint     { return n.EndOff }
func (n *MemNode) ChildCount() uint  { return uint(len(n.Children)) }
func (n *MemNode) IsNamed() bool     { return n.Named }
func (n *MemNode) IsError() bool     { return n.Error || n.kind == KindError }
func (n *MemNode) IsMissing() bool   { return n.Missing }

func (n *MemNode) Child(i uint) Node {
	if i >= uint(len(n.Children)) || n.Children[i] == nil {
		return nil
	}
	return n.Children[i]
}

func (n *MemNode) ChildByFieldName(name string) Node {
	for _, c := range n.Children {
		if c != nil && c.Field == name {
			return c
		}
	}
	return nil
}

func (n *MemNode) FieldNameForChild(i uint) string {
	if i >= uint(len(n.Children)) || n.Children[i] == nil {
		return ""
	}
	return n.Children[i].Field
}

func (n *MemNode) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// MemTree is a Tree backed by MemNodes.
type MemTree struct {
	Root *MemNode
}

// NewMemTree links root: it assigns pre-order ids starting at 1, sets parent
// pointers and resolves kinds. Nil children are dropped.
func NewMemTree(root *MemNode) *MemTree {
	if root != nil {
		var next uintptr
		link(root, nil, &next)
	}
	return &MemTree{Root: root}
}

func link(n, parent *MemNode, next *uintptr) {
	*next++
	n.id = *next
	n.parent = parent
	n.kind = ParseKind(n.NodeType)

	kept := n.Children[:0]
	for _, c := range n.Children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	n.Children = kept
	for _, c := range n.Children {
		link(c, n, next)
	}
}

func (t *MemTree) RootNode() Node {
	if t == nil || t.Root == nil {
		return nil
	}
	return t.Root
}

// Snapshot copies any Node subtree into MemNodes. Field names are recorded
// when the source nodes implement FieldNamer.
func Snapshot(n Node) *MemTree {
	if n == nil {
		return &MemTree{}
	}
	return NewMemTree(snapshot(n))
}

func snapshot(n Node) *MemNode {
	m := &MemNode{
		NodeType: n.Type(),
		Named:    n.IsNamed(),
		Error:    n.IsError(),
		Missing:  n.IsMissing(),
		Start:    n.StartPoint(),
		End:      n.EndPoint(),
		StartOff: n.StartByte(),
		EndOff:   n.EndByte(),
	}
	fn, hasFields := n.(FieldNamer)
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		cm := snapshot(c)
		if hasFields {
			cm.Field = fn.FieldNameForChild(i)
		}
		m.Children = append(m.Children, cm)
	}
	return m
}
