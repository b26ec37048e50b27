// Package syntaxtest sketches syntax trees against real source text for tests.
//
// A sketch lists node kinds and leaf texts in source order; Build locates
// every leaf in the source, in order, and derives all node ranges from it:
//
//	tree := syntaxtest.Build(t, "Dim x As Integer",
//		syntaxtest.N("source_file",
//			syntaxtest.N("variable_declaration", syntaxtest.Tok("Dim"),
//				syntaxtest.N("variable_list",
//					syntaxtest.N("variable_declarator", syntaxtest.Ident("x").As("name"),
//						syntaxtest.N("as_clause", syntaxtest.Tok("As"),
//							syntaxtest.Ident("Integer").As("type")))))))
package syntaxtest

import (
	"sort"
	"strings"
	"testing"

	"github.com/standardbeagle/vbsym/internal/syntax"
)

// Sketch is one node of a tree under construction.
type Sketch struct {
	typ      string
	field    string
	text     string
	leaf     bool
	named    bool
	err      bool
	children []*Sketch
}

// N is a named inner node whose range spans its leaves.
func N(typ string, children ...*Sketch) *Sketch {
	return &Sketch{typ: typ, named: true, children: children}
}

// Tok is an anonymous token whose type is its text, e.g. Tok("Sub").
func Tok(text string) *Sketch {
	return &Sketch{typ: text, text: text, leaf: true}
}

// Ident is an identifier leaf.
func Ident(text string) *Sketch {
	return Leaf("identifier", text)
}

// Leaf is a named leaf of any type, e.g. Leaf("integer_literal", "10").
func Leaf(typ, text string) *Sketch {
	return &Sketch{typ: typ, text: text, leaf: true, named: true}
}

// Err is an ERROR node wrapping children.
func Err(children ...*Sketch) *Sketch {
	return &Sketch{typ: "ERROR", named: true, err: true, children: children}
}

// As attaches the node to its parent under a field name.
func (s *Sketch) As(field string) *Sketch {
	s.field = field
	return s
}

// Build resolves the sketch against source. The root always spans the whole
// source. Build fails the test when a leaf cannot be found.
func Build(tb testing.TB, source string, root *Sketch) *syntax.MemTree {
	tb.Helper()
	b := &builder{tb: tb, src: source, lineStarts: []int{0}}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			b.lineStarts = append(b.lineStarts, i+1)
		}
	}
	n := b.build(root)
	n.StartOff, n.EndOff = 0, uint(len(source))
	n.Start, n.End = b.point(0), b.point(len(source))
	return syntax.NewMemTree(n)
}

type builder struct {
	tb         testing.TB
	src        string
	lineStarts []int
	cursor     int
}

func (b *builder) build(s *Sketch) *syntax.MemNode {
	n := &syntax.MemNode{NodeType: s.typ, Field: s.field, Named: s.named, Error: s.err}
	if s.leaf {
		start := b.find(s.text)
		end := start + len(s.text)
		b.cursor = end
		b.setRange(n, start, end)
		return n
	}

	for _, c := range s.children {
		n.Children = append(n.Children, b.build(c))
	}
	if len(n.Children) == 0 {
		b.setRange(n, b.cursor, b.cursor)
		return n
	}
	b.setRange(n, int(n.Children[0].StartOff), int(n.Children[len(n.Children)-1].EndOff))
	return n
}

func (b *builder) setRange(n *syntax.MemNode, start, end int) {
	n.StartOff, n.EndOff = uint(start), uint(end)
	n.Start, n.End = b.point(start), b.point(end)
}

// find returns the offset of the next occurrence of text at or after the
// cursor that does not sit inside a longer word.
func (b *builder) find(text string) int {
	b.tb.Helper()
	from := b.cursor
	for from <= len(b.src) {
		i := strings.Index(b.src[from:], text)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(text)
		if b.boundary(text, start, end) {
			return start
		}
		from = start + 1
	}
	b.tb.Fatalf("syntaxtest: %q not found after offset %d in %q", text, b.cursor, b.src)
	return 0
}

func (b *builder) boundary(text string, start, end int) bool {
	if text == "" {
		return true
	}
	if isWord(text[0]) && start > 0 && isWord(b.src[start-1]) {
		return false
	}
	if isWord(text[len(text)-1]) && end < len(b.src) && isWord(b.src[end]) {
		return false
	}
	return true
}

func (b *builder) point(off int) syntax.Point {
	line := sort.Search(len(b.lineStarts), func(i int) bool { return b.lineStarts[i] > off }) - 1
	return syntax.Point{Row: uint32(line), Column: uint32(off - b.lineStarts[line])}
}

func isWord(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
