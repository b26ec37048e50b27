package symbols

import (
	"fmt"

	"go.lsp.dev/protocol"

	"github.com/standardbeagle/vbsym/internal/syntax"
)

// Position is a zero-based line and byte column.
type Position struct {
	Line   uint32
	Column uint32
}

// Pos is shorthand for Position{line, column}.
func Pos(line, column uint32) Position {
	return Position{Line: line, Column: column}
}

func PositionFromPoint(p syntax.Point) Position {
	return Position{Line: p.Row, Column: p.Column}
}

// PositionFromProtocol converts an editor position. Columns are taken as
// byte offsets, matching the syntax tree.
func PositionFromProtocol(p protocol.Position) Position {
	return Position{Line: p.Line, Column: p.Character}
}

func (p Position) Protocol() protocol.Position {
	return protocol.Position{Line: p.Line, Character: p.Column}
}

// Compare orders positions line-major and returns -1, 0 or 1.
func (p Position) Compare(o Position) int {
	switch {
	case p.Line < o.Line:
		return -1
	case p.Line > o.Line:
		return 1
	case p.Column < o.Column:
		return -1
	case p.Column > o.Column:
		return 1
	}
	return 0
}

func (p Position) Less(o Position) bool { return p.Compare(o) < 0 }

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Range is a source span. Both ends are inclusive for containment tests.
type Range struct {
	Start Position
	End   Position
}

func RangeOf(n syntax.Node) Range {
	return Range{Start: PositionFromPoint(n.StartPoint()), End: PositionFromPoint(n.EndPoint())}
}

func (r Range) Protocol() protocol.Range {
	return protocol.Range{Start: r.Start.Protocol(), End: r.End.Protocol()}
}

// Contains reports whether pos lies within r, ends included.
func (r Range) Contains(pos Position) bool {
	return r.Start.Compare(pos) <= 0 && pos.Compare(r.End) <= 0
}

func (r Range) ContainsRange(o Range) bool {
	return r.Contains(o.Start) && r.Contains(o.End)
}

func (r Range) Overlaps(o Range) bool {
	return r.Contains(o.Start) || r.Contains(o.End) || o.Contains(r.Start) || o.Contains(r.End)
}

// Size orders ranges by extent. Any difference in line span outweighs every
// column difference; within one line it is the column span, and for
// multi-line ranges the end column breaks ties.
func (r Range) Size() uint64 {
	if r.End.Less(r.Start) {
		return 0
	}
	lines := uint64(r.End.Line - r.Start.Line)
	var cols uint64
	if lines == 0 {
		cols = uint64(r.End.Column - r.Start.Column)
	} else {
		cols = uint64(r.End.Column)
	}
	return lines<<32 | cols
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}
