package symbols

import (
	"strings"

	"github.com/standardbeagle/vbsym/internal/syntax"
)

// declareFormControls registers the controls of a form designer section as
// FormControl symbols in the module scope. Nested controls are registered
// flat, alongside their containers.
func (b *builder) declareFormControls(root syntax.Node) {
	syntax.Walk(root, func(n syntax.Node) bool {
		switch {
		case n.Kind() == syntax.KindFormBlock:
			b.declareFormBlock(n)
			return false
		case n.Kind().IsProcedure():
			return false
		}
		return true
	})
}

func (b *builder) declareFormBlock(n syntax.Node) {
	if name := n.ChildByFieldName(syntax.FieldName); b.named(n, name) {
		sym := Symbol{
			Name:            b.text(name),
			Kind:            KindFormControl,
			DefinitionRange: RangeOf(n),
			NameRange:       RangeOf(name),
			Scope:           b.current(),
		}
		if t := n.ChildByFieldName(syntax.FieldType); t != nil {
			if typeName := controlTypeName(b.text(t)); typeName != "" {
				sym.Type = &TypeInfo{Name: typeName}
			}
		}
		b.table.CreateSymbol(sym)
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case syntax.KindFormBlock:
			b.declareFormBlock(c)
		case syntax.KindFormElement:
			for j := uint(0); j < c.ChildCount(); j++ {
				if inner := c.Child(j); inner != nil && inner.Kind() == syntax.KindFormBlock {
					b.declareFormBlock(inner)
				}
			}
		}
	}
}

// controlTypeName strips the library prefix from a designer type, so
// "VB.TextBox" becomes "TextBox".
func controlTypeName(full string) string {
	full = strings.TrimSpace(full)
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		return full[i+1:]
	}
	return full
}
