package features

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/standardbeagle/vbsym/internal/controls"
	"github.com/standardbeagle/vbsym/internal/symbols"
)

// Hover describes the symbol under pos as a fenced VB signature followed by
// its documentation. Form controls also carry the description of their
// control type.
func Hover(table *symbols.SymbolTable, pos symbols.Position) *protocol.Hover {
	sym := table.SymbolAtPosition(pos)
	if sym == nil {
		return nil
	}

	var b strings.Builder
	b.WriteString("```vb\n")
	b.WriteString(sym.Signature())
	b.WriteString("\n```")
	if sym.Documentation != "" {
		b.WriteString("\n\n")
		b.WriteString(sym.Documentation)
	}
	if sym.Kind == symbols.KindFormControl && sym.Type != nil {
		if ctl, ok := controls.Lookup(sym.Type.Name); ok && ctl.Description != "" {
			b.WriteString("\n\n")
			b.WriteString(ctl.Description)
		}
	}

	r := sym.NameRange.Protocol()
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: b.String()},
		Range:    &r,
	}
}
