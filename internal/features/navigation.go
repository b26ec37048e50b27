package features

import (
	"go.lsp.dev/protocol"

	"github.com/standardbeagle/vbsym/internal/symbols"
)

// Definition locates the declaration of the symbol under pos. When nothing
// was recorded at pos, the identifier under the cursor is resolved from the
// innermost scope instead.
func Definition(table *symbols.SymbolTable, source string, pos symbols.Position) *protocol.Location {
	sym := table.SymbolAtPosition(pos)
	if sym == nil {
		word, _, ok := WordAt(source, pos)
		if !ok {
			return nil
		}
		if sym = table.LookupAtPosition(word, pos); sym == nil {
			return nil
		}
	}
	loc := location(table, sym.NameRange)
	return &loc
}

// References lists every occurrence of the symbol under pos. The declaration
// comes first when includeDeclaration is set and is omitted otherwise.
func References(table *symbols.SymbolTable, pos symbols.Position, includeDeclaration bool) []protocol.Location {
	ranges := table.FindAllReferences(pos)
	if len(ranges) == 0 {
		return nil
	}
	if !includeDeclaration {
		ranges = ranges[1:]
	}
	out := make([]protocol.Location, len(ranges))
	for i, r := range ranges {
		out[i] = location(table, r)
	}
	return out
}

// DocumentHighlights marks the declaration of the symbol under pos as text,
// assignments to it as writes and every other use as a read.
func DocumentHighlights(table *symbols.SymbolTable, pos symbols.Position) []protocol.DocumentHighlight {
	sym := table.SymbolAtPosition(pos)
	if sym == nil {
		return nil
	}
	refs := table.ReferencesTo(sym.ID)
	out := make([]protocol.DocumentHighlight, 0, len(refs)+1)
	out = append(out, protocol.DocumentHighlight{
		Range: sym.NameRange.Protocol(),
		Kind:  protocol.DocumentHighlightKindText,
	})
	for _, ref := range refs {
		kind := protocol.DocumentHighlightKindRead
		if ref.IsAssignment {
			kind = protocol.DocumentHighlightKindWrite
		}
		out = append(out, protocol.DocumentHighlight{Range: ref.Range.Protocol(), Kind: kind})
	}
	return out
}
