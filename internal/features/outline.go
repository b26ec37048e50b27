package features

import (
	"go.lsp.dev/protocol"

	"github.com/standardbeagle/vbsym/internal/symbols"
)

// DocumentSymbols outlines the module in declaration order. Enum and type
// members nest under their declaration and procedure locals under their
// procedure. Form controls are left out.
func DocumentSymbols(table *symbols.SymbolTable) []protocol.DocumentSymbol {
	var out []protocol.DocumentSymbol
	for _, sym := range table.Symbols() {
		if sym.Scope != symbols.ModuleScope {
			continue
		}
		switch sym.Kind {
		case symbols.KindFormControl, symbols.KindEnumMember, symbols.KindTypeMember:
			continue
		}

		ds := documentSymbol(sym)
		for _, id := range sym.Members {
			if m := table.Symbol(id); m != nil {
				ds.Children = append(ds.Children, documentSymbol(m))
			}
		}
		if scope, ok := table.ProcedureScope(sym.ID); ok {
			for _, local := range localsOf(table, scope) {
				ds.Children = append(ds.Children, documentSymbol(local))
			}
		}
		out = append(out, ds)
	}
	return out
}

// localsOf collects the symbols declared in scope and its nested block
// scopes, in creation order.
func localsOf(table *symbols.SymbolTable, scope symbols.ScopeID) []*symbols.Symbol {
	inside := map[symbols.ScopeID]bool{scope: true}
	pending := []symbols.ScopeID{scope}
	for len(pending) > 0 {
		s := table.Scope(pending[0])
		pending = pending[1:]
		for _, c := range s.Children {
			if !inside[c] {
				inside[c] = true
				pending = append(pending, c)
			}
		}
	}

	var out []*symbols.Symbol
	for _, sym := range table.Symbols() {
		if inside[sym.Scope] {
			out = append(out, sym)
		}
	}
	return out
}

func documentSymbol(sym *symbols.Symbol) protocol.DocumentSymbol {
	detail := sym.KindName()
	if sym.Type != nil {
		detail = sym.Type.Display()
	}
	return protocol.DocumentSymbol{
		Name:           sym.Name,
		Detail:         detail,
		Kind:           SymbolKind(sym.Kind),
		Range:          sym.DefinitionRange.Protocol(),
		SelectionRange: sym.NameRange.Protocol(),
	}
}
