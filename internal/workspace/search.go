package workspace

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/standardbeagle/vbsym/internal/features"
	"github.com/standardbeagle/vbsym/internal/fuzzy"
	"github.com/standardbeagle/vbsym/internal/symbols"
)

// WorkspaceSymbols searches the module-scope symbols of every stored
// document. Names containing query, ignoring case, come first in document
// order; names the matcher finds similar follow, best first. An empty query
// matches everything. A nil matcher disables the similarity pass.
func (s *Store) WorkspaceSymbols(query string, matcher *fuzzy.Matcher) []protocol.SymbolInformation {
	type hit struct {
		sym   *symbols.Symbol
		table *symbols.SymbolTable
	}
	lower := strings.ToLower(query)

	var out []protocol.SymbolInformation
	rest := make(map[string][]hit)
	var restNames []string
	for _, snap := range s.snapshots() {
		for _, sym := range snap.Table.SymbolsInScope(symbols.ModuleScope) {
			if strings.Contains(strings.ToLower(sym.Name), lower) {
				out = append(out, symbolInformation(snap.Table, sym))
				continue
			}
			if _, seen := rest[sym.Name]; !seen {
				restNames = append(restNames, sym.Name)
			}
			rest[sym.Name] = append(rest[sym.Name], hit{sym, snap.Table})
		}
	}

	if matcher == nil || !matcher.Enabled() {
		return out
	}
	for _, m := range matcher.FindMatches(query, restNames) {
		for _, h := range rest[m.Term] {
			out = append(out, symbolInformation(h.table, h.sym))
		}
	}
	return out
}

func symbolInformation(table *symbols.SymbolTable, sym *symbols.Symbol) protocol.SymbolInformation {
	info := protocol.SymbolInformation{
		Name: sym.Name,
		Kind: features.SymbolKind(sym.Kind),
		Location: protocol.Location{
			URI:   table.URI(),
			Range: sym.NameRange.Protocol(),
		},
	}
	if sym.Kind == symbols.KindEnumMember || sym.Kind == symbols.KindTypeMember {
		info.ContainerName = containerOf(table, sym.ID)
	}
	return info
}

func containerOf(table *symbols.SymbolTable, member symbols.SymbolID) string {
	for _, sym := range table.SymbolsInScope(symbols.ModuleScope) {
		for _, id := range sym.Members {
			if id == member {
				return sym.Name
			}
		}
	}
	return ""
}
