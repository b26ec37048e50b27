package symbols

import (
	"math"
	"strings"

	"go.lsp.dev/uri"
)

// DefaultScopeIndexLines caps how many lines one scope, symbol name or
// reference contributes to the line indexes.
const DefaultScopeIndexLines = 10000

// SymbolTable owns every symbol, scope and reference of one document. It is
// filled by the builder and read-only afterwards; queries never fail, they
// return nil or empty results instead.
type SymbolTable struct {
	uri uri.URI

	symbols    []*Symbol
	scopes     []*Scope
	references []Reference

	symbolsByLine map[uint32][]SymbolID
	scopesByLine  map[uint32][]ScopeID
	refsByLine    map[uint32][]int
	refsBySymbol  map[SymbolID][]int
	procScopes    map[SymbolID]ScopeID

	maxScopeLines uint32
}

// Option configures a SymbolTable.
type Option func(*SymbolTable)

// WithScopeIndexLimit sets the per-range line cap of the line indexes.
// Zero keeps the default.
func WithScopeIndexLimit(lines uint32) Option {
	return func(t *SymbolTable) {
		if lines > 0 {
			t.maxScopeLines = lines
		}
	}
}

// NewSymbolTable creates a table holding only the module scope.
func NewSymbolTable(u uri.URI, opts ...Option) *SymbolTable {
	t := &SymbolTable{
		uri:           u,
		symbolsByLine: make(map[uint32][]SymbolID),
		scopesByLine:  make(map[uint32][]ScopeID),
		refsByLine:    make(map[uint32][]int),
		refsBySymbol:  make(map[SymbolID][]int),
		procScopes:    make(map[SymbolID]ScopeID),
		maxScopeLines: DefaultScopeIndexLines,
	}
	for _, opt := range opts {
		opt(t)
	}

	// The module scope spans every line. It is left out of the line index;
	// ScopeAtPosition falls back to it.
	module := newScope(ModuleScope, ScopeModule, NoScope, Range{
		End: Position{Line: math.MaxUint32 - 1},
	})
	t.scopes = append(t.scopes, module)
	return t
}

func (t *SymbolTable) URI() uri.URI { return t.uri }

// CreateSymbol stores sym under a fresh id, binds its name in its scope and
// indexes its name range up to the line cap. A symbol naming an unknown scope is placed in the
// module scope.
func (t *SymbolTable) CreateSymbol(sym Symbol) SymbolID {
	id := SymbolID(len(t.symbols))
	sym.ID = id
	scope := t.Scope(sym.Scope)
	if scope == nil {
		sym.Scope = ModuleScope
		scope = t.scopes[ModuleScope]
	}
	s := sym
	t.symbols = append(t.symbols, &s)
	scope.AddSymbol(s.Name, id)

	t.indexLines(s.NameRange, func(line uint32) {
		t.symbolsByLine[line] = append(t.symbolsByLine[line], id)
	})
	return id
}

// CreateScope adds a scope under parent and indexes its lines, up to the
// configured cap. parent may be NoScope.
func (t *SymbolTable) CreateScope(kind ScopeKind, parent ScopeID, r Range) ScopeID {
	id := ScopeID(len(t.scopes))
	p := t.Scope(parent)
	if p == nil {
		parent = NoScope
	}
	t.scopes = append(t.scopes, newScope(id, kind, parent, r))
	if p != nil {
		p.Children = append(p.Children, id)
	}

	t.indexLines(r, func(line uint32) {
		t.scopesByLine[line] = append(t.scopesByLine[line], id)
	})
	return id
}

// indexLines calls add for each line of r, stopping after the configured
// per-range cap.
func (t *SymbolTable) indexLines(r Range, add func(line uint32)) {
	last := uint64(r.Start.Line) + uint64(t.maxScopeLines)
	if uint64(r.End.Line) < last {
		last = uint64(r.End.Line)
	}
	for line := uint64(r.Start.Line); line <= last; line++ {
		add(uint32(line))
	}
}

// LinkProcedureScope records sym as the procedure owning scope.
func (t *SymbolTable) LinkProcedureScope(scope ScopeID, sym SymbolID) {
	s := t.Scope(scope)
	if s == nil || t.Symbol(sym) == nil {
		return
	}
	s.DefiningSymbol = sym
	t.procScopes[sym] = scope
}

// AddReference records a resolved use. References to unknown symbols are
// ignored.
func (t *SymbolTable) AddReference(ref Reference) {
	if t.Symbol(ref.Symbol) == nil {
		return
	}
	idx := len(t.references)
	t.references = append(t.references, ref)
	t.indexLines(ref.Range, func(line uint32) {
		t.refsByLine[line] = append(t.refsByLine[line], idx)
	})
	t.refsBySymbol[ref.Symbol] = append(t.refsBySymbol[ref.Symbol], idx)
}

// Symbol returns the symbol with the given id, or nil.
func (t *SymbolTable) Symbol(id SymbolID) *Symbol {
	if int64(id) >= int64(len(t.symbols)) {
		return nil
	}
	return t.symbols[id]
}

// Scope returns the scope with the given id, or nil.
func (t *SymbolTable) Scope(id ScopeID) *Scope {
	if int64(id) >= int64(len(t.scopes)) {
		return nil
	}
	return t.scopes[id]
}

func (t *SymbolTable) ModuleScope() *Scope { return t.scopes[ModuleScope] }

// Symbols returns every symbol in creation order.
func (t *SymbolTable) Symbols() []*Symbol { return t.symbols }

// Scopes returns every scope in creation order.
func (t *SymbolTable) Scopes() []*Scope { return t.scopes }

// References returns every reference in creation order.
func (t *SymbolTable) References() []Reference { return t.references }

func (t *SymbolTable) SymbolCount() int    { return len(t.symbols) }
func (t *SymbolTable) ScopeCount() int     { return len(t.scopes) }
func (t *SymbolTable) ReferenceCount() int { return len(t.references) }

// ProcedureScope returns the scope linked to a procedure symbol.
func (t *SymbolTable) ProcedureScope(sym SymbolID) (ScopeID, bool) {
	id, ok := t.procScopes[sym]
	return id, ok
}

// SymbolsInScope returns the symbols bound in scope, in declaration order.
func (t *SymbolTable) SymbolsInScope(scope ScopeID) []*Symbol {
	s := t.Scope(scope)
	if s == nil {
		return nil
	}
	ids := s.SymbolIDs()
	out := make([]*Symbol, 0, len(ids))
	for _, id := range ids {
		if sym := t.Symbol(id); sym != nil {
			out = append(out, sym)
		}
	}
	return out
}

// ScopeAtPosition returns the innermost scope containing pos, or the module
// scope.
func (t *SymbolTable) ScopeAtPosition(pos Position) ScopeID {
	best := ModuleScope
	var bestSize uint64
	found := false
	for _, id := range t.scopesByLine[pos.Line] {
		s := t.scopes[id]
		if !s.Range.Contains(pos) {
			continue
		}
		if size := s.Range.Size(); !found || size < bestSize {
			best, bestSize, found = id, size, true
		}
	}
	return best
}

// LookupSymbol resolves name from scope outwards; the nearest binding wins.
func (t *SymbolTable) LookupSymbol(name string, from ScopeID) *Symbol {
	s := t.Scope(from)
	for steps := 0; s != nil && steps < len(t.scopes); steps++ {
		if id, ok := s.LookupLocal(name); ok {
			return t.Symbol(id)
		}
		s = t.Scope(s.Parent)
	}
	return nil
}

// LookupAtPosition resolves name in the innermost scope at pos.
func (t *SymbolTable) LookupAtPosition(name string, pos Position) *Symbol {
	return t.LookupSymbol(name, t.ScopeAtPosition(pos))
}

// SymbolAtPosition returns the symbol whose name is under pos, checking
// declaration names before references.
func (t *SymbolTable) SymbolAtPosition(pos Position) *Symbol {
	for _, id := range t.symbolsByLine[pos.Line] {
		if sym := t.symbols[id]; sym.NameRange.Contains(pos) {
			return sym
		}
	}
	if ref := t.ReferenceAtPosition(pos); ref != nil {
		return t.Symbol(ref.Symbol)
	}
	return nil
}

// ReferenceAtPosition returns the first recorded reference covering pos.
func (t *SymbolTable) ReferenceAtPosition(pos Position) *Reference {
	for _, idx := range t.refsByLine[pos.Line] {
		if t.references[idx].Range.Contains(pos) {
			return &t.references[idx]
		}
	}
	return nil
}

// ReferencesTo returns the references to sym in creation order.
func (t *SymbolTable) ReferencesTo(sym SymbolID) []Reference {
	idxs := t.refsBySymbol[sym]
	out := make([]Reference, len(idxs))
	for i, idx := range idxs {
		out[i] = t.references[idx]
	}
	return out
}

// ReferenceCountOf returns how many references resolve to sym.
func (t *SymbolTable) ReferenceCountOf(sym SymbolID) int {
	return len(t.refsBySymbol[sym])
}

// FindAllReferences returns the name range of the symbol under pos followed
// by the range of every reference to it.
func (t *SymbolTable) FindAllReferences(pos Position) []Range {
	sym := t.SymbolAtPosition(pos)
	if sym == nil {
		return nil
	}
	idxs := t.refsBySymbol[sym.ID]
	out := make([]Range, 0, len(idxs)+1)
	out = append(out, sym.NameRange)
	for _, idx := range idxs {
		out = append(out, t.references[idx].Range)
	}
	return out
}

// VisibleSymbols returns the symbols visible at pos, innermost scope first.
// An inner declaration hides outer ones of the same name.
func (t *SymbolTable) VisibleSymbols(pos Position) []*Symbol {
	seen := make(map[string]struct{})
	var out []*Symbol
	s := t.Scope(t.ScopeAtPosition(pos))
	for steps := 0; s != nil && steps < len(t.scopes); steps++ {
		for _, id := range s.SymbolIDs() {
			sym := t.symbols[id]
			key := strings.ToLower(sym.Name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, sym)
		}
		s = t.Scope(s.Parent)
	}
	return out
}

// ScopeChain returns scope followed by its ancestors up to the module scope.
func (t *SymbolTable) ScopeChain(scope ScopeID) []ScopeID {
	var out []ScopeID
	s := t.Scope(scope)
	for steps := 0; s != nil && steps < len(t.scopes); steps++ {
		out = append(out, s.ID)
		s = t.Scope(s.Parent)
	}
	return out
}
