package symbols

import "strings"

// ScopeID identifies a scope within one SymbolTable. The module scope is 0.
type ScopeID uint32

// SymbolID identifies a symbol within one SymbolTable.
type SymbolID uint32

const (
	// ModuleScope is the id of every table's root scope.
	ModuleScope ScopeID = 0
	// NoScope marks the absent parent of the module scope.
	NoScope ScopeID = ^ScopeID(0)
	// NoSymbol marks an absent symbol link.
	NoSymbol SymbolID = ^SymbolID(0)
)

// ScopeKind classifies lexical scopes.
type ScopeKind uint8

const (
	ScopeModule ScopeKind = iota
	ScopeProcedure
	ScopeWithBlock
	ScopeForLoop
	ScopeForEachLoop
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "Module"
	case ScopeProcedure:
		return "Procedure"
	case ScopeWithBlock:
		return "With"
	case ScopeForLoop:
		return "For"
	case ScopeForEachLoop:
		return "For Each"
	}
	return "Unknown"
}

// IsVariableScope reports whether Dim and Const may declare names directly
// in scopes of this kind.
func (k ScopeKind) IsVariableScope() bool {
	return k == ScopeModule || k == ScopeProcedure
}

// Scope is one node of the lexical scope tree.
type Scope struct {
	ID       ScopeID
	Kind     ScopeKind
	Parent   ScopeID // NoScope for the module scope
	Range    Range
	Children []ScopeID

	// WithObject is the object expression text of a With block.
	WithObject string
	// DefiningSymbol links a procedure scope to its procedure, or NoSymbol.
	DefiningSymbol SymbolID

	symbols map[string]SymbolID
	order   []SymbolID
}

func newScope(id ScopeID, kind ScopeKind, parent ScopeID, r Range) *Scope {
	return &Scope{
		ID:             id,
		Kind:           kind,
		Parent:         parent,
		Range:          r,
		DefiningSymbol: NoSymbol,
		symbols:        make(map[string]SymbolID),
	}
}

// AddSymbol binds name in this scope. A later binding of the same name,
// in any letter case, replaces the earlier one.
func (s *Scope) AddSymbol(name string, id SymbolID) {
	s.symbols[strings.ToLower(name)] = id
	s.order = append(s.order, id)
}

// LookupLocal resolves name in this scope only, ignoring case.
func (s *Scope) LookupLocal(name string) (SymbolID, bool) {
	id, ok := s.symbols[strings.ToLower(name)]
	return id, ok
}

// SymbolIDs returns the symbols bound in this scope in declaration order.
// Symbols replaced by a later declaration of the same name are omitted.
func (s *Scope) SymbolIDs() []SymbolID {
	if len(s.order) == len(s.symbols) {
		return append([]SymbolID(nil), s.order...)
	}
	bound := make(map[SymbolID]struct{}, len(s.symbols))
	for _, id := range s.symbols {
		bound[id] = struct{}{}
	}
	out := make([]SymbolID, 0, len(s.symbols))
	for _, id := range s.order {
		if _, ok := bound[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// SymbolCount is the number of distinct names bound in this scope.
func (s *Scope) SymbolCount() int {
	return len(s.symbols)
}
