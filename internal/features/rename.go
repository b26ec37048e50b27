package features

import (
	"go.lsp.dev/protocol"

	vberrors "github.com/standardbeagle/vbsym/internal/errors"
	"github.com/standardbeagle/vbsym/internal/symbols"
)

// PrepareRename returns the range of the occurrence under pos that a rename
// would replace.
func PrepareRename(table *symbols.SymbolTable, pos symbols.Position) (*protocol.Range, error) {
	sym := table.SymbolAtPosition(pos)
	if sym == nil {
		return nil, vberrors.NewRenameError("", pos.Line, pos.Column, vberrors.ErrNoSymbol)
	}
	r := sym.NameRange
	if !r.Contains(pos) {
		if ref := table.ReferenceAtPosition(pos); ref != nil {
			r = ref.Range
		}
	}
	pr := r.Protocol()
	return &pr, nil
}

// Rename replaces the declaration and every reference of the symbol under pos
// with newName.
func Rename(table *symbols.SymbolTable, pos symbols.Position, newName string) (*protocol.WorkspaceEdit, error) {
	switch {
	case !ValidIdentifier(newName):
		return nil, vberrors.NewRenameError(newName, pos.Line, pos.Column, vberrors.ErrInvalidIdentifier)
	case IsReservedWord(newName):
		return nil, vberrors.NewRenameError(newName, pos.Line, pos.Column, vberrors.ErrReservedWord)
	}

	ranges := table.FindAllReferences(pos)
	if len(ranges) == 0 {
		return nil, vberrors.NewRenameError(newName, pos.Line, pos.Column, vberrors.ErrNoSymbol)
	}
	edits := make([]protocol.TextEdit, len(ranges))
	for i, r := range ranges {
		edits[i] = protocol.TextEdit{Range: r.Protocol(), NewText: newName}
	}
	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentURI][]protocol.TextEdit{table.URI(): edits},
	}, nil
}
