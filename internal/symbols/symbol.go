package symbols

import "strings"

// SymbolKind classifies declared entities.
type SymbolKind uint8

const (
	// Module level
	KindVariable SymbolKind = iota
	KindConstant
	KindUserDefinedType
	KindEnum
	KindEnumMember
	KindTypeMember

	// Procedure-like
	KindSub
	KindFunction
	KindPropertyGet
	KindPropertyLet
	KindPropertySet
	KindEvent
	KindDeclareFunction
	KindDeclareSub

	// Local
	KindParameter
	KindLocalVariable
	KindLocalConstant

	KindForLoopVariable
	KindForEachVariable
	KindLabel

	// Declared by the form designer section of a .frm/.ctl file
	KindFormControl
)

var kindNames = [...]string{
	KindVariable:        "Variable",
	KindConstant:        "Constant",
	KindUserDefinedType: "Type",
	KindEnum:            "Enum",
	KindEnumMember:      "Enum Member",
	KindTypeMember:      "Type Member",
	KindSub:             "Sub",
	KindFunction:        "Function",
	KindPropertyGet:     "Property Get",
	KindPropertyLet:     "Property Let",
	KindPropertySet:     "Property Set",
	KindEvent:           "Event",
	KindDeclareFunction: "Declare Function",
	KindDeclareSub:      "Declare Sub",
	KindParameter:       "Parameter",
	KindLocalVariable:   "Local Variable",
	KindLocalConstant:   "Local Constant",
	KindForLoopVariable: "Loop Variable",
	KindForEachVariable: "For Each Variable",
	KindLabel:           "Label",
	KindFormControl:     "Control",
}

func (k SymbolKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// CreatesScope reports whether declarations of this kind own a procedure scope.
func (k SymbolKind) CreatesScope() bool {
	switch k {
	case KindSub, KindFunction, KindPropertyGet, KindPropertyLet, KindPropertySet:
		return true
	}
	return false
}

func (k SymbolKind) IsProcedure() bool {
	switch k {
	case KindSub, KindFunction, KindPropertyGet, KindPropertyLet, KindPropertySet,
		KindDeclareFunction, KindDeclareSub:
		return true
	}
	return false
}

// IsCallable reports whether the symbol can be invoked with arguments.
func (k SymbolKind) IsCallable() bool {
	return k.IsProcedure() || k == KindEvent
}

// Visibility of a declaration. The zero value is Private.
type Visibility uint8

const (
	Private Visibility = iota
	Public
	Friend
	Global
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "Public"
	case Friend:
		return "Friend"
	case Global:
		return "Global"
	}
	return "Private"
}

// ParseVisibility maps a visibility keyword, in any case.
func ParseVisibility(word string) (Visibility, bool) {
	switch strings.ToLower(word) {
	case "private":
		return Private, true
	case "public":
		return Public, true
	case "friend":
		return Friend, true
	case "global":
		return Global, true
	}
	return Private, false
}

// TypeInfo is the surface type annotation of an As clause.
type TypeInfo struct {
	Name    string
	IsArray bool
	IsNew   bool // As New T
}

// Display renders Name, or Name() for arrays.
func (t TypeInfo) Display() string {
	if t.IsArray {
		return t.Name + "()"
	}
	return t.Name
}

// ParameterInfo describes one formal parameter.
type ParameterInfo struct {
	Name         string
	Type         *TypeInfo
	ByRef        bool
	Optional     bool
	ParamArray   bool
	DefaultValue string
	HasDefault   bool
	Range        Range
	NameRange    Range
}

// Signature renders the parameter as it would be declared.
func (p ParameterInfo) Signature() string {
	var b strings.Builder
	if p.Optional {
		b.WriteString("Optional ")
	}
	if p.ParamArray {
		b.WriteString("ParamArray ")
	} else if p.ByRef {
		b.WriteString("ByRef ")
	} else {
		b.WriteString("ByVal ")
	}
	b.WriteString(p.Name)
	if p.Type != nil {
		b.WriteString(" As ")
		b.WriteString(p.Type.Display())
	}
	if p.HasDefault {
		b.WriteString(" = ")
		b.WriteString(p.DefaultValue)
	}
	return b.String()
}

// Symbol is one declared entity.
type Symbol struct {
	ID         SymbolID
	Name       string
	Kind       SymbolKind
	Visibility Visibility
	Type       *TypeInfo

	// DefinitionRange covers the whole declaration, NameRange only the name.
	DefinitionRange Range
	NameRange       Range

	Scope      ScopeID
	Parameters []ParameterInfo
	Members    []SymbolID

	Documentation string
	Value         string
	HasValue      bool
}

func (s *Symbol) typeOr(fallback string) string {
	if s.Type == nil {
		return fallback
	}
	return s.Type.Display()
}

func (s *Symbol) params() string {
	parts := make([]string, len(s.Parameters))
	for i, p := range s.Parameters {
		parts[i] = p.Signature()
	}
	return strings.Join(parts, ", ")
}

// Signature renders a one-line declaration for hover and completion detail.
func (s *Symbol) Signature() string {
	vis := s.Visibility.String()
	switch s.Kind {
	case KindSub:
		return vis + " Sub " + s.Name + "(" + s.params() + ")"
	case KindFunction:
		return vis + " Function " + s.Name + "(" + s.params() + ") As " + s.typeOr("Variant")
	case KindPropertyGet:
		return vis + " Property Get " + s.Name + "(" + s.params() + ") As " + s.typeOr("Variant")
	case KindPropertyLet:
		return vis + " Property Let " + s.Name + "(" + s.params() + ")"
	case KindPropertySet:
		return vis + " Property Set " + s.Name + "(" + s.params() + ")"
	case KindDeclareSub:
		return vis + " Declare Sub " + s.Name + "(" + s.params() + ")"
	case KindDeclareFunction:
		return vis + " Declare Function " + s.Name + "(" + s.params() + ") As " + s.typeOr("Variant")
	case KindEvent:
		return vis + " Event " + s.Name + "(" + s.params() + ")"
	case KindVariable:
		return vis + " " + s.Name + " As " + s.typeOr("Variant")
	case KindLocalVariable:
		return "Dim " + s.Name + " As " + s.typeOr("Variant")
	case KindConstant, KindLocalConstant:
		prefix := "Const "
		if s.Kind == KindConstant {
			prefix = vis + " Const "
		}
		value := "?"
		if s.HasValue {
			value = s.Value
		}
		if s.Type != nil {
			return prefix + s.Name + " As " + s.Type.Display() + " = " + value
		}
		return prefix + s.Name + " = " + value
	case KindParameter:
		return "Parameter " + s.Name + " As " + s.typeOr("Variant")
	case KindUserDefinedType:
		return vis + " Type " + s.Name
	case KindEnum:
		return vis + " Enum " + s.Name
	case KindEnumMember:
		if s.HasValue {
			return s.Name + " = " + s.Value
		}
		return s.Name
	case KindTypeMember:
		return s.Name + " As " + s.typeOr("Variant")
	case KindForLoopVariable:
		return "(loop variable) " + s.Name
	case KindForEachVariable:
		return "(for each) " + s.Name
	case KindLabel:
		return s.Name + ":"
	case KindFormControl:
		return s.Name + " As " + s.typeOr("Control")
	}
	return s.Name
}

// Reference is one resolved use of a symbol.
type Reference struct {
	Symbol SymbolID
	Range  Range
	Scope  ScopeID
	// IsAssignment is set when the use is, or lies within, the target of an
	// assignment.
	IsAssignment bool
	// Qualifier is the reference this one is a member of, as in a.b. The
	// builder does not populate it yet.
	Qualifier *Reference
}

// KindName is the display name of the symbol's kind.
func (s *Symbol) KindName() string { return s.Kind.String() }
