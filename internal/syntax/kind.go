package syntax

// Kind is the closed set of node kinds the symbol builder dispatches on.
// Every other grammar kind maps to KindOther.
type Kind uint8

const (
	KindOther Kind = iota
	KindError
	KindSourceFile
	KindBlock
	KindIdentifier

	KindVariableDeclaration
	KindVariableList
	KindVariableDeclarator
	KindConstantDeclaration
	KindConstantDeclarator
	KindAsClause
	KindArrayBounds
	KindTypeDeclaration
	KindTypeMember
	KindEnumDeclaration
	KindEnumMember

	KindSubDeclaration
	KindFunctionDeclaration
	KindPropertyDeclaration
	KindParameterList
	KindParameter
	KindDeclareStatement
	KindEventStatement

	KindWithStatement
	KindForStatement
	KindForEachStatement
	KindLabel
	KindAssignmentStatement
	KindSetStatement

	KindFormBlock
	KindFormElement
	KindFormPropertyLine
	KindFormPropertyBlock
	KindModuleConfig
	KindModuleConfigElement

	KindPreprocIf
	KindPreprocElseIf
	KindPreprocElse
)

var kindNames = map[string]Kind{
	"ERROR":                 KindError,
	"source_file":           KindSourceFile,
	"block":                 KindBlock,
	"identifier":            KindIdentifier,
	"variable_declaration":  KindVariableDeclaration,
	"variable_list":         KindVariableList,
	"variable_declarator":   KindVariableDeclarator,
	"constant_declaration":  KindConstantDeclaration,
	"constant_declarator":   KindConstantDeclarator,
	"as_clause":             KindAsClause,
	"array_bounds":          KindArrayBounds,
	"type_declaration":      KindTypeDeclaration,
	"type_member":           KindTypeMember,
	"enum_declaration":      KindEnumDeclaration,
	"enum_member":           KindEnumMember,
	"sub_declaration":       KindSubDeclaration,
	"function_declaration":  KindFunctionDeclaration,
	"property_declaration":  KindPropertyDeclaration,
	"parameter_list":        KindParameterList,
	"parameter":             KindParameter,
	"declare_statement":     KindDeclareStatement,
	"event_statement":       KindEventStatement,
	"with_statement":        KindWithStatement,
	"for_statement":         KindForStatement,
	"for_each_statement":    KindForEachStatement,
	"label":                 KindLabel,
	"assignment_statement":  KindAssignmentStatement,
	"set_statement":         KindSetStatement,
	"form_block":            KindFormBlock,
	"form_element":          KindFormElement,
	"form_property_line":    KindFormPropertyLine,
	"form_property_block":   KindFormPropertyBlock,
	"module_config":         KindModuleConfig,
	"module_config_element": KindModuleConfigElement,
	"preproc_if":            KindPreprocIf,
	"preproc_elseif":        KindPreprocElseIf,
	"preproc_else":          KindPreprocElse,
}

var kindStrings = func() map[Kind]string {
	m := make(map[Kind]string, len(kindNames))
	for name, k := range kindNames {
		m[k] = name
	}
	return m
}()

// ParseKind maps a grammar node type to its Kind.
func ParseKind(nodeType string) Kind {
	if k, ok := kindNames[nodeType]; ok {
		return k
	}
	return KindOther
}

func (k Kind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}
	return "other"
}

// IsProcedure reports whether nodes of this kind open a procedure scope.
func (k Kind) IsProcedure() bool {
	switch k {
	case KindSubDeclaration, KindFunctionDeclaration, KindPropertyDeclaration:
		return true
	}
	return false
}

// IsDesigner reports whether the kind belongs to the form-designer or module
// header section, which ordinary code walks skip.
func (k Kind) IsDesigner() bool {
	switch k {
	case KindFormBlock, KindFormElement, KindFormPropertyLine, KindFormPropertyBlock,
		KindModuleConfig, KindModuleConfigElement:
		return true
	}
	return false
}

// Field names used with Node.ChildByFieldName.
const (
	FieldName     = "name"
	FieldType     = "type"
	FieldValue    = "value"
	FieldAccessor = "accessor"
	FieldDefault  = "default"
	FieldObject   = "object"
	FieldCounter  = "counter"
	FieldElement  = "element"
	FieldVariable = "variable"
	FieldTarget   = "target"
)
