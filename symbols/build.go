// Copyright © 2024 The ELPS authors

package symbols

// Helpers for constructing symbols. They only fill in the fields that
// identify the symbol; callers set modifiers directly.

// NewParam returns a by-value parameter.
func NewParam(name string, typ Type) *Parameter {
	return &Parameter{Name: name, Type: typ}
}

// NewMethod returns an ordinary public instance method symbol.
func NewMethod(name string, ret Type, params ...*Parameter) *Symbol {
	return &Symbol{Kind: SymMethod, Name: name, Type: ret, Params: params}
}

// NewStaticMethod returns an ordinary public static method symbol.
func NewStaticMethod(name string, ret Type, params ...*Parameter) *Symbol {
	m := NewMethod(name, ret, params...)
	m.Static = true
	return m
}

// NewConstructor returns a public instance constructor symbol.
func NewConstructor(params ...*Parameter) *Symbol {
	return &Symbol{Kind: SymMethod, MethodKind: MethodConstructor, Name: ConstructorName, Params: params}
}

// NewProperty returns a public instance property symbol.
func NewProperty(name string, typ Type) *Symbol {
	return &Symbol{Kind: SymProperty, Name: name, Type: typ}
}

// NewIndexer returns a public instance indexer symbol.
func NewIndexer(typ Type, params ...*Parameter) *Symbol {
	return &Symbol{Kind: SymProperty, Name: IndexerName, Type: typ, Params: params}
}

// NewField returns a public instance field symbol.
func NewField(name string, typ Type) *Symbol {
	return &Symbol{Kind: SymField, Name: name, Type: typ}
}

// NewLocal returns a local variable symbol.
func NewLocal(name string, typ Type) *Symbol {
	return &Symbol{Kind: SymLocal, Name: name, Type: typ}
}

// NewParameterSymbol returns the scope symbol of a formal parameter.
func NewParameterSymbol(p *Parameter) *Symbol {
	return &Symbol{Kind: SymParameter, Name: p.Name, Type: p.Type, Param: p, Source: p.Source}
}

// NewTypeParameterSymbol returns the scope symbol of a type parameter.
func NewTypeParameterSymbol(tp *TypeParameter) *Symbol {
	return &Symbol{Kind: SymTypeParameter, Name: tp.Name, Declared: tp}
}

// OperatorMethodName maps an operator token to its metadata method name.
func OperatorMethodName(op string) (string, bool) {
	switch op {
	case "+":
		return "op_Addition", true
	case "-":
		return "op_Subtraction", true
	case "*":
		return "op_Multiply", true
	case "/":
		return "op_Division", true
	case "%":
		return "op_Modulus", true
	case "==":
		return "op_Equality", true
	case "!=":
		return "op_Inequality", true
	case "<":
		return "op_LessThan", true
	case ">":
		return "op_GreaterThan", true
	case "<=":
		return "op_LessThanOrEqual", true
	case ">=":
		return "op_GreaterThanOrEqual", true
	case "unary-":
		return "op_UnaryNegation", true
	case "!":
		return "op_LogicalNot", true
	case "implicit":
		return ImplicitName, true
	case "explicit":
		return ExplicitName, true
	}
	return "", false
}

// NewOperator returns a public static user-defined operator symbol.
func NewOperator(name string, ret Type, params ...*Parameter) *Symbol {
	kind := MethodOperator
	switch name {
	case ImplicitName:
		kind = MethodImplicitConversion
	case ExplicitName:
		kind = MethodExplicitConversion
	}
	return &Symbol{Kind: SymMethod, MethodKind: kind, Name: name, Type: ret, Params: params, Static: true}
}
