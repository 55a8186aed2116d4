// Copyright © 2024 The ELPS authors

package symbols

import "strings"

// ConstraintOracle decides whether a type argument satisfies the
// constraints of a type parameter.
type ConstraintOracle interface {
	SatisfiesConstraints(tp *TypeParameter, arg Type) bool
}

// DisplayString renders sym the way diagnostics mention it, for example
// "Program.M(int, params object[])".
func (t *Table) DisplayString(sym *Symbol) string {
	if sym == nil {
		return "?"
	}
	switch sym.Kind {
	case SymNamespace:
		return t.NamespaceName(sym)
	case SymType:
		if nt, ok := sym.Declared.(*NamedType); ok {
			return nt.String()
		}
		return sym.Name
	case SymLocal, SymParameter, SymTypeParameter:
		return sym.Name
	}
	var sb strings.Builder
	sb.WriteString(t.displayHead(sym))
	switch {
	case sym.Kind == SymMethod:
		sb.WriteByte('(')
		writeParams(&sb, sym)
		sb.WriteByte(')')
	case sym.IsIndexer():
		sb.WriteByte('[')
		writeParams(&sb, sym)
		sb.WriteByte(']')
	}
	return sb.String()
}

// displayHead renders the qualified member name with type arguments.
func (t *Table) displayHead(sym *Symbol) string {
	var sb strings.Builder
	container := t.ContainingType(sym)
	if container != nil {
		sb.WriteString(container.String())
		sb.WriteByte('.')
	}
	switch {
	case sym.MethodKind == MethodConstructor:
		if container != nil {
			sb.WriteString(container.Name)
		} else {
			sb.WriteString(sym.Name)
		}
	case sym.MethodKind == MethodBuiltinOperator:
		sb.WriteString("operator ")
		sb.WriteString(sym.Name)
	case sym.Name == IndexerName:
		sb.WriteString("this")
	default:
		sb.WriteString(sym.Name)
	}
	if sym.Kind == SymMethod && len(sym.TypeParams) > 0 {
		sb.WriteByte('<')
		for i, tp := range sym.TypeParams {
			if i > 0 {
				sb.WriteString(", ")
			}
			if i < len(sym.TypeArgs) {
				sb.WriteString(sym.TypeArgs[i].String())
			} else {
				sb.WriteString(tp.Name)
			}
		}
		sb.WriteByte('>')
	}
	return sb.String()
}

func writeParams(sb *strings.Builder, sym *Symbol) {
	for i, p := range sym.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if i == 0 && sym.Extension {
			sb.WriteString("this ")
		}
		if p.IsParams {
			sb.WriteString("params ")
		}
		if rk := p.RefKind.String(); rk != "" {
			sb.WriteString(rk)
			sb.WriteByte(' ')
		}
		sb.WriteString(p.Type.String())
	}
}

// Signature renders the declaration of sym including parameter names and
// the return type, as shown in hovers and signature help.
func (t *Table) Signature(sym *Symbol) string {
	if sym == nil {
		return "?"
	}
	var sb strings.Builder
	switch sym.Kind {
	case SymMethod:
		if sym.Static && sym.MethodKind != MethodBuiltinOperator {
			sb.WriteString("static ")
		}
		if sym.MethodKind != MethodConstructor && sym.Type != nil {
			sb.WriteString(sym.Type.String())
			sb.WriteByte(' ')
		}
	case SymProperty, SymField, SymLocal, SymParameter:
		if sym.Static {
			sb.WriteString("static ")
		}
		if sym.Type != nil {
			sb.WriteString(sym.Type.String())
			sb.WriteByte(' ')
		}
	case SymType:
		if nt, ok := sym.Declared.(*NamedType); ok {
			sb.WriteString(nt.TypeKind.String())
			sb.WriteByte(' ')
			sb.WriteString(nt.QualifiedName())
			return sb.String()
		}
	case SymNamespace:
		return "namespace " + t.NamespaceName(sym)
	}
	if sym.Kind != SymMethod && !sym.IsIndexer() {
		sb.WriteString(t.DisplayString(sym))
		return sb.String()
	}
	sb.WriteString(t.displayHead(sym))
	open, closing := byte('('), byte(')')
	if sym.Kind != SymMethod {
		open, closing = '[', ']'
	}
	sb.WriteByte(open)
	for i := range sym.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(ParamString(sym, i))
	}
	sb.WriteByte(closing)
	return sb.String()
}

// ParamString renders parameter i of sym with modifiers, name and default.
func ParamString(sym *Symbol, i int) string {
	p := sym.Params[i]
	var sb strings.Builder
	if i == 0 && sym.Extension {
		sb.WriteString("this ")
	}
	if p.IsParams {
		sb.WriteString("params ")
	}
	if rk := p.RefKind.String(); rk != "" {
		sb.WriteString(rk)
		sb.WriteByte(' ')
	}
	sb.WriteString(p.Type.String())
	sb.WriteByte(' ')
	sb.WriteString(p.Name)
	if p.HasDefault {
		sb.WriteString(" = ")
		if p.Default == nil {
			sb.WriteString("default")
		} else {
			sb.WriteString(p.Default.ExactString())
		}
	}
	return sb.String()
}
